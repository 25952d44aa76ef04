package toolserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// nowFunc is swapped by tests that need a fixed clock.
var nowFunc = time.Now

// listFindingsInput is the input schema for the list_findings tool.
type listFindingsInput struct {
	AgentID string `json:"agent_id" jsonschema:"description=Requesting agent; own findings are excluded"`
}

// findingEntry is one finding in the list_findings response.
type findingEntry struct {
	ID          int64  `json:"id"`
	AgentID     string `json:"agent_id"`
	FilePath    string `json:"file_path"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	Description string `json:"description"`
	Verdict     string `json:"verdict"`
}

// listFindingsOutput is the output schema for the list_findings tool.
type listFindingsOutput struct {
	Findings []findingEntry `json:"findings"`
}

// gameStatusInput is the input schema for the game_status tool.
type gameStatusInput struct {
	AgentID string `json:"agent_id" jsonschema:"description=Requesting agent ID"`
}

// gameStatusOutput is the output schema for the game_status tool.
type gameStatusOutput struct {
	Phase            string `json:"phase"`
	Round            int    `json:"round"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Score            int    `json:"score"`
}

// myStandingInput is the input schema for the my_standing tool.
type myStandingInput struct {
	AgentID string `json:"agent_id" jsonschema:"description=Requesting agent ID"`
}

// myStandingOutput is the output schema for the my_standing tool.
type myStandingOutput struct {
	Rank              int `json:"rank"`
	Agents            int `json:"agents"`
	Score             int `json:"score"`
	TargetScore       int `json:"target_score"`
	FindingsValid     int `json:"findings_valid"`
	FindingsFalse     int `json:"findings_false"`
	FindingsDuplicate int `json:"findings_duplicate"`
	DisputesWon       int `json:"disputes_won"`
	DisputesLost      int `json:"disputes_lost"`
}

// registerReadTools registers list_findings, game_status and my_standing.
func (s *Server) registerReadTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_findings",
		Description: "List validated findings by other agents that you may dispute",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input listFindingsInput) (*mcp.CallToolResult, listFindingsOutput, error) {
		if input.AgentID == "" {
			return nil, listFindingsOutput{}, fmt.Errorf("agent_id is required")
		}

		findings, err := s.orch.Findings(ctx, s.gameID)
		if err != nil {
			return nil, listFindingsOutput{}, fmt.Errorf("listing findings: %w", err)
		}
		entries := make([]findingEntry, 0, len(findings))
		for _, f := range findings {
			if !f.IsValid() || f.AgentID == input.AgentID {
				continue
			}
			entries = append(entries, findingEntry{
				ID:          f.ID,
				AgentID:     f.AgentID,
				FilePath:    f.FilePath,
				LineStart:   f.LineStart,
				LineEnd:     f.LineEnd,
				Description: f.Description,
				Verdict:     f.Verdict,
			})
		}
		return nil, listFindingsOutput{Findings: entries}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "game_status",
		Description: "Current phase, round, remaining time and your score",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input gameStatusInput) (*mcp.CallToolResult, gameStatusOutput, error) {
		if input.AgentID == "" {
			return nil, gameStatusOutput{}, fmt.Errorf("agent_id is required")
		}

		g, err := s.orch.Game(ctx, s.gameID)
		if err != nil {
			return nil, gameStatusOutput{}, err
		}
		out := gameStatusOutput{Phase: string(g.Phase), Round: g.Round}
		if g.Deadline != nil {
			out.RemainingSeconds = int(g.Remaining(nowFunc()).Seconds())
		}
		agents, err := s.orch.Agents(ctx, s.gameID)
		if err != nil {
			return nil, gameStatusOutput{}, err
		}
		for _, a := range agents {
			if a.ID == input.AgentID {
				out.Score = a.Score
				break
			}
		}
		return nil, out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "my_standing",
		Description: "Your rank on the scoreboard, score breakdown and distance to the target",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input myStandingInput) (*mcp.CallToolResult, myStandingOutput, error) {
		if input.AgentID == "" {
			return nil, myStandingOutput{}, fmt.Errorf("agent_id is required")
		}

		g, err := s.orch.Game(ctx, s.gameID)
		if err != nil {
			return nil, myStandingOutput{}, err
		}
		board, err := s.orch.Scoreboard(ctx, s.gameID)
		if err != nil {
			return nil, myStandingOutput{}, err
		}
		for i, a := range board {
			if a.ID != input.AgentID {
				continue
			}
			return nil, myStandingOutput{
				Rank:              i + 1,
				Agents:            len(board),
				Score:             a.Score,
				TargetScore:       g.Config.TargetScore,
				FindingsValid:     a.FindingsValid,
				FindingsFalse:     a.FindingsFalse,
				FindingsDuplicate: a.FindingsDuplicate,
				DisputesWon:       a.DisputesWon,
				DisputesLost:      a.DisputesLost,
			}, nil
		}
		return nil, myStandingOutput{}, fmt.Errorf("agent %s not found in game %s", input.AgentID, s.gameID)
	})
}
