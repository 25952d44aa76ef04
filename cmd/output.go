package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/config"
	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// withOrchestrator opens the engine over the configured data directory, runs
// fn, and prints its result as JSON.
func withOrchestrator(cmd *cobra.Command, fn func(ctx context.Context, orch *engine.Orchestrator) (any, error)) error {
	cfg := config.Load()
	ctx := cmd.Context()

	orch, err := engine.Open(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer orch.Close()

	result, err := fn(ctx, orch)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// gameView is the JSON shape of a game.
type gameView struct {
	ID             string     `json:"id"`
	ProjectURL     string     `json:"project_url"`
	Category       string     `json:"category"`
	Focus          string     `json:"focus,omitempty"`
	TargetScore    int        `json:"target_score"`
	HuntDuration   int        `json:"hunt_duration_seconds"`
	ReviewDuration int        `json:"review_duration_seconds"`
	NumAgents      int        `json:"num_agents"`
	MaxRounds      int        `json:"max_rounds"`
	Phase          string     `json:"phase"`
	Round          int        `json:"round"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	WinnerID       string     `json:"winner_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func viewGame(g *game.Game) gameView {
	return gameView{
		ID:             g.ID,
		ProjectURL:     g.Config.ProjectURL,
		Category:       string(g.Config.Category),
		Focus:          g.Config.Focus,
		TargetScore:    g.Config.TargetScore,
		HuntDuration:   int(g.Config.HuntDuration.Seconds()),
		ReviewDuration: int(g.Config.ReviewDuration.Seconds()),
		NumAgents:      g.Config.NumAgents,
		MaxRounds:      g.Config.MaxRounds,
		Phase:          string(g.Phase),
		Round:          g.Round,
		Deadline:       g.Deadline,
		WinnerID:       g.WinnerID,
		CreatedAt:      g.CreatedAt,
	}
}

// agentView is the JSON shape of an agent.
type agentView struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Score             int    `json:"score"`
	FindingsSubmitted int    `json:"findings_submitted"`
	FindingsValid     int    `json:"findings_valid"`
	FindingsFalse     int    `json:"findings_false"`
	FindingsDuplicate int    `json:"findings_duplicate"`
	DisputesWon       int    `json:"disputes_won"`
	DisputesLost      int    `json:"disputes_lost"`
	Status            string `json:"status"`
}

func viewAgents(agents []*game.Agent) []agentView {
	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, agentView{
			ID:                a.ID,
			Name:              a.Name,
			Score:             a.Score,
			FindingsSubmitted: a.FindingsSubmitted,
			FindingsValid:     a.FindingsValid,
			FindingsFalse:     a.FindingsFalse,
			FindingsDuplicate: a.FindingsDuplicate,
			DisputesWon:       a.DisputesWon,
			DisputesLost:      a.DisputesLost,
			Status:            string(a.Status),
		})
	}
	return views
}

// findingView is the JSON shape of a finding.
type findingView struct {
	ID              int64  `json:"id"`
	AgentID         string `json:"agent_id"`
	Round           int    `json:"round"`
	FilePath        string `json:"file_path"`
	LineStart       int    `json:"line_start"`
	LineEnd         int    `json:"line_end"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	DuplicateOf     *int64 `json:"duplicate_of,omitempty"`
	Verdict         string `json:"verdict,omitempty"`
	Confidence      string `json:"confidence,omitempty"`
	PointsAwarded   int    `json:"points_awarded"`
	Verification    string `json:"verification,omitempty"`
	IssueType       string `json:"issue_type,omitempty"`
	ImpactTier      string `json:"impact_tier,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func viewFindings(findings []*game.Finding) []findingView {
	views := make([]findingView, 0, len(findings))
	for _, f := range findings {
		verification := string(f.Verification)
		if f.Verification == game.VerificationNone {
			verification = ""
		}
		views = append(views, findingView{
			ID:              f.ID,
			AgentID:         f.AgentID,
			Round:           f.Round,
			FilePath:        f.FilePath,
			LineStart:       f.LineStart,
			LineEnd:         f.LineEnd,
			Description:     f.Description,
			Status:          string(f.Status),
			DuplicateOf:     f.DuplicateOf,
			Verdict:         f.Verdict,
			Confidence:      string(f.Confidence),
			PointsAwarded:   f.PointsAwarded,
			Verification:    verification,
			IssueType:       f.IssueType,
			ImpactTier:      f.ImpactTier,
			RejectionReason: f.RejectionReason,
		})
	}
	return views
}

// disputeView is the JSON shape of a dispute.
type disputeView struct {
	ID            int64      `json:"id"`
	FindingID     int64      `json:"finding_id"`
	DisputerID    string     `json:"disputer_id"`
	Round         int        `json:"round"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	Verdict       string     `json:"verdict,omitempty"`
	PointsAwarded int        `json:"points_awarded"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

func viewDisputes(disputes []*game.Dispute) []disputeView {
	views := make([]disputeView, 0, len(disputes))
	for _, d := range disputes {
		views = append(views, disputeView{
			ID:            d.ID,
			FindingID:     d.FindingID,
			DisputerID:    d.DisputerID,
			Round:         d.Round,
			Reason:        d.Reason,
			Status:        string(d.Status),
			Verdict:       d.Verdict,
			PointsAwarded: d.PointsAwarded,
			ResolvedAt:    d.ResolvedAt,
		})
	}
	return views
}
