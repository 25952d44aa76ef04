package toolserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/boneshq/bones/internal/game"
)

// submitFindingInput is the input schema for the submit_finding tool.
type submitFindingInput struct {
	AgentID     string `json:"agent_id" jsonschema:"description=Submitting agent's ID"`
	FilePath    string `json:"file_path" jsonschema:"description=Path of the file the issue lives in"`
	LineStart   int    `json:"line_start" jsonschema:"description=First line of the issue (inclusive)"`
	LineEnd     int    `json:"line_end" jsonschema:"description=Last line of the issue (inclusive)"`
	Description string `json:"description" jsonschema:"description=What is wrong and why it matters"`
	CodeSnippet string `json:"code_snippet,omitempty" jsonschema:"description=Supporting evidence; required for doc_drift games"`
}

// submitFindingOutput is the output schema for the submit_finding tool.
type submitFindingOutput struct {
	FindingID int64 `json:"finding_id"`
}

// submitDisputeInput is the input schema for the submit_dispute tool.
type submitDisputeInput struct {
	AgentID   string `json:"agent_id" jsonschema:"description=Disputing agent's ID"`
	FindingID int64  `json:"finding_id" jsonschema:"description=ID of the valid finding being disputed"`
	Reason    string `json:"reason" jsonschema:"description=Why the finding is wrong"`
}

// submitDisputeOutput is the output schema for the submit_dispute tool.
type submitDisputeOutput struct {
	DisputeID int64 `json:"dispute_id"`
}

// markDoneInput is the input schema for the mark_done tool.
type markDoneInput struct {
	AgentID string `json:"agent_id" jsonschema:"description=Agent signalling completion"`
	Phase   string `json:"phase" jsonschema:"description=Which phase is finished: hunt or review"`
}

// markDoneOutput is the output schema for the mark_done tool.
type markDoneOutput struct {
	Round int `json:"round"`
}

// registerSubmissionTools registers submit_finding, submit_dispute and mark_done.
func (s *Server) registerSubmissionTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "submit_finding",
		Description: "Submit a finding during the hunt phase",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input submitFindingInput) (*mcp.CallToolResult, submitFindingOutput, error) {
		if input.AgentID == "" {
			return nil, submitFindingOutput{}, fmt.Errorf("agent_id is required")
		}
		if input.FilePath == "" {
			return nil, submitFindingOutput{}, fmt.Errorf("file_path is required")
		}
		if input.Description == "" {
			return nil, submitFindingOutput{}, fmt.Errorf("description is required")
		}

		id, err := s.orch.Submissions.SubmitFinding(ctx, s.gameID, input.AgentID,
			input.FilePath, input.LineStart, input.LineEnd, input.Description, input.CodeSnippet)
		if err != nil {
			return nil, submitFindingOutput{}, fmt.Errorf("submitting finding: %w", err)
		}
		return nil, submitFindingOutput{FindingID: id}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "submit_dispute",
		Description: "Dispute another agent's validated finding during the review phase",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input submitDisputeInput) (*mcp.CallToolResult, submitDisputeOutput, error) {
		if input.AgentID == "" {
			return nil, submitDisputeOutput{}, fmt.Errorf("agent_id is required")
		}
		if input.Reason == "" {
			return nil, submitDisputeOutput{}, fmt.Errorf("reason is required")
		}

		id, err := s.orch.Submissions.SubmitDispute(ctx, s.gameID, input.AgentID, input.FindingID, input.Reason)
		if err != nil {
			return nil, submitDisputeOutput{}, fmt.Errorf("submitting dispute: %w", err)
		}
		return nil, submitDisputeOutput{DisputeID: id}, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mark_done",
		Description: "Signal that you are finished with the current hunt or review phase",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input markDoneInput) (*mcp.CallToolResult, markDoneOutput, error) {
		if input.AgentID == "" {
			return nil, markDoneOutput{}, fmt.Errorf("agent_id is required")
		}
		var phase game.Phase
		switch input.Phase {
		case "hunt":
			phase = game.PhaseHunt
		case "review":
			phase = game.PhaseReview
		default:
			return nil, markDoneOutput{}, fmt.Errorf("phase must be \"hunt\" or \"review\", got %q", input.Phase)
		}

		if err := s.orch.Submissions.MarkAgentDone(ctx, s.gameID, input.AgentID, phase); err != nil {
			return nil, markDoneOutput{}, fmt.Errorf("marking done: %w", err)
		}
		g, err := s.orch.Game(ctx, s.gameID)
		if err != nil {
			return nil, markDoneOutput{}, err
		}
		return nil, markDoneOutput{Round: g.Round}, nil
	})
}
