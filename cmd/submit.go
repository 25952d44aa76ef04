package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
)

var submitCmd = &cobra.Command{
	Use:   "submit <game-id> <agent-id> <file-path> <line-start> <line-end> <description>",
	Short: "Submit a finding during the hunt phase",
	Args:  cobra.ExactArgs(6),
	RunE:  runSubmit,
}

var disputeCmd = &cobra.Command{
	Use:   "dispute <game-id> <agent-id> <finding-id> <reason>",
	Short: "Dispute another agent's validated finding during review",
	Args:  cobra.ExactArgs(4),
	RunE:  runDispute,
}

var doneCmd = &cobra.Command{
	Use:   "done <game-id> <agent-id> <hunt|review>",
	Short: "Signal phase completion for an agent",
	Args:  cobra.ExactArgs(3),
	RunE:  runDone,
}

func init() {
	submitCmd.Flags().String("snippet", "", "supporting code snippet; required for doc_drift games")
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(disputeCmd)
	rootCmd.AddCommand(doneCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	gameID, agentID, filePath := args[0], args[1], args[2]
	lineStart, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("line-start must be a number, got %q", args[3])
	}
	lineEnd, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("line-end must be a number, got %q", args[4])
	}
	snippet, _ := cmd.Flags().GetString("snippet")

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		id, err := orch.Submissions.SubmitFinding(ctx, gameID, agentID, filePath, lineStart, lineEnd, args[5], snippet)
		if err != nil {
			return nil, err
		}
		return struct {
			FindingID int64  `json:"finding_id"`
			Status    string `json:"status"`
		}{FindingID: id, Status: string(game.FindingPending)}, nil
	})
}

func runDispute(cmd *cobra.Command, args []string) error {
	gameID, agentID := args[0], args[1]
	findingID, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("finding id must be a number, got %q", args[2])
	}

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		id, err := orch.Submissions.SubmitDispute(ctx, gameID, agentID, findingID, args[3])
		if err != nil {
			return nil, err
		}
		return struct {
			DisputeID int64  `json:"dispute_id"`
			Status    string `json:"status"`
		}{DisputeID: id, Status: string(game.DisputePending)}, nil
	})
}

func runDone(cmd *cobra.Command, args []string) error {
	gameID, agentID := args[0], args[1]
	var phase game.Phase
	switch args[2] {
	case "hunt":
		phase = game.PhaseHunt
	case "review":
		phase = game.PhaseReview
	default:
		return fmt.Errorf("phase must be hunt or review, got %q", args[2])
	}

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		if err := orch.Submissions.MarkAgentDone(ctx, gameID, agentID, phase); err != nil {
			return nil, err
		}
		return struct {
			AgentID string `json:"agent_id"`
			Phase   string `json:"phase"`
			Done    bool   `json:"done"`
		}{AgentID: agentID, Phase: args[2], Done: true}, nil
	})
}
