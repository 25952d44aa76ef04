package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <game-id> <dispute-id> <SUCCESSFUL|FAILED> <explanation>",
	Short: "Record a referee decision on a dispute",
	Long:  "Resolve settles a pending dispute. A successful dispute pays the disputer and revokes the finding's validation if it still stands; a failed dispute costs the disputer a point.",
	Args:  cobra.ExactArgs(4),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	disputeID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("dispute id must be a number, got %q", args[1])
	}

	var successful bool
	switch args[2] {
	case "SUCCESSFUL":
		successful = true
	case "FAILED":
		successful = false
	default:
		return fmt.Errorf("verdict must be SUCCESSFUL or FAILED, got %q", args[2])
	}

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		if err := orch.Submissions.ResolveDispute(ctx, gameID, disputeID, successful, args[3]); err != nil {
			return nil, err
		}
		return struct {
			DisputeID int64  `json:"dispute_id"`
			Verdict   string `json:"verdict"`
		}{DisputeID: disputeID, Verdict: args[2]}, nil
	})
}
