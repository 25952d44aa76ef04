package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
)

var startHuntCmd = &cobra.Command{
	Use:   "start-hunt <game-id>",
	Short: "Begin the next hunt phase and print per-agent prompts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.StartHunt(ctx, args[0])
		})
	},
}

var checkHuntCmd = &cobra.Command{
	Use:   "check-hunt <game-id>",
	Short: "Report hunt progress: remaining time and pending agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.CheckHunt(ctx, args[0])
		})
	},
}

var startHuntScoringCmd = &cobra.Command{
	Use:   "start-hunt-scoring <game-id>",
	Short: "Move to hunt scoring and print the referee work list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.StartHuntScoring(ctx, args[0])
		})
	},
}

var startReviewCmd = &cobra.Command{
	Use:   "start-review <game-id>",
	Short: "Begin the review phase and print per-agent prompts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.StartReview(ctx, args[0])
		})
	},
}

var checkReviewCmd = &cobra.Command{
	Use:   "check-review <game-id>",
	Short: "Report review progress: remaining time and pending agents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.CheckReview(ctx, args[0])
		})
	},
}

var startReviewScoringCmd = &cobra.Command{
	Use:   "start-review-scoring <game-id>",
	Short: "Move to review scoring and print the pending disputes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.StartReviewScoring(ctx, args[0])
		})
	},
}

var checkWinnerCmd = &cobra.Command{
	Use:   "check-winner <game-id>",
	Short: "Decide the round outcome: winner, tie-breaker, or continue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			return orch.Coordinator.CheckWinner(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(startHuntCmd)
	rootCmd.AddCommand(checkHuntCmd)
	rootCmd.AddCommand(startHuntScoringCmd)
	rootCmd.AddCommand(startReviewCmd)
	rootCmd.AddCommand(checkReviewCmd)
	rootCmd.AddCommand(startReviewScoringCmd)
	rootCmd.AddCommand(checkWinnerCmd)
}
