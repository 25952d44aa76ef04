package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
)

var statusCmd = &cobra.Command{
	Use:   "status <game-id>",
	Short: "Show a game's phase, deadline and scoreboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			g, err := orch.Game(ctx, args[0])
			if err != nil {
				return nil, err
			}
			board, err := orch.Scoreboard(ctx, args[0])
			if err != nil {
				return nil, err
			}
			out := struct {
				Game             gameView    `json:"game"`
				RemainingSeconds int         `json:"remaining_seconds,omitempty"`
				Scoreboard       []agentView `json:"scoreboard"`
			}{Game: viewGame(g), Scoreboard: viewAgents(board)}
			if g.Deadline != nil {
				out.RemainingSeconds = int(g.Remaining(time.Now()).Seconds())
			}
			return out, nil
		})
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List all games, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			all, err := orch.Games(ctx)
			if err != nil {
				return nil, err
			}
			views := make([]gameView, 0, len(all))
			for _, g := range all {
				views = append(views, viewGame(g))
			}
			return struct {
				Games []gameView `json:"games"`
			}{Games: views}, nil
		})
	},
}

var findingsCmd = &cobra.Command{
	Use:   "findings <game-id>",
	Short: "List a game's findings in submission order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			all, err := orch.Findings(ctx, args[0])
			if err != nil {
				return nil, err
			}
			if status != "" {
				filtered := all[:0]
				for _, f := range all {
					if f.Status == game.FindingStatus(status) {
						filtered = append(filtered, f)
					}
				}
				all = filtered
			}
			return struct {
				Findings []findingView `json:"findings"`
			}{Findings: viewFindings(all)}, nil
		})
	},
}

var disputesCmd = &cobra.Command{
	Use:   "disputes <game-id>",
	Short: "List a game's disputes in filing order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			all, err := orch.Disputes(ctx, args[0])
			if err != nil {
				return nil, err
			}
			return struct {
				Disputes []disputeView `json:"disputes"`
			}{Disputes: viewDisputes(all)}, nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <game-id>",
	Short: "Delete a game and everything it owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
			if _, err := orch.Game(ctx, args[0]); err != nil {
				return nil, err
			}
			if err := orch.Delete(ctx, args[0]); err != nil {
				return nil, err
			}
			return struct {
				GameID  string `json:"game_id"`
				Deleted bool   `json:"deleted"`
			}{GameID: args[0], Deleted: true}, nil
		})
	},
}

func init() {
	findingsCmd.Flags().String("status", "", "filter by status: pending, valid, false_flag, duplicate")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(disputesCmd)
	rootCmd.AddCommand(deleteCmd)
}
