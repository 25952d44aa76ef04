package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/manifest"
)

var setupCmd = &cobra.Command{
	Use:   "setup [project-url]",
	Short: "Create a new game with its agents",
	Long:  "Setup creates a game in the setup phase and registers its agents. Pass a project URL plus flags, or --manifest with a TOML game definition.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().String("manifest", "", "TOML game definition; overrides positional args and flags")
	setupCmd.Flags().String("category", string(game.CategoryBugs), "finding category: bugs, doc_drift, security, test_coverage, tech_debt, custom")
	setupCmd.Flags().String("focus", "", "optional focus prompt appended to hunt prompts")
	setupCmd.Flags().Int("target", 5, "score an agent must reach to win")
	setupCmd.Flags().Int("hunt-duration", 600, "hunt phase length in seconds")
	setupCmd.Flags().Int("review-duration", 300, "review phase length in seconds")
	setupCmd.Flags().Int("agents", 4, "number of competing agents")
	setupCmd.Flags().Int("max-rounds", game.DefaultMaxRounds, "round cap; 0 means unlimited")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := setupConfig(cmd, args)
	if err != nil {
		return err
	}

	return withOrchestrator(cmd, func(ctx context.Context, orch *engine.Orchestrator) (any, error) {
		g, agents, err := orch.Setup(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return struct {
			GameID string      `json:"game_id"`
			Game   gameView    `json:"game"`
			Agents []agentView `json:"agents"`
			Next   string      `json:"next"`
		}{
			GameID: g.ID,
			Game:   viewGame(g),
			Agents: viewAgents(agents),
			Next:   fmt.Sprintf("bones start-hunt %s", g.ID),
		}, nil
	})
}

func setupConfig(cmd *cobra.Command, args []string) (game.Config, error) {
	if path, _ := cmd.Flags().GetString("manifest"); path != "" {
		m, err := manifest.Load(path)
		if err != nil {
			return game.Config{}, err
		}
		return m.GameConfig(), nil
	}

	if len(args) == 0 {
		return game.Config{}, fmt.Errorf("a project URL or --manifest is required")
	}
	category, _ := cmd.Flags().GetString("category")
	if !game.ValidCategory(category) {
		return game.Config{}, fmt.Errorf("unknown category %q", category)
	}
	focus, _ := cmd.Flags().GetString("focus")
	target, _ := cmd.Flags().GetInt("target")
	if target < 1 {
		return game.Config{}, fmt.Errorf("target must be at least 1, got %d", target)
	}
	huntSecs, _ := cmd.Flags().GetInt("hunt-duration")
	reviewSecs, _ := cmd.Flags().GetInt("review-duration")
	if huntSecs <= 0 || reviewSecs <= 0 {
		return game.Config{}, fmt.Errorf("phase durations must be positive")
	}
	numAgents, _ := cmd.Flags().GetInt("agents")
	if numAgents < 1 {
		return game.Config{}, fmt.Errorf("agents must be at least 1, got %d", numAgents)
	}
	maxRounds, _ := cmd.Flags().GetInt("max-rounds")
	if maxRounds < 0 {
		return game.Config{}, fmt.Errorf("max-rounds must not be negative, got %d", maxRounds)
	}

	return game.Config{
		ProjectURL:     args[0],
		Category:       game.Category(category),
		Focus:          focus,
		TargetScore:    target,
		HuntDuration:   time.Duration(huntSecs) * time.Second,
		ReviewDuration: time.Duration(reviewSecs) * time.Second,
		NumAgents:      numAgents,
		MaxRounds:      maxRounds,
	}, nil
}
