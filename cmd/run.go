package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/claude"
	"github.com/boneshq/bones/internal/config"
	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/runner"
	"github.com/boneshq/bones/internal/toolserver"
)

var runCmd = &cobra.Command{
	Use:   "run <game-id>",
	Short: "Play a game autonomously until a winner is decided",
	Long:  "Run drives every round of the game: parallel hunt and review agents against their deadlines, sequential referee and verifier passes, and the winner check. Progress events stream to stdout as JSON lines.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("model", "", "model passed to the claude CLI; empty uses its default")
	runCmd.Flags().Int("port", 0, "tool server port; 0 uses the configured port")
	runCmd.Flags().String("work-dir", "", "checkout the agents hunt in; defaults to the configured work dir")
	runCmd.Flags().Float64("max-budget", 0, "stop the run when total cost exceeds this many USD; 0 uses the configured budget")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	cfg := config.Load()

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Model
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.ToolPort
	}
	workDir, _ := cmd.Flags().GetString("work-dir")
	if workDir == "" {
		workDir = cfg.WorkDir
	}
	maxBudget, _ := cmd.Flags().GetFloat64("max-budget")
	if maxBudget == 0 {
		maxBudget = cfg.MaxBudgetUSD
	}

	invoker := claude.NewInvoker(cfg.ClaudePath, cfg.Verbose)
	if err := invoker.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := engine.Open(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	defer orch.Close()

	if _, err := orch.Game(ctx, gameID); err != nil {
		return err
	}

	srv := toolserver.NewServer(orch, gameID, port)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(shutdownCtx)
	}()

	mcpPath, err := writeMCPConfig(cfg.DataDir, gameID, port)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &runner.Runner{
		Orch:            orch,
		Invoker:         invoker,
		WorkDir:         workDir,
		Model:           model,
		Verbose:         cfg.Verbose,
		RefereeTimeout:  time.Duration(cfg.RefereeTimeout) * time.Second,
		VerifierTimeout: time.Duration(cfg.VerifierTimeout) * time.Second,
		DisputeTimeout:  time.Duration(cfg.DisputeTimeout) * time.Second,
		MCPConfigPath:   mcpPath,
	}
	r.OnEvent = func(ev runner.Event) {
		line, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Println(string(line))
		if maxBudget > 0 && r.Usage().CostUSD > maxBudget {
			fmt.Fprintf(os.Stderr, "budget of $%.2f exceeded, stopping run\n", maxBudget)
			cancel()
		}
	}

	if err := r.Run(runCtx, gameID); err != nil {
		usage := r.Usage()
		return fmt.Errorf("run stopped after $%.4f across %d invocations: %w", usage.CostUSD, usage.Invocations, err)
	}
	return nil
}

// writeMCPConfig writes the tool server connection file handed to hunt and
// review agents via --mcp-config.
func writeMCPConfig(dataDir, gameID string, port int) (string, error) {
	cfg := map[string]any{
		"mcpServers": map[string]any{
			"bones": map[string]any{
				"type": "sse",
				"url":  fmt.Sprintf("http://localhost:%d/sse", port),
			},
		},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dataDir, fmt.Sprintf("mcp-%s.json", gameID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing mcp config: %w", err)
	}
	return path, nil
}
