package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/config"
	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/toolserver"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Agent-facing tool server",
}

var toolsServeCmd = &cobra.Command{
	Use:   "serve <game-id>",
	Short: "Serve the game's MCP tools over SSE until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsServe,
}

func init() {
	toolsServeCmd.Flags().Int("port", 0, "listen port; 0 uses the configured port")
	toolsCmd.AddCommand(toolsServeCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsServe(cmd *cobra.Command, args []string) error {
	gameID := args[0]
	cfg := config.Load()
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.ToolPort
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
	fmt.Fprintf(os.Stderr, "tool server for game %s listening on %s\n", gameID, srv.Addr())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
