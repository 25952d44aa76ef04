package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boneshq/bones/internal/claude"
	"github.com/boneshq/bones/internal/config"
	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local environment for running games",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	var checks []doctorCheck

	invoker := claude.NewInvoker(cfg.ClaudePath, false)
	if err := invoker.Validate(); err != nil {
		checks = append(checks, doctorCheck{Name: "claude_cli", OK: false, Detail: err.Error()})
	} else {
		checks = append(checks, doctorCheck{Name: "claude_cli", OK: true, Detail: cfg.ClaudePath})
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		checks = append(checks, doctorCheck{Name: "data_dir", OK: false, Detail: err.Error()})
	} else {
		checks = append(checks, doctorCheck{Name: "data_dir", OK: true, Detail: cfg.DataDir})
	}

	dbPath := filepath.Join(cfg.DataDir, engine.DBFileName)
	st, err := store.Open(cmd.Context(), dbPath)
	if err != nil {
		checks = append(checks, doctorCheck{Name: "database", OK: false, Detail: err.Error()})
	} else {
		st.Close()
		checks = append(checks, doctorCheck{Name: "database", OK: true, Detail: dbPath})
	}

	healthy := true
	for _, c := range checks {
		if !c.OK {
			healthy = false
		}
	}
	return printJSON(struct {
		Healthy bool          `json:"healthy"`
		Checks  []doctorCheck `json:"checks"`
	}{Healthy: healthy, Checks: checks})
}
