// Package claude drives the claude CLI as the LLM backend for tournament
// agents. The engine never parses agent output; agents act through the tool
// server and the CLI, and this package only reports text, cost and usage.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Role identifies which tournament seat an invocation fills.
type Role string

const (
	RoleHunter   Role = "hunter"
	RoleReviewer Role = "reviewer"
	RoleReferee  Role = "referee"
	RoleVerifier Role = "verifier"
)

// Agent describes one invocation's configuration.
type Agent struct {
	Role          Role
	SystemPrompt  string
	Model         string
	AllowedTools  []string // passed as --allowedTools flags
	MCPConfigPath string   // tool server config handed to the CLI
}

// Result is the outcome of one agent invocation.
type Result struct {
	Text        string
	CostUSD     float64
	DurationMs  int64
	NumTurns    int
	SessionID   string
	Aborted     bool   // deadline or external cancel
	AbortReason string // set when Aborted
}

// Invoker runs one agent invocation to completion or cancellation.
type Invoker interface {
	Invoke(ctx context.Context, a Agent, prompt, workDir string) (Result, error)
	Validate() error
}

// CLIInvoker shells out to the claude CLI.
type CLIInvoker struct {
	ClaudePath string
	Verbose    bool
}

// NewInvoker creates a CLIInvoker for the given binary path.
func NewInvoker(claudePath string, verbose bool) *CLIInvoker {
	return &CLIInvoker{ClaudePath: claudePath, Verbose: verbose}
}

// cliResponse is the claude CLI's --output-format json envelope.
type cliResponse struct {
	Type         string  `json:"type"`
	Subtype      string  `json:"subtype"`
	IsError      bool    `json:"is_error"`
	DurationMs   int64   `json:"duration_ms"`
	NumTurns     int     `json:"num_turns"`
	Result       string  `json:"result"`
	SessionID    string  `json:"session_id"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// buildEnv constructs the environment for a claude invocation. It strips the
// CLAUDECODE variable (to allow nested invocation) and suppresses MCP UI
// popups during headless runs.
func buildEnv(base []string) []string {
	env := make([]string, 0, len(base)+1)
	for _, e := range base {
		if !strings.HasPrefix(e, "CLAUDECODE=") {
			env = append(env, e)
		}
	}
	env = append(env, "CLAUDE_CODE_DISABLE_MCP_POPUPS=1")
	return env
}

// buildArgs constructs the CLI arguments for a claude invocation.
func buildArgs(a Agent, prompt string) []string {
	args := []string{
		"-p", prompt,
		"--output-format", "json",
	}
	if a.SystemPrompt != "" {
		args = append(args, "--system-prompt", a.SystemPrompt)
	}
	if a.Model != "" {
		args = append(args, "--model", a.Model)
	}
	for _, tool := range a.AllowedTools {
		args = append(args, "--allowedTools", tool)
	}
	if a.MCPConfigPath != "" {
		args = append(args, "--mcp-config", a.MCPConfigPath)
	}
	return args
}

// Invoke runs one agent to completion. Cancellation of ctx kills the
// subprocess; the caller decides whether that counts as an abort or a failure.
func (inv *CLIInvoker) Invoke(ctx context.Context, a Agent, prompt, workDir string) (Result, error) {
	args := buildArgs(a, prompt)

	cmd := exec.CommandContext(ctx, inv.ClaudePath, args...)
	cmd.Dir = workDir
	cmd.SysProcAttr = sessionAttr()
	cmd.Env = buildEnv(os.Environ())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if inv.Verbose {
		fmt.Fprintf(os.Stderr, "[claude] running %s agent: %s %s\n", a.Role, inv.ClaudePath, strings.Join(args, " "))
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Aborted: true, AbortReason: ctxErr.Error()}, nil
		}
		return Result{}, fmt.Errorf("claude invocation failed: %w\nstderr: %s", err, stderr.String())
	}

	var resp cliResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("failed to parse claude JSON output: %w\nraw output: %s", err, stdout.String())
	}
	if resp.IsError {
		return Result{}, fmt.Errorf("claude returned error: %s", resp.Result)
	}

	return Result{
		Text:       resp.Result,
		CostUSD:    resp.TotalCostUSD,
		DurationMs: resp.DurationMs,
		NumTurns:   resp.NumTurns,
		SessionID:  resp.SessionID,
	}, nil
}

// Validate checks the claude CLI is reachable.
func (inv *CLIInvoker) Validate() error {
	cmd := exec.Command(inv.ClaudePath, "--version")
	cmd.Env = buildEnv(os.Environ())

	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("claude CLI not found at %q: %w", inv.ClaudePath, err)
	}
	if inv.Verbose {
		fmt.Fprintf(os.Stderr, "[claude] version: %s", string(out))
	}
	return nil
}

// IsAbort reports whether err stems from context cancellation.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
