// Package runner drives a whole game autonomously: parallel hunt and review
// agents against a shared deadline, sequential referee and verifier passes
// with per-item timeouts, and a progress event stream for any UI.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/boneshq/bones/internal/claude"
	"github.com/boneshq/bones/internal/engine"
	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/prompt"
)

// Per-item timeouts for the sequential adjudication passes.
const (
	DefaultRefereeTimeout  = 120 * time.Second
	DefaultVerifierTimeout = 90 * time.Second
	DefaultDisputeTimeout  = 90 * time.Second
)

// huntTools are the read-only code tools hunt and review agents get; they
// act on the game through the MCP tool server, never the shell.
var huntTools = []string{"Read", "Glob", "Grep"}

// adjudicatorTools additionally allow a shell scoped to the bones CLI so
// referees and verifiers can record their verdicts.
var adjudicatorTools = []string{"Read", "Glob", "Grep", "Bash(bones *)"}

// Runner executes rounds until the game completes or ctx is cancelled.
type Runner struct {
	Orch    *engine.Orchestrator
	Invoker claude.Invoker
	WorkDir string
	Model   string
	Verbose bool

	RefereeTimeout  time.Duration // zero uses DefaultRefereeTimeout
	VerifierTimeout time.Duration
	DisputeTimeout  time.Duration
	MCPConfigPath   string // tool server config handed to hunt/review agents

	OnEvent EventFunc // optional; nil drops events
	Logger  io.Writer // optional; nil logs to os.Stderr

	usage Usage
}

func (r *Runner) logger() io.Writer {
	if r.Logger != nil {
		return r.Logger
	}
	return os.Stderr
}

func (r *Runner) emit(ev Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
}

func (r *Runner) refereeTimeout() time.Duration {
	if r.RefereeTimeout > 0 {
		return r.RefereeTimeout
	}
	return DefaultRefereeTimeout
}

func (r *Runner) verifierTimeout() time.Duration {
	if r.VerifierTimeout > 0 {
		return r.VerifierTimeout
	}
	return DefaultVerifierTimeout
}

func (r *Runner) disputeTimeout() time.Duration {
	if r.DisputeTimeout > 0 {
		return r.DisputeTimeout
	}
	return DefaultDisputeTimeout
}

// Usage returns the accumulated cost totals for the run so far.
func (r *Runner) Usage() UsageSnapshot {
	return r.usage.Snapshot()
}

// Run plays rounds until a winner is decided, the round cap resolves the
// game, or ctx is cancelled. The phase machine enforces ordering; the runner
// only sequences the calls and supervises the agents.
func (r *Runner) Run(ctx context.Context, gameID string) error {
	g, err := r.Orch.Game(ctx, gameID)
	if err != nil {
		return err
	}
	r.emit(Event{Type: EventGameCreated, GameID: gameID, Round: g.Round})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := r.runRound(ctx, gameID)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// runRound executes one full round. Returns true when the game completed.
func (r *Runner) runRound(ctx context.Context, gameID string) (bool, error) {
	g, err := r.Orch.Game(ctx, gameID)
	if err != nil {
		return false, err
	}

	// Hunt.
	hs, err := r.Orch.Coordinator.StartHunt(ctx, gameID)
	if err != nil {
		return false, err
	}
	r.emit(Event{Type: EventRoundStart, GameID: gameID, Round: hs.Round})
	r.emit(Event{Type: EventHuntStart, GameID: gameID, Round: hs.Round})
	r.runParallelPhase(ctx, gameID, hs.Round, claude.RoleHunter, hs.Prompts, g.Config.HuntDuration, EventHuntAgentDone)
	r.emit(Event{Type: EventHuntEnd, GameID: gameID, Round: hs.Round})

	// Hunt scoring: referee each pending finding sequentially.
	ss, err := r.Orch.Coordinator.StartHuntScoring(ctx, gameID)
	if err != nil {
		return false, err
	}
	r.emit(Event{Type: EventScoringStart, GameID: gameID, Round: ss.Round})
	for _, task := range ss.Findings {
		res := r.invokeWithTimeout(ctx, claude.RoleReferee, task.Prompt, r.refereeTimeout())
		ev := Event{Type: EventFindingValidated, GameID: gameID, Round: ss.Round,
			FindingID: task.Finding.ID, AgentID: task.Finding.AgentID, Aborted: res.Aborted}
		if f, err := r.findingStatus(ctx, gameID, task.Finding.ID); err == nil {
			ev.Verdict = string(f.Status)
		}
		r.emit(ev)
	}
	r.emit(Event{Type: EventScoringEnd, GameID: gameID, Round: ss.Round})

	// Verification: second-check uncertain validations sequentially.
	pendingVer, err := r.Orch.PendingVerification(ctx, gameID, ss.Round)
	if err != nil {
		return false, err
	}
	if len(pendingVer) > 0 {
		r.emit(Event{Type: EventVerificationStart, GameID: gameID, Round: ss.Round})
		for _, f := range pendingVer {
			res := r.invokeWithTimeout(ctx, claude.RoleVerifier, r.verifierPrompt(ctx, gameID, f), r.verifierTimeout())
			ev := Event{Type: EventFindingVerified, GameID: gameID, Round: ss.Round,
				FindingID: f.ID, AgentID: f.AgentID, Aborted: res.Aborted}
			if fresh, err := r.findingStatus(ctx, gameID, f.ID); err == nil {
				ev.Verdict = string(fresh.Verification)
			}
			r.emit(ev)
		}
		r.emit(Event{Type: EventVerificationEnd, GameID: gameID, Round: ss.Round})
	}

	// Review.
	rs, err := r.Orch.Coordinator.StartReview(ctx, gameID)
	if err != nil {
		return false, err
	}
	r.emit(Event{Type: EventReviewStart, GameID: gameID, Round: rs.Round})
	r.runParallelPhase(ctx, gameID, rs.Round, claude.RoleReviewer, rs.Prompts, g.Config.ReviewDuration, EventReviewAgentDone)
	r.emit(Event{Type: EventReviewEnd, GameID: gameID, Round: rs.Round})

	// Review scoring: referee each dispute sequentially.
	ds, err := r.Orch.Coordinator.StartReviewScoring(ctx, gameID)
	if err != nil {
		return false, err
	}
	r.emit(Event{Type: EventDisputeScoringStart, GameID: gameID, Round: ds.Round})
	for _, task := range ds.Disputes {
		res := r.invokeWithTimeout(ctx, claude.RoleReferee, task.Prompt, r.disputeTimeout())
		ev := Event{Type: EventDisputeResolved, GameID: gameID, Round: ds.Round,
			DisputeID: task.Dispute.ID, FindingID: task.Finding.ID, Aborted: res.Aborted}
		if d, err := r.disputeStatus(ctx, gameID, task.Dispute.ID); err == nil {
			ev.Verdict = string(d.Status)
		}
		r.emit(ev)
	}
	r.emit(Event{Type: EventDisputeScoringEnd, GameID: gameID, Round: ds.Round})

	// Winner check.
	wc, err := r.Orch.Coordinator.CheckWinner(ctx, gameID)
	if err != nil {
		return false, err
	}
	r.emit(Event{Type: EventRoundComplete, GameID: gameID, Round: wc.Round,
		Outcome: wc.Outcome, Scores: wc.Scores})

	if wc.Outcome == engine.OutcomeGameComplete {
		usage := r.usage.Snapshot()
		r.emit(Event{Type: EventGameComplete, GameID: gameID, Round: wc.Round,
			Winner: wc.Winner, Reason: wc.Reason, Scores: wc.Scores, Usage: &usage})
		return true, nil
	}
	return false, nil
}

// runParallelPhase fans out one agent task per prompt, all bounded by a
// single phase deadline. Failures and aborts are logged per agent and never
// cancel the peers; an aborted agent counts as done for phase completion.
func (r *Runner) runParallelPhase(ctx context.Context, gameID string, round int, role claude.Role, prompts []engine.AgentPrompt, deadline time.Duration, doneEvent EventType) {
	phaseCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var wg sync.WaitGroup
	for _, p := range prompts {
		wg.Add(1)
		go func(p engine.AgentPrompt) {
			defer wg.Done()
			a := claude.Agent{
				Role:          role,
				Model:         r.Model,
				AllowedTools:  huntTools,
				MCPConfigPath: r.MCPConfigPath,
			}
			res, err := r.Invoker.Invoke(phaseCtx, a, p.Prompt, r.WorkDir)
			if err != nil {
				fmt.Fprintf(r.logger(), "[runner] %s agent %s failed: %v\n", role, p.AgentID, err)
				r.emit(Event{Type: doneEvent, GameID: gameID, Round: round, AgentID: p.AgentID, Err: err.Error()})
				return
			}
			r.usage.Record(res)
			r.emit(Event{Type: doneEvent, GameID: gameID, Round: round, AgentID: p.AgentID, Aborted: res.Aborted})
		}(p)
	}
	wg.Wait()
}

// invokeWithTimeout runs a single sequential agent (referee or verifier)
// bounded by its own timeout. Errors are logged, never propagated; the
// engine treats an unadjudicated item as still pending.
func (r *Runner) invokeWithTimeout(ctx context.Context, role claude.Role, prompt string, timeout time.Duration) claude.Result {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	a := claude.Agent{Role: role, Model: r.Model, AllowedTools: adjudicatorTools}
	res, err := r.Invoker.Invoke(callCtx, a, prompt, r.WorkDir)
	if err != nil {
		fmt.Fprintf(r.logger(), "[runner] %s invocation failed: %v\n", role, err)
		return claude.Result{}
	}
	r.usage.Record(res)
	return res
}

func (r *Runner) findingStatus(ctx context.Context, gameID string, id int64) (*game.Finding, error) {
	findings, err := r.Orch.Findings(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, f := range findings {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, game.ErrFindingNotFound
}

func (r *Runner) disputeStatus(ctx context.Context, gameID string, id int64) (*game.Dispute, error) {
	disputes, err := r.Orch.Disputes(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, d := range disputes {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, game.ErrDisputeNotFound
}

func (r *Runner) verifierPrompt(ctx context.Context, gameID string, f *game.Finding) string {
	g, err := r.Orch.Game(ctx, gameID)
	if err != nil {
		return f.Description
	}
	return prompt.Verifier(g, f)
}
