// Package engine drives the tournament: phase transitions, submission
// preconditions and winner determination, composed behind the Orchestrator
// façade.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/prompt"
	"github.com/boneshq/bones/internal/repo"
	"github.com/boneshq/bones/internal/store"
)

// Coordinator owns the phase state machine: it performs the legal
// transitions, computes deadlines, assembles per-phase prompts and decides
// winner or continuation after each round.
type Coordinator struct {
	store *store.Store
	now   func() time.Time
	pick  func(n int) int // tiebreak at the round cap; tests inject a deterministic pick
}

// NewCoordinator creates a Coordinator over the store.
func NewCoordinator(s *store.Store) *Coordinator {
	return &Coordinator{store: s, now: time.Now, pick: rand.Intn}
}

// StartHunt begins the next round: increments the round counter, sets the
// hunt deadline and renders one hunt prompt per active agent.
func (c *Coordinator) StartHunt(ctx context.Context, gameID string) (*HuntStart, error) {
	var result *HuntStart
	err := c.store.Tx(ctx, func(tx *sql.Tx) error {
		games := repo.NewGames(tx)
		agents := repo.NewAgents(tx)

		g, err := games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if err := g.StartHunt(c.now()); err != nil {
			return err
		}
		if err := games.Update(ctx, g); err != nil {
			return err
		}

		active, err := agents.FindActive(ctx, gameID)
		if err != nil {
			return err
		}
		prompts := make([]AgentPrompt, 0, len(active))
		for _, a := range active {
			prompts = append(prompts, AgentPrompt{AgentID: a.ID, Name: a.Name, Prompt: prompt.Hunt(g, a)})
		}
		result = &HuntStart{GameID: g.ID, Round: g.Round, Deadline: *g.Deadline, Prompts: prompts}
		return nil
	})
	return result, err
}

// CheckHunt reports hunt progress without mutating state.
func (c *Coordinator) CheckHunt(ctx context.Context, gameID string) (*PhaseCheck, error) {
	return c.checkTimedPhase(ctx, gameID, game.PhaseHunt)
}

// CheckReview reports review progress without mutating state.
func (c *Coordinator) CheckReview(ctx context.Context, gameID string) (*PhaseCheck, error) {
	return c.checkTimedPhase(ctx, gameID, game.PhaseReview)
}

func (c *Coordinator) checkTimedPhase(ctx context.Context, gameID string, phase game.Phase) (*PhaseCheck, error) {
	games := repo.NewGames(c.store.DB())
	agents := repo.NewAgents(c.store.DB())

	g, err := games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Phase != phase {
		return nil, &game.PhaseError{Op: "check " + string(phase), Current: g.Phase, Required: []game.Phase{phase}}
	}

	var pending []*game.Agent
	if phase == game.PhaseHunt {
		pending, err = agents.PendingHuntAgents(ctx, gameID, g.Round)
	} else {
		pending, err = agents.PendingReviewAgents(ctx, gameID, g.Round)
	}
	if err != nil {
		return nil, err
	}

	now := c.now()
	pendingIDs := make([]string, 0, len(pending))
	for _, a := range pending {
		pendingIDs = append(pendingIDs, a.ID)
	}
	expired := g.Expired(now)
	allDone := len(pending) == 0
	return &PhaseCheck{
		Phase:             g.Phase,
		Round:             g.Round,
		TimeExpired:       expired,
		RemainingSeconds:  int(g.Remaining(now).Seconds()),
		AllAgentsFinished: allDone,
		ReadyForScoring:   expired || allDone,
		Pending:           pendingIDs,
	}, nil
}

// StartHuntScoring moves to hunt_scoring and returns the referee work list:
// one prompt per finding still pending for this round. It does not require
// all agents to be done; a timeout counts as completion.
func (c *Coordinator) StartHuntScoring(ctx context.Context, gameID string) (*ScoringStart, error) {
	var result *ScoringStart
	err := c.store.Tx(ctx, func(tx *sql.Tx) error {
		games := repo.NewGames(tx)
		findings := repo.NewFindings(tx)

		g, err := games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if err := g.StartHuntScoring(c.now()); err != nil {
			return err
		}
		if err := games.Update(ctx, g); err != nil {
			return err
		}

		pending, err := findings.FindPendingByRound(ctx, gameID, g.Round)
		if err != nil {
			return err
		}
		tasks := make([]FindingTask, 0, len(pending))
		for _, f := range pending {
			tasks = append(tasks, FindingTask{Finding: f, Prompt: prompt.RefereeFinding(g, f)})
		}
		result = &ScoringStart{GameID: g.ID, Round: g.Round, Findings: tasks}
		return nil
	})
	return result, err
}

// StartReview moves to review, sets the review deadline and renders one
// review prompt per active agent over the findings it may dispute.
func (c *Coordinator) StartReview(ctx context.Context, gameID string) (*ReviewStart, error) {
	var result *ReviewStart
	err := c.store.Tx(ctx, func(tx *sql.Tx) error {
		games := repo.NewGames(tx)
		agents := repo.NewAgents(tx)
		findings := repo.NewFindings(tx)

		g, err := games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if err := g.StartReview(c.now()); err != nil {
			return err
		}
		if err := games.Update(ctx, g); err != nil {
			return err
		}

		active, err := agents.FindActive(ctx, gameID)
		if err != nil {
			return err
		}
		prompts := make([]AgentPrompt, 0, len(active))
		for _, a := range active {
			reviewable, err := findings.FindReviewableForAgent(ctx, gameID, a.ID)
			if err != nil {
				return err
			}
			prompts = append(prompts, AgentPrompt{AgentID: a.ID, Name: a.Name, Prompt: prompt.Review(g, a, reviewable)})
		}
		result = &ReviewStart{GameID: g.ID, Round: g.Round, Deadline: *g.Deadline, Prompts: prompts}
		return nil
	})
	return result, err
}

// StartReviewScoring moves to review_scoring and returns the referee work
// list: one prompt per pending dispute for this round.
func (c *Coordinator) StartReviewScoring(ctx context.Context, gameID string) (*DisputeScoring, error) {
	var result *DisputeScoring
	err := c.store.Tx(ctx, func(tx *sql.Tx) error {
		games := repo.NewGames(tx)
		findings := repo.NewFindings(tx)
		disputes := repo.NewDisputes(tx)

		g, err := games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if err := g.StartReviewScoring(c.now()); err != nil {
			return err
		}
		if err := games.Update(ctx, g); err != nil {
			return err
		}

		pending, err := disputes.FindPendingByRound(ctx, gameID, g.Round)
		if err != nil {
			return err
		}
		tasks := make([]DisputeTask, 0, len(pending))
		for _, d := range pending {
			f, err := findings.FindByID(ctx, gameID, d.FindingID)
			if err != nil {
				return err
			}
			tasks = append(tasks, DisputeTask{Dispute: d, Finding: f, Prompt: prompt.RefereeDispute(g, d, f)})
		}
		result = &DisputeScoring{GameID: g.ID, Round: g.Round, Disputes: tasks}
		return nil
	})
	return result, err
}

// CheckWinner decides the round outcome after review scoring.
//
// Any single agent at or above the target score wins. Multiple agents above
// target means a tie-breaker round. At the round cap the leader wins; a tie
// at the top is broken by a uniformly random pick, which the result's reason
// spells out. Otherwise the game continues.
func (c *Coordinator) CheckWinner(ctx context.Context, gameID string) (*WinnerCheck, error) {
	var result *WinnerCheck
	err := c.store.Tx(ctx, func(tx *sql.Tx) error {
		games := repo.NewGames(tx)
		agents := repo.NewAgents(tx)

		g, err := games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseReviewScoring {
			return &game.PhaseError{Op: "check winner", Current: g.Phase, Required: []game.Phase{game.PhaseReviewScoring}}
		}

		board, err := agents.Scoreboard(ctx, gameID)
		if err != nil {
			return err
		}
		scores := make([]ScoreboardEntry, 0, len(board))
		for _, a := range board {
			scores = append(scores, ScoreboardEntry{AgentID: a.ID, Name: a.Name, Score: a.Score, FindingsValid: a.FindingsValid})
		}

		var atTarget []*game.Agent
		for _, a := range board {
			if a.Score >= g.Config.TargetScore {
				atTarget = append(atTarget, a)
			}
		}

		switch {
		case len(atTarget) == 1:
			winner := atTarget[0]
			reason := fmt.Sprintf("%s reached the target score of %d", winner.Name, g.Config.TargetScore)
			if err := c.complete(ctx, tx, g, winner); err != nil {
				return err
			}
			result = &WinnerCheck{Outcome: OutcomeGameComplete, Round: g.Round, Winner: winner.ID, Reason: reason, Scores: scores}
		case len(atTarget) > 1:
			result = &WinnerCheck{
				Outcome: OutcomeTieBreaker,
				Round:   g.Round,
				Reason:  fmt.Sprintf("%d agents reached the target score; playing a tie-breaker round", len(atTarget)),
				Scores:  scores,
			}
		case g.AtRoundCap() && len(board) > 0:
			leader := board[0]
			var tied []*game.Agent
			for _, a := range board {
				if a.Score == leader.Score {
					tied = append(tied, a)
				}
			}
			winner := leader
			reason := fmt.Sprintf("round cap of %d reached; %s leads", g.Config.MaxRounds, leader.Name)
			if len(tied) > 1 {
				winner = tied[c.pick(len(tied))]
				names := make([]string, len(tied))
				for i, a := range tied {
					names[i] = a.Name
				}
				reason = fmt.Sprintf("round cap of %d reached with %s tied at %d; %s won the random tiebreak",
					g.Config.MaxRounds, strings.Join(names, ", "), leader.Score, winner.Name)
			}
			if err := c.complete(ctx, tx, g, winner); err != nil {
				return err
			}
			result = &WinnerCheck{Outcome: OutcomeGameComplete, Round: g.Round, Winner: winner.ID, Reason: reason, Scores: scores}
		default:
			result = &WinnerCheck{Outcome: OutcomeContinue, Round: g.Round, Scores: scores}
		}
		return nil
	})
	return result, err
}

// complete marks the winner and transitions the game to its terminal phase.
func (c *Coordinator) complete(ctx context.Context, tx *sql.Tx, g *game.Game, winner *game.Agent) error {
	games := repo.NewGames(tx)
	agents := repo.NewAgents(tx)

	winner.Status = game.AgentWinner
	if err := agents.Update(ctx, winner); err != nil {
		return err
	}
	if err := g.Complete(winner.ID, c.now()); err != nil {
		return err
	}
	return games.Update(ctx, g)
}
