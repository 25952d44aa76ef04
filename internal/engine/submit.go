package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/repo"
	"github.com/boneshq/bones/internal/score"
	"github.com/boneshq/bones/internal/store"
)

// Submissions enforces the preconditions for agent-facing operations:
// submitting findings and disputes, marking done, and the referee-facing
// validate/verify/resolve paths that delegate to the Scorer.
type Submissions struct {
	store  *store.Store
	scorer *score.Scorer
	now    func() time.Time
}

// NewSubmissions creates a Submissions service over the store.
func NewSubmissions(s *store.Store, sc *score.Scorer) *Submissions {
	return &Submissions{store: s, scorer: sc, now: time.Now}
}

// loadGame fetches the game or reports ErrGameNotFound.
func (s *Submissions) loadGame(ctx context.Context, q repo.Querier, gameID string) (*game.Game, error) {
	return repo.NewGames(q).FindByID(ctx, gameID)
}

// loadGameAgent fetches the agent and checks it belongs to the game.
func (s *Submissions) loadGameAgent(ctx context.Context, q repo.Querier, gameID, agentID string) (*game.Agent, error) {
	a, err := repo.NewAgents(q).FindByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if a.GameID != gameID {
		return nil, fmt.Errorf("agent %q is not in game %q: %w", agentID, gameID, game.ErrAgentNotFound)
	}
	return a, nil
}

// SubmitFinding records a new finding during a hunt phase and returns its id.
func (s *Submissions) SubmitFinding(ctx context.Context, gameID, agentID, filePath string, lineStart, lineEnd int, description, snippet string) (int64, error) {
	var id int64
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		g, err := s.loadGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseHunt {
			return &game.PhaseError{Op: "submit finding", Current: g.Phase, Required: []game.Phase{game.PhaseHunt}}
		}
		a, err := s.loadGameAgent(ctx, tx, gameID, agentID)
		if err != nil {
			return err
		}
		if a.HasFinishedHunt(g.Round) {
			return fmt.Errorf("agent %q finished hunting in round %d: %w", agentID, g.Round, game.ErrAgentDone)
		}
		if g.Config.Category == game.CategoryDocDrift && snippet == "" {
			return game.ErrSnippetRequired
		}

		now := s.now()
		f, err := game.NewFinding(gameID, agentID, g.Round, filePath, lineStart, lineEnd, description, snippet, now)
		if err != nil {
			return err
		}
		f.PatternHash = score.PatternHash(filePath, lineStart, lineEnd, description)

		if err := repo.NewFindings(tx).Create(ctx, f); err != nil {
			return err
		}
		a.Heartbeat(now)
		if err := repo.NewAgents(tx).Update(ctx, a); err != nil {
			return err
		}
		id = f.ID
		return nil
	})
	return id, err
}

// SubmitDispute records a dispute against another agent's valid finding
// during a review phase and returns its id.
func (s *Submissions) SubmitDispute(ctx context.Context, gameID, agentID string, findingID int64, reason string) (int64, error) {
	var id int64
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		g, err := s.loadGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != game.PhaseReview {
			return &game.PhaseError{Op: "submit dispute", Current: g.Phase, Required: []game.Phase{game.PhaseReview}}
		}
		a, err := s.loadGameAgent(ctx, tx, gameID, agentID)
		if err != nil {
			return err
		}
		if a.HasFinishedReview(g.Round) {
			return fmt.Errorf("agent %q finished reviewing in round %d: %w", agentID, g.Round, game.ErrAgentDone)
		}

		findings := repo.NewFindings(tx)
		f, err := findings.FindByID(ctx, gameID, findingID)
		if err != nil {
			return err
		}
		if !f.IsValid() {
			return fmt.Errorf("finding %d is %s, only valid findings can be disputed: %w",
				findingID, f.Status, game.ErrInvalidState)
		}
		if f.AgentID == agentID {
			return game.ErrOwnFinding
		}

		disputes := repo.NewDisputes(tx)
		already, err := disputes.HasAgentDisputed(ctx, findingID, agentID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("finding %d: %w", findingID, game.ErrAlreadyDisputed)
		}

		now := s.now()
		d := game.NewDispute(gameID, findingID, agentID, g.Round, reason, now)
		if err := disputes.Create(ctx, d); err != nil {
			return err
		}
		a.Heartbeat(now)
		if err := repo.NewAgents(tx).Update(ctx, a); err != nil {
			return err
		}
		id = d.ID
		return nil
	})
	return id, err
}

// MarkAgentDone records that the agent finished the given timed phase for the
// current round. The phase argument must match the game's phase.
func (s *Submissions) MarkAgentDone(ctx context.Context, gameID, agentID string, phase game.Phase) error {
	return s.store.Tx(ctx, func(tx *sql.Tx) error {
		g, err := s.loadGame(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if g.Phase != phase {
			return &game.PhaseError{Op: "mark done", Current: g.Phase, Required: []game.Phase{phase}}
		}
		a, err := s.loadGameAgent(ctx, tx, gameID, agentID)
		if err != nil {
			return err
		}
		switch phase {
		case game.PhaseHunt:
			a.MarkHuntDone(g.Round)
		case game.PhaseReview:
			a.MarkReviewDone(g.Round)
		default:
			return &game.PhaseError{Op: "mark done", Current: g.Phase, Required: []game.Phase{game.PhaseHunt, game.PhaseReview}}
		}
		a.Heartbeat(s.now())
		return repo.NewAgents(tx).Update(ctx, a)
	})
}

// ValidateFinding records a referee verdict on a finding. The Scorer performs
// the in-transaction duplicate re-check.
func (s *Submissions) ValidateFinding(ctx context.Context, gameID string, findingID int64, in score.ValidationInput) (score.ValidationResult, error) {
	f, err := repo.NewFindings(s.store.DB()).FindByID(ctx, gameID, findingID)
	if err != nil {
		return score.ValidationResult{}, err
	}
	return s.scorer.ApplyFindingValidation(ctx, f, in)
}

// VerifyFinding resolves a finding's pending verification.
func (s *Submissions) VerifyFinding(ctx context.Context, gameID string, findingID int64, confirmed bool, explanation, overriddenType, rejectionReason string) (int, error) {
	f, err := repo.NewFindings(s.store.DB()).FindByID(ctx, gameID, findingID)
	if err != nil {
		return 0, err
	}
	if f.Verification != game.VerificationPending {
		return 0, fmt.Errorf("finding %d verification is %s, not pending: %w", findingID, f.Verification, game.ErrInvalidState)
	}
	return s.scorer.ApplyVerification(ctx, f, confirmed, explanation, overriddenType, rejectionReason)
}

// ResolveDispute records a referee decision on a dispute.
func (s *Submissions) ResolveDispute(ctx context.Context, gameID string, disputeID int64, successful bool, explanation string) error {
	d, err := repo.NewDisputes(s.store.DB()).FindByID(ctx, gameID, disputeID)
	if err != nil {
		return err
	}
	f, err := repo.NewFindings(s.store.DB()).FindByID(ctx, gameID, d.FindingID)
	if err != nil {
		return err
	}
	return s.scorer.ApplyDisputeResolution(ctx, d, f, successful, explanation)
}
