package score

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/repo"
	"github.com/boneshq/bones/internal/store"
)

// Verdict is a referee decision on a finding.
type Verdict string

const (
	VerdictValid     Verdict = "VALID"
	VerdictFalse     Verdict = "FALSE"
	VerdictDuplicate Verdict = "DUPLICATE"
)

// ValidationInput carries a referee verdict into the scorer.
type ValidationInput struct {
	Verdict           Verdict
	Explanation       string
	Confidence        game.Confidence
	ConfidenceScore   *int
	DuplicateOf       *int64 // required when Verdict == VerdictDuplicate
	IssueType         string
	ImpactTier        string
	RejectionReason   string
	NeedsVerification bool
}

// ValidationResult reports the verdict that was actually applied, which may
// differ from the input when the in-transaction duplicate re-check fires.
type ValidationResult struct {
	Verdict     Verdict
	DuplicateOf *int64
	Points      int
}

// Scorer applies validation and dispute outcomes to finding and agent state.
// Every operation runs under a single store transaction so partial updates
// are never observable.
type Scorer struct {
	store *store.Store
	now   func() time.Time
}

// NewScorer creates a Scorer over the store.
func NewScorer(s *store.Store) *Scorer {
	return &Scorer{store: s, now: time.Now}
}

// ApplyFindingValidation applies a referee verdict to a pending finding.
//
// When the incoming verdict is VALID, the pattern hash is re-checked against
// currently-valid findings inside the transaction. If an earlier finding owns
// the hash, the verdict is overwritten to DUPLICATE referencing it. This is
// what keeps two referees validating colliding findings from both producing
// a valid outcome: the check and the mark happen under the same write lock.
func (s *Scorer) ApplyFindingValidation(ctx context.Context, f *game.Finding, in ValidationInput) (ValidationResult, error) {
	var result ValidationResult
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		agents := repo.NewAgents(tx)
		findings := repo.NewFindings(tx)

		// Re-read the finding under the write lock: a racing validation may
		// already have finalized it, and only the fresh state can trip the
		// entity's pending guard.
		fresh, err := findings.FindByID(ctx, f.GameID, f.ID)
		if err != nil {
			return err
		}
		*f = *fresh

		agent, err := agents.FindByID(ctx, f.AgentID)
		if err != nil {
			return err
		}

		verdict := in.Verdict
		duplicateOf := in.DuplicateOf
		needsVerification := in.NeedsVerification

		if verdict == VerdictValid {
			matches, err := findings.FindByPatternHash(ctx, f.GameID, f.PatternHash, true)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if m.ID != f.ID {
					verdict = VerdictDuplicate
					duplicateOf = &m.ID
					needsVerification = false
					break
				}
			}
		}

		now := s.now()
		var points int
		switch verdict {
		case VerdictValid:
			points, err = f.Validate(in.Explanation, in.Confidence, in.ConfidenceScore,
				in.IssueType, in.ImpactTier, needsVerification, now)
			if err != nil {
				return fmt.Errorf("score: validate finding %d: %w", f.ID, err)
			}
			if !needsVerification {
				agent.AddPoints(points)
				agent.FindingsValid++
			}
		case VerdictFalse:
			points, err = f.MarkFalse(in.Explanation, in.RejectionReason, now)
			if err != nil {
				return fmt.Errorf("score: reject finding %d: %w", f.ID, err)
			}
			agent.AddPoints(points)
			agent.FindingsFalse++
		case VerdictDuplicate:
			if duplicateOf == nil {
				return fmt.Errorf("score: duplicate verdict for finding %d requires a duplicate-of id", f.ID)
			}
			points, err = f.MarkDuplicate(in.Explanation, *duplicateOf, now)
			if err != nil {
				return fmt.Errorf("score: mark finding %d duplicate: %w", f.ID, err)
			}
			agent.AddPoints(points)
			agent.FindingsDuplicate++
		default:
			return fmt.Errorf("score: unknown verdict %q", verdict)
		}

		if err := findings.Update(ctx, f); err != nil {
			return err
		}
		if err := agents.Update(ctx, agent); err != nil {
			return err
		}

		result = ValidationResult{Verdict: verdict, DuplicateOf: f.DuplicateOf, Points: points}
		return nil
	})
	return result, err
}

// ApplyDisputeResolution applies a referee verdict to a pending dispute.
//
// A successful dispute always pays the disputer; the finding is revoked only
// if it still stands as valid. An earlier concurrent dispute may already have
// revoked it, in which case the finder is left untouched.
func (s *Scorer) ApplyDisputeResolution(ctx context.Context, d *game.Dispute, f *game.Finding, successful bool, explanation string) error {
	return s.store.Tx(ctx, func(tx *sql.Tx) error {
		agents := repo.NewAgents(tx)
		findings := repo.NewFindings(tx)
		disputes := repo.NewDisputes(tx)

		disputer, err := agents.FindByID(ctx, d.DisputerID)
		if err != nil {
			return err
		}

		// Re-read the finding under the write lock: an earlier dispute in the
		// same round may already have revoked it.
		fresh, err := findings.FindByID(ctx, f.GameID, f.ID)
		if err != nil {
			return err
		}
		*f = *fresh

		now := s.now()
		points, err := d.Resolve(successful, explanation, now)
		if err != nil {
			return fmt.Errorf("score: resolve dispute %d: %w", d.ID, err)
		}
		disputer.AddPoints(points)
		if successful {
			disputer.DisputesWon++
		} else {
			disputer.DisputesLost++
		}

		if successful && f.IsValid() {
			finder, err := agents.FindByID(ctx, f.AgentID)
			if err != nil {
				return err
			}
			// A pending verification means the valid stats were never
			// recorded, so there is nothing to revert there.
			wasPendingVerification := f.Verification == game.VerificationPending

			finder.AddPoints(-f.PointsAwarded)
			if err := f.RevokeValidation(explanation, now); err != nil {
				return fmt.Errorf("score: revoke finding %d: %w", f.ID, err)
			}
			finder.AddPoints(f.PointsAwarded)

			if wasPendingVerification {
				finder.FindingsFalse++
			} else if err := finder.RevertValidToFalse(); err != nil {
				return fmt.Errorf("score: revert stats for %q: %w", finder.ID, err)
			}

			if err := findings.Update(ctx, f); err != nil {
				return err
			}
			if err := agents.Update(ctx, finder); err != nil {
				return err
			}
		}

		if err := disputes.Update(ctx, d); err != nil {
			return err
		}
		return agents.Update(ctx, disputer)
	})
}

// ApplyVerification resolves a finding's pending verification: confirmation
// awards the withheld points, rejection flips the finding to false_flag with
// the standard penalty. Runs under one transaction.
func (s *Scorer) ApplyVerification(ctx context.Context, f *game.Finding, confirmed bool, explanation, overriddenType, rejectionReason string) (int, error) {
	var awarded int
	err := s.store.Tx(ctx, func(tx *sql.Tx) error {
		agents := repo.NewAgents(tx)
		findings := repo.NewFindings(tx)

		// Same re-read as validation: a racing verify call must not land twice.
		fresh, err := findings.FindByID(ctx, f.GameID, f.ID)
		if err != nil {
			return err
		}
		*f = *fresh

		agent, err := agents.FindByID(ctx, f.AgentID)
		if err != nil {
			return err
		}

		points, err := f.ApplyVerification(confirmed, explanation, overriddenType, rejectionReason, s.now())
		if err != nil {
			return fmt.Errorf("score: verify finding %d: %w", f.ID, err)
		}
		agent.AddPoints(points)
		if confirmed {
			agent.FindingsValid++
		} else {
			agent.FindingsFalse++
		}
		awarded = points

		if err := findings.Update(ctx, f); err != nil {
			return err
		}
		return agents.Update(ctx, agent)
	})
	return awarded, err
}

// CheckForDuplicate is the pure pre-check: it returns the earliest valid
// finding sharing the hash, or nil. The canonical check remains inside
// ApplyFindingValidation.
func (s *Scorer) CheckForDuplicate(ctx context.Context, gameID, patternHash string) (*game.Finding, error) {
	findings := repo.NewFindings(s.store.DB())
	matches, err := findings.FindByPatternHash(ctx, gameID, patternHash, true)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
