package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/store"
)

// Findings persists agent-submitted findings.
type Findings struct {
	q Querier
}

// NewFindings creates a Findings repository over q.
func NewFindings(q Querier) *Findings {
	return &Findings{q: q}
}

const findingColumns = `id, game_id, agent_id, round, file_path, line_start, line_end,
	description, code_snippet, pattern_hash, status, duplicate_of, verdict,
	confidence, confidence_score, points_awarded, verification_status,
	verifier_note, issue_type, impact_tier, rejection_reason, created_at, updated_at`

// Create inserts the finding and increments the submitting agent's
// findings_submitted counter. Callers run this inside a store transaction so
// the two statements land atomically. The assigned ID is written back to f.
func (r *Findings) Create(ctx context.Context, f *game.Finding) error {
	const q = `INSERT INTO findings (game_id, agent_id, round, file_path, line_start,
		line_end, description, code_snippet, pattern_hash, status, duplicate_of,
		verdict, confidence, confidence_score, points_awarded, verification_status,
		verifier_note, issue_type, impact_tier, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		f.GameID, f.AgentID, f.Round, f.FilePath, f.LineStart, f.LineEnd,
		f.Description, f.CodeSnippet, f.PatternHash, string(f.Status),
		nullInt64(f.DuplicateOf), f.Verdict, string(f.Confidence),
		nullInt(f.ConfidenceScore), f.PointsAwarded, string(f.Verification),
		f.VerifierNote, f.IssueType, f.ImpactTier, f.RejectionReason,
		store.FormatTime(f.CreatedAt), store.FormatTime(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("repo: create finding: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("repo: finding insert id: %w", err)
	}
	f.ID = id

	if _, err := r.q.ExecContext(ctx,
		`UPDATE agents SET findings_submitted = findings_submitted + 1 WHERE id = ?`,
		f.AgentID); err != nil {
		return fmt.Errorf("repo: bump findings_submitted for %q: %w", f.AgentID, err)
	}
	return nil
}

// Update persists the mutable finding fields.
func (r *Findings) Update(ctx context.Context, f *game.Finding) error {
	const q = `UPDATE findings SET status = ?, duplicate_of = ?, verdict = ?,
		confidence = ?, confidence_score = ?, points_awarded = ?,
		verification_status = ?, verifier_note = ?, issue_type = ?,
		impact_tier = ?, rejection_reason = ?, updated_at = ? WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q,
		string(f.Status), nullInt64(f.DuplicateOf), f.Verdict,
		string(f.Confidence), nullInt(f.ConfidenceScore), f.PointsAwarded,
		string(f.Verification), f.VerifierNote, f.IssueType, f.ImpactTier,
		f.RejectionReason, store.FormatTime(f.UpdatedAt), f.ID,
	)
	if err != nil {
		return fmt.Errorf("repo: update finding %d: %w", f.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo: update finding %d: %w", f.ID, game.ErrFindingNotFound)
	}
	return nil
}

// FindByID loads a finding scoped to a game.
func (r *Findings) FindByID(ctx context.Context, gameID string, id int64) (*game.Finding, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+findingColumns+` FROM findings WHERE game_id = ? AND id = ?`, gameID, id)
	f, err := scanFinding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repo: finding %d in game %q: %w", id, gameID, game.ErrFindingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find finding %d: %w", id, err)
	}
	return f, nil
}

// FindByGameID returns every finding in the game in submission order.
func (r *Findings) FindByGameID(ctx context.Context, gameID string) ([]*game.Finding, error) {
	return r.query(ctx, `SELECT `+findingColumns+` FROM findings WHERE game_id = ? ORDER BY id`, gameID)
}

// FindPendingByRound returns the round's findings still awaiting a referee
// verdict, in submission order.
func (r *Findings) FindPendingByRound(ctx context.Context, gameID string, round int) ([]*game.Finding, error) {
	return r.query(ctx,
		`SELECT `+findingColumns+` FROM findings
		 WHERE game_id = ? AND round = ? AND status = ? ORDER BY id`,
		gameID, round, string(game.FindingPending))
}

// FindValid returns the game's currently-valid findings.
func (r *Findings) FindValid(ctx context.Context, gameID string) ([]*game.Finding, error) {
	return r.query(ctx,
		`SELECT `+findingColumns+` FROM findings
		 WHERE game_id = ? AND status = ? ORDER BY id`,
		gameID, string(game.FindingValid))
}

// FindPendingVerificationByRound returns the round's findings awaiting the
// verifier pass.
func (r *Findings) FindPendingVerificationByRound(ctx context.Context, gameID string, round int) ([]*game.Finding, error) {
	return r.query(ctx,
		`SELECT `+findingColumns+` FROM findings
		 WHERE game_id = ? AND round = ? AND verification_status = ? ORDER BY id`,
		gameID, round, string(game.VerificationPending))
}

// FindByPatternHash returns findings sharing the pattern hash. With validOnly
// the match set is {valid}; otherwise it is {valid, pending}, which is what
// duplicate detection during referee validation needs.
func (r *Findings) FindByPatternHash(ctx context.Context, gameID, hash string, validOnly bool) ([]*game.Finding, error) {
	if validOnly {
		return r.query(ctx,
			`SELECT `+findingColumns+` FROM findings
			 WHERE game_id = ? AND pattern_hash = ? AND status = ? ORDER BY id`,
			gameID, hash, string(game.FindingValid))
	}
	return r.query(ctx,
		`SELECT `+findingColumns+` FROM findings
		 WHERE game_id = ? AND pattern_hash = ? AND status IN (?, ?) ORDER BY id`,
		gameID, hash, string(game.FindingValid), string(game.FindingPending))
}

// FindReviewableForAgent returns valid findings the agent may dispute,
// excluding its own.
func (r *Findings) FindReviewableForAgent(ctx context.Context, gameID, agentID string) ([]*game.Finding, error) {
	return r.query(ctx,
		`SELECT `+findingColumns+` FROM findings
		 WHERE game_id = ? AND status = ? AND agent_id != ? ORDER BY id`,
		gameID, string(game.FindingValid), agentID)
}

// CountPendingByRound returns how many of the round's findings still await a verdict.
func (r *Findings) CountPendingByRound(ctx context.Context, gameID string, round int) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM findings WHERE game_id = ? AND round = ? AND status = ?`,
		gameID, round, string(game.FindingPending))
}

// CountByStatus returns the number of the game's findings in the given status.
func (r *Findings) CountByStatus(ctx context.Context, gameID string, status game.FindingStatus) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM findings WHERE game_id = ? AND status = ?`,
		gameID, string(status))
}

func (r *Findings) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo: count findings: %w", err)
	}
	return n, nil
}

func (r *Findings) query(ctx context.Context, query string, args ...any) ([]*game.Finding, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo: query findings: %w", err)
	}
	defer rows.Close()

	var out []*game.Finding
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan finding: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate findings: %w", err)
	}
	return out, nil
}

func scanFinding(s scanner) (*game.Finding, error) {
	var (
		f                    game.Finding
		status               string
		duplicateOf          sql.NullInt64
		confidence           string
		confidenceScore      sql.NullInt64
		verification         string
		createdAt, updatedAt string
	)
	err := s.Scan(&f.ID, &f.GameID, &f.AgentID, &f.Round, &f.FilePath,
		&f.LineStart, &f.LineEnd, &f.Description, &f.CodeSnippet,
		&f.PatternHash, &status, &duplicateOf, &f.Verdict, &confidence,
		&confidenceScore, &f.PointsAwarded, &verification, &f.VerifierNote,
		&f.IssueType, &f.ImpactTier, &f.RejectionReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	f.Status = game.FindingStatus(status)
	f.Confidence = game.Confidence(confidence)
	f.Verification = game.VerificationStatus(verification)
	if duplicateOf.Valid {
		f.DuplicateOf = &duplicateOf.Int64
	}
	if confidenceScore.Valid {
		v := int(confidenceScore.Int64)
		f.ConfidenceScore = &v
	}
	if f.CreatedAt, err = store.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = store.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
