package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/store"
)

// Disputes persists review-phase disputes.
type Disputes struct {
	q Querier
}

// NewDisputes creates a Disputes repository over q.
func NewDisputes(q Querier) *Disputes {
	return &Disputes{q: q}
}

const disputeColumns = `id, game_id, finding_id, disputer_id, round, reason,
	status, verdict, points_awarded, created_at, resolved_at`

// Create inserts a new dispute row. The assigned ID is written back to d.
// The unique (finding_id, disputer_id) index backs up the service-level
// double-dispute check.
func (r *Disputes) Create(ctx context.Context, d *game.Dispute) error {
	const q = `INSERT INTO disputes (game_id, finding_id, disputer_id, round,
		reason, status, verdict, points_awarded, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		d.GameID, d.FindingID, d.DisputerID, d.Round, d.Reason,
		string(d.Status), d.Verdict, d.PointsAwarded,
		store.FormatTime(d.CreatedAt), store.NullTime(d.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("repo: create dispute: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("repo: dispute insert id: %w", err)
	}
	d.ID = id
	return nil
}

// Update persists the mutable dispute fields.
func (r *Disputes) Update(ctx context.Context, d *game.Dispute) error {
	const q = `UPDATE disputes SET status = ?, verdict = ?, points_awarded = ?,
		resolved_at = ? WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q,
		string(d.Status), d.Verdict, d.PointsAwarded,
		store.NullTime(d.ResolvedAt), d.ID,
	)
	if err != nil {
		return fmt.Errorf("repo: update dispute %d: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo: update dispute %d: %w", d.ID, game.ErrDisputeNotFound)
	}
	return nil
}

// FindByID loads a dispute scoped to a game.
func (r *Disputes) FindByID(ctx context.Context, gameID string, id int64) (*game.Dispute, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+disputeColumns+` FROM disputes WHERE game_id = ? AND id = ?`, gameID, id)
	d, err := scanDispute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repo: dispute %d in game %q: %w", id, gameID, game.ErrDisputeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find dispute %d: %w", id, err)
	}
	return d, nil
}

// FindByGameID returns every dispute in the game in filing order.
func (r *Disputes) FindByGameID(ctx context.Context, gameID string) ([]*game.Dispute, error) {
	return r.query(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE game_id = ? ORDER BY id`, gameID)
}

// FindPendingByRound returns the round's unresolved disputes in filing order.
func (r *Disputes) FindPendingByRound(ctx context.Context, gameID string, round int) ([]*game.Dispute, error) {
	return r.query(ctx,
		`SELECT `+disputeColumns+` FROM disputes
		 WHERE game_id = ? AND round = ? AND status = ? ORDER BY id`,
		gameID, round, string(game.DisputePending))
}

// HasAgentDisputed reports whether the agent already filed a dispute against
// the finding, in any status.
func (r *Disputes) HasAgentDisputed(ctx context.Context, findingID int64, agentID string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM disputes WHERE finding_id = ? AND disputer_id = ?`,
		findingID, agentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("repo: check dispute for finding %d by %q: %w", findingID, agentID, err)
	}
	return n > 0, nil
}

func (r *Disputes) query(ctx context.Context, query string, args ...any) ([]*game.Dispute, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo: query disputes: %w", err)
	}
	defer rows.Close()

	var out []*game.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan dispute: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate disputes: %w", err)
	}
	return out, nil
}

func scanDispute(s scanner) (*game.Dispute, error) {
	var (
		d          game.Dispute
		status     string
		createdAt  string
		resolvedAt sql.NullString
	)
	err := s.Scan(&d.ID, &d.GameID, &d.FindingID, &d.DisputerID, &d.Round,
		&d.Reason, &status, &d.Verdict, &d.PointsAwarded, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	d.Status = game.DisputeStatus(status)
	if d.CreatedAt, err = store.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if d.ResolvedAt, err = store.ParseNullTime(resolvedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
