package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/store"
)

// Games persists game aggregates.
type Games struct {
	q Querier
}

// NewGames creates a Games repository over q.
func NewGames(q Querier) *Games {
	return &Games{q: q}
}

const gameColumns = `id, project_url, category, focus, target_score, hunt_seconds,
	review_seconds, num_agents, max_rounds, phase, round, deadline,
	winner_agent_id, completed_at, created_at, updated_at`

// Create inserts a new game row.
func (r *Games) Create(ctx context.Context, g *game.Game) error {
	const q = `INSERT INTO games (` + gameColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q,
		g.ID, g.Config.ProjectURL, string(g.Config.Category), g.Config.Focus,
		g.Config.TargetScore, int(g.Config.HuntDuration.Seconds()),
		int(g.Config.ReviewDuration.Seconds()), g.Config.NumAgents,
		g.Config.MaxRounds, string(g.Phase), g.Round, store.NullTime(g.Deadline),
		g.WinnerID, store.NullTime(g.CompletedAt),
		store.FormatTime(g.CreatedAt), store.FormatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("repo: create game %q: %w", g.ID, err)
	}
	return nil
}

// Update persists the mutable game fields.
func (r *Games) Update(ctx context.Context, g *game.Game) error {
	const q = `UPDATE games SET phase = ?, round = ?, deadline = ?,
		winner_agent_id = ?, completed_at = ?, updated_at = ? WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q,
		string(g.Phase), g.Round, store.NullTime(g.Deadline),
		g.WinnerID, store.NullTime(g.CompletedAt), store.FormatTime(g.UpdatedAt), g.ID,
	)
	if err != nil {
		return fmt.Errorf("repo: update game %q: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo: update game %q: %w", g.ID, game.ErrGameNotFound)
	}
	return nil
}

// FindByID loads a game by ID.
func (r *Games) FindByID(ctx context.Context, id string) (*game.Game, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repo: game %q: %w", id, game.ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find game %q: %w", id, err)
	}
	return g, nil
}

// FindAll returns every game, newest first.
func (r *Games) FindAll(ctx context.Context) ([]*game.Game, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repo: list games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// FindActiveByProject returns non-complete games for a project URL, newest first.
func (r *Games) FindActiveByProject(ctx context.Context, projectURL string) ([]*game.Game, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE project_url = ? AND phase != ? ORDER BY created_at DESC`,
		projectURL, string(game.PhaseComplete))
	if err != nil {
		return nil, fmt.Errorf("repo: active games for %q: %w", projectURL, err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// Delete removes a game; agents, findings and disputes cascade.
func (r *Games) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("repo: delete game %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo: delete game %q: %w", id, game.ErrGameNotFound)
	}
	return nil
}

func collectGames(rows *sql.Rows) ([]*game.Game, error) {
	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan game: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate games: %w", err)
	}
	return out, nil
}

func scanGame(s scanner) (*game.Game, error) {
	var (
		g                          game.Game
		category                   string
		huntSeconds, reviewSeconds int
		phase                      string
		deadline, completedAt      sql.NullString
		createdAt, updatedAt       string
	)
	err := s.Scan(&g.ID, &g.Config.ProjectURL, &category, &g.Config.Focus,
		&g.Config.TargetScore, &huntSeconds, &reviewSeconds,
		&g.Config.NumAgents, &g.Config.MaxRounds, &phase, &g.Round,
		&deadline, &g.WinnerID, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	g.Config.Category = game.Category(category)
	g.Config.HuntDuration = time.Duration(huntSeconds) * time.Second
	g.Config.ReviewDuration = time.Duration(reviewSeconds) * time.Second
	g.Phase = game.Phase(phase)
	if g.Deadline, err = store.ParseNullTime(deadline); err != nil {
		return nil, err
	}
	if g.CompletedAt, err = store.ParseNullTime(completedAt); err != nil {
		return nil, err
	}
	if g.CreatedAt, err = store.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = store.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
