package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/store"
)

// Agents persists competing agents.
type Agents struct {
	q Querier
}

// NewAgents creates an Agents repository over q.
func NewAgents(q Querier) *Agents {
	return &Agents{q: q}
}

const agentColumns = `id, game_id, name, score, findings_submitted, findings_valid,
	findings_false, findings_duplicate, disputes_won, disputes_lost,
	hunt_done_round, review_done_round, status, last_heartbeat, created_at`

// Create inserts a single agent row.
func (r *Agents) Create(ctx context.Context, a *game.Agent) error {
	const q = `INSERT INTO agents (` + agentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, q,
		a.ID, a.GameID, a.Name, a.Score, a.FindingsSubmitted, a.FindingsValid,
		a.FindingsFalse, a.FindingsDuplicate, a.DisputesWon, a.DisputesLost,
		a.HuntDoneRound, a.ReviewDoneRound, string(a.Status),
		store.NullTime(a.LastHeartbeat), store.FormatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("repo: create agent %q: %w", a.ID, err)
	}
	return nil
}

// CreateMany generates n agents with unique short names shuffled per game and
// inserts them. The rng may be nil; tests inject a seeded one.
func (r *Agents) CreateMany(ctx context.Context, gameID string, n int, rng *rand.Rand, now time.Time) ([]*game.Agent, error) {
	names, err := game.PickNames(n, rng)
	if err != nil {
		return nil, fmt.Errorf("repo: create %d agents: %w", n, err)
	}
	agents := make([]*game.Agent, 0, n)
	for _, name := range names {
		a := game.NewAgent(gameID, name, now)
		if err := r.Create(ctx, a); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// Update persists the mutable agent fields.
func (r *Agents) Update(ctx context.Context, a *game.Agent) error {
	const q = `UPDATE agents SET score = ?, findings_submitted = ?, findings_valid = ?,
		findings_false = ?, findings_duplicate = ?, disputes_won = ?, disputes_lost = ?,
		hunt_done_round = ?, review_done_round = ?, status = ?, last_heartbeat = ?
		WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q,
		a.Score, a.FindingsSubmitted, a.FindingsValid, a.FindingsFalse,
		a.FindingsDuplicate, a.DisputesWon, a.DisputesLost,
		a.HuntDoneRound, a.ReviewDoneRound, string(a.Status),
		store.NullTime(a.LastHeartbeat), a.ID,
	)
	if err != nil {
		return fmt.Errorf("repo: update agent %q: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("repo: update agent %q: %w", a.ID, game.ErrAgentNotFound)
	}
	return nil
}

// FindByID loads an agent by its full "{gameID}-{name}" ID.
func (r *Agents) FindByID(ctx context.Context, id string) (*game.Agent, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("repo: agent %q: %w", id, game.ErrAgentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo: find agent %q: %w", id, err)
	}
	return a, nil
}

// FindByGameID returns every agent in the game in creation order.
func (r *Agents) FindByGameID(ctx context.Context, gameID string) ([]*game.Agent, error) {
	return r.query(ctx, `SELECT `+agentColumns+` FROM agents WHERE game_id = ? ORDER BY created_at, id`, gameID)
}

// FindActive returns the game's agents still competing.
func (r *Agents) FindActive(ctx context.Context, gameID string) ([]*game.Agent, error) {
	return r.query(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE game_id = ? AND status = ? ORDER BY created_at, id`,
		gameID, string(game.AgentActive))
}

// Scoreboard returns the game's agents ordered by score, then by valid
// findings as the first tiebreak.
func (r *Agents) Scoreboard(ctx context.Context, gameID string) ([]*game.Agent, error) {
	return r.query(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE game_id = ?
		 ORDER BY score DESC, findings_valid DESC, id`, gameID)
}

// PendingHuntAgents returns active agents that have not signalled hunt
// completion for the given round.
func (r *Agents) PendingHuntAgents(ctx context.Context, gameID string, round int) ([]*game.Agent, error) {
	return r.query(ctx,
		`SELECT `+agentColumns+` FROM agents
		 WHERE game_id = ? AND status = ? AND hunt_done_round < ? ORDER BY id`,
		gameID, string(game.AgentActive), round)
}

// PendingReviewAgents returns active agents that have not signalled review
// completion for the given round.
func (r *Agents) PendingReviewAgents(ctx context.Context, gameID string, round int) ([]*game.Agent, error) {
	return r.query(ctx,
		`SELECT `+agentColumns+` FROM agents
		 WHERE game_id = ? AND status = ? AND review_done_round < ? ORDER BY id`,
		gameID, string(game.AgentActive), round)
}

func (r *Agents) query(ctx context.Context, query string, args ...any) ([]*game.Agent, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repo: query agents: %w", err)
	}
	defer rows.Close()

	var out []*game.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan agent: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: iterate agents: %w", err)
	}
	return out, nil
}

func scanAgent(s scanner) (*game.Agent, error) {
	var (
		a             game.Agent
		status        string
		lastHeartbeat sql.NullString
		createdAt     string
	)
	err := s.Scan(&a.ID, &a.GameID, &a.Name, &a.Score, &a.FindingsSubmitted,
		&a.FindingsValid, &a.FindingsFalse, &a.FindingsDuplicate,
		&a.DisputesWon, &a.DisputesLost, &a.HuntDoneRound, &a.ReviewDoneRound,
		&status, &lastHeartbeat, &createdAt)
	if err != nil {
		return nil, err
	}
	a.Status = game.AgentStatus(status)
	if a.LastHeartbeat, err = store.ParseNullTime(lastHeartbeat); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = store.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
