package engine

import (
	"context"
	"database/sql"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/boneshq/bones/internal/game"
	"github.com/boneshq/bones/internal/repo"
	"github.com/boneshq/bones/internal/score"
	"github.com/boneshq/bones/internal/store"
)

// DBFileName is the database file created under the data directory.
const DBFileName = "bones.db"

// Orchestrator is the public façade over the engine. It owns the store
// lifetime and composes the coordinator, submission service and scorer.
type Orchestrator struct {
	store       *store.Store
	Coordinator *Coordinator
	Submissions *Submissions
	Scorer      *score.Scorer
	now         func() time.Time
	rng         *rand.Rand // agent name shuffling; nil uses the global source
}

// Open creates an Orchestrator backed by a database under dataDir.
func Open(ctx context.Context, dataDir string) (*Orchestrator, error) {
	st, err := store.Open(ctx, filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, err
	}
	return NewOrchestrator(st), nil
}

// NewOrchestrator composes the engine over an already-open store.
func NewOrchestrator(st *store.Store) *Orchestrator {
	scorer := score.NewScorer(st)
	return &Orchestrator{
		store:       st,
		Coordinator: NewCoordinator(st),
		Submissions: NewSubmissions(st, scorer),
		Scorer:      scorer,
		now:         time.Now,
	}
}

// Close releases the store.
func (o *Orchestrator) Close() error {
	return o.store.Close()
}

// Store exposes the underlying store for read-only queries.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// Setup creates a game and its agents in one transaction. Config defaults
// are the caller's responsibility; the game starts in the setup phase.
func (o *Orchestrator) Setup(ctx context.Context, cfg game.Config) (*game.Game, []*game.Agent, error) {
	var (
		g      *game.Game
		agents []*game.Agent
	)
	err := o.store.Tx(ctx, func(tx *sql.Tx) error {
		now := o.now()
		g = game.New(uuid.NewString(), cfg, now)
		if err := repo.NewGames(tx).Create(ctx, g); err != nil {
			return err
		}
		var err error
		agents, err = repo.NewAgents(tx).CreateMany(ctx, g.ID, cfg.NumAgents, o.rng, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return g, agents, nil
}

// Game returns a game by id.
func (o *Orchestrator) Game(ctx context.Context, gameID string) (*game.Game, error) {
	return repo.NewGames(o.store.DB()).FindByID(ctx, gameID)
}

// Games returns all games, newest first.
func (o *Orchestrator) Games(ctx context.Context) ([]*game.Game, error) {
	return repo.NewGames(o.store.DB()).FindAll(ctx)
}

// Agents returns the game's agents in creation order.
func (o *Orchestrator) Agents(ctx context.Context, gameID string) ([]*game.Agent, error) {
	return repo.NewAgents(o.store.DB()).FindByGameID(ctx, gameID)
}

// Scoreboard returns the game's agents ordered by score then valid findings.
func (o *Orchestrator) Scoreboard(ctx context.Context, gameID string) ([]*game.Agent, error) {
	return repo.NewAgents(o.store.DB()).Scoreboard(ctx, gameID)
}

// Findings returns the game's findings in submission order.
func (o *Orchestrator) Findings(ctx context.Context, gameID string) ([]*game.Finding, error) {
	return repo.NewFindings(o.store.DB()).FindByGameID(ctx, gameID)
}

// PendingVerification returns the round's findings awaiting the verifier.
func (o *Orchestrator) PendingVerification(ctx context.Context, gameID string, round int) ([]*game.Finding, error) {
	return repo.NewFindings(o.store.DB()).FindPendingVerificationByRound(ctx, gameID, round)
}

// Disputes returns the game's disputes in filing order.
func (o *Orchestrator) Disputes(ctx context.Context, gameID string) ([]*game.Dispute, error) {
	return repo.NewDisputes(o.store.DB()).FindByGameID(ctx, gameID)
}

// Delete removes a game and everything it owns.
func (o *Orchestrator) Delete(ctx context.Context, gameID string) error {
	return o.store.Tx(ctx, func(tx *sql.Tx) error {
		return repo.NewGames(tx).Delete(ctx, gameID)
	})
}
