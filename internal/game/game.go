// Package game holds the tournament entities: Game, Agent, Finding and
// Dispute. Entities are pure state plus invariant-checking mutators; they
// never touch the store.
package game

import "time"

// Scoring constants. Fixed for every game.
const (
	PointsValidFinding = 1
	PointsFalseFlag    = -2
	PointsDuplicate    = -3
	PointsDisputeWon   = 2
	PointsDisputeLost  = -1
)

// DefaultMaxRounds applies when setup does not specify a round cap.
const DefaultMaxRounds = 3

// Config is the immutable game configuration fixed at setup.
type Config struct {
	ProjectURL     string
	Category       Category
	Focus          string // optional user focus prompt appended to hunt prompts
	TargetScore    int
	HuntDuration   time.Duration
	ReviewDuration time.Duration
	NumAgents      int
	MaxRounds      int // 0 = unlimited
}

// Game is the aggregate root. It owns its agents, findings and disputes by
// game ID and drives the round lifecycle through the phase machine.
type Game struct {
	ID          string
	Config      Config
	Phase       Phase
	Round       int
	Deadline    *time.Time // set only while Phase.Timed()
	WinnerID    string     // set only when Phase == PhaseComplete
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New creates a fresh game in the setup phase.
func New(id string, cfg Config, now time.Time) *Game {
	return &Game{
		ID:        id,
		Config:    cfg,
		Phase:     PhaseSetup,
		Round:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StartHunt begins the next round. Legal from setup (first round) and from
// review_scoring (subsequent rounds). Increments the round counter and sets
// the hunt deadline.
func (g *Game) StartHunt(now time.Time) error {
	if g.Phase != PhaseSetup && g.Phase != PhaseReviewScoring {
		return &PhaseError{Op: "start hunt", Current: g.Phase, Required: []Phase{PhaseSetup, PhaseReviewScoring}}
	}
	g.Round++
	deadline := now.Add(g.Config.HuntDuration)
	g.Deadline = &deadline
	g.Phase = PhaseHunt
	g.UpdatedAt = now
	return nil
}

// StartHuntScoring moves from hunt to hunt_scoring and clears the deadline.
// It does not require all agents to be done; a timeout counts as completion.
func (g *Game) StartHuntScoring(now time.Time) error {
	if g.Phase != PhaseHunt {
		return &PhaseError{Op: "start hunt scoring", Current: g.Phase, Required: []Phase{PhaseHunt}}
	}
	g.Deadline = nil
	g.Phase = PhaseHuntScoring
	g.UpdatedAt = now
	return nil
}

// StartReview moves from hunt_scoring to review and sets the review deadline.
func (g *Game) StartReview(now time.Time) error {
	if g.Phase != PhaseHuntScoring {
		return &PhaseError{Op: "start review", Current: g.Phase, Required: []Phase{PhaseHuntScoring}}
	}
	deadline := now.Add(g.Config.ReviewDuration)
	g.Deadline = &deadline
	g.Phase = PhaseReview
	g.UpdatedAt = now
	return nil
}

// StartReviewScoring moves from review to review_scoring and clears the deadline.
func (g *Game) StartReviewScoring(now time.Time) error {
	if g.Phase != PhaseReview {
		return &PhaseError{Op: "start review scoring", Current: g.Phase, Required: []Phase{PhaseReview}}
	}
	g.Deadline = nil
	g.Phase = PhaseReviewScoring
	g.UpdatedAt = now
	return nil
}

// Complete marks the game finished with the given winner. Legal only from
// review_scoring; the phase machine has no other path to the terminal state.
func (g *Game) Complete(winnerID string, now time.Time) error {
	if g.Phase != PhaseReviewScoring {
		return &PhaseError{Op: "complete game", Current: g.Phase, Required: []Phase{PhaseReviewScoring}}
	}
	g.Phase = PhaseComplete
	g.WinnerID = winnerID
	g.CompletedAt = &now
	g.UpdatedAt = now
	return nil
}

// Expired reports whether the phase deadline has passed. Phases without a
// deadline never expire.
func (g *Game) Expired(now time.Time) bool {
	return g.Deadline != nil && now.After(*g.Deadline)
}

// Remaining returns the time left before the phase deadline, clamped at zero.
func (g *Game) Remaining(now time.Time) time.Duration {
	if g.Deadline == nil {
		return 0
	}
	d := g.Deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// AtRoundCap reports whether the configured round cap has been reached.
// MaxRounds of zero means unlimited rounds.
func (g *Game) AtRoundCap() bool {
	return g.Config.MaxRounds > 0 && g.Round >= g.Config.MaxRounds
}
