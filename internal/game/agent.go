package game

import "time"

// AgentStatus tracks whether an agent is still competing.
type AgentStatus string

const (
	AgentActive     AgentStatus = "active"
	AgentEliminated AgentStatus = "eliminated"
	AgentWinner     AgentStatus = "winner"
)

// Agent is a competing reviewer. Its ID is "{gameID}-{name}" where name is
// drawn from the shared pool, shuffled per game.
type Agent struct {
	ID                string
	GameID            string
	Name              string
	Score             int
	FindingsSubmitted int
	FindingsValid     int
	FindingsFalse     int
	FindingsDuplicate int
	DisputesWon       int
	DisputesLost      int
	HuntDoneRound     int // highest round for which the agent signalled hunt completion
	ReviewDoneRound   int
	Status            AgentStatus
	LastHeartbeat     *time.Time
	CreatedAt         time.Time
}

// NewAgent creates an active agent for the given game.
func NewAgent(gameID, name string, now time.Time) *Agent {
	return &Agent{
		ID:        gameID + "-" + name,
		GameID:    gameID,
		Name:      name,
		Status:    AgentActive,
		CreatedAt: now,
	}
}

// HasFinishedHunt reports whether the agent signalled hunt completion for round.
func (a *Agent) HasFinishedHunt(round int) bool {
	return a.HuntDoneRound >= round
}

// HasFinishedReview reports whether the agent signalled review completion for round.
func (a *Agent) HasFinishedReview(round int) bool {
	return a.ReviewDoneRound >= round
}

// MarkHuntDone records hunt completion for the given round.
func (a *Agent) MarkHuntDone(round int) {
	if round > a.HuntDoneRound {
		a.HuntDoneRound = round
	}
}

// MarkReviewDone records review completion for the given round.
func (a *Agent) MarkReviewDone(round int) {
	if round > a.ReviewDoneRound {
		a.ReviewDoneRound = round
	}
}

// AddPoints adjusts the agent's score by n, which may be negative.
func (a *Agent) AddPoints(n int) {
	a.Score += n
}

// RevertValidToFalse converts one previously-valid finding stat into a false
// flag. It must be called only after the owning finding itself transitioned;
// calling it with no valid findings on record is a programmer error.
func (a *Agent) RevertValidToFalse() error {
	if a.FindingsValid == 0 {
		return ErrInvalidState
	}
	a.FindingsValid--
	a.FindingsFalse++
	return nil
}

// Heartbeat records agent liveness.
func (a *Agent) Heartbeat(now time.Time) {
	a.LastHeartbeat = &now
}
