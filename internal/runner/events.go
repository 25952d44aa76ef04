package runner

import "github.com/boneshq/bones/internal/engine"

// EventType enumerates the progress events a game run emits.
type EventType string

const (
	EventGameCreated         EventType = "game_created"
	EventRoundStart          EventType = "round_start"
	EventHuntStart           EventType = "hunt_start"
	EventHuntAgentDone       EventType = "hunt_agent_done"
	EventHuntEnd             EventType = "hunt_end"
	EventScoringStart        EventType = "scoring_start"
	EventFindingValidated    EventType = "finding_validated"
	EventScoringEnd          EventType = "scoring_end"
	EventVerificationStart   EventType = "verification_start"
	EventFindingVerified     EventType = "finding_verified"
	EventVerificationEnd     EventType = "verification_end"
	EventReviewStart         EventType = "review_start"
	EventReviewAgentDone     EventType = "review_agent_done"
	EventReviewEnd           EventType = "review_end"
	EventDisputeScoringStart EventType = "dispute_scoring_start"
	EventDisputeResolved     EventType = "dispute_resolved"
	EventDisputeScoringEnd   EventType = "dispute_scoring_end"
	EventRoundComplete       EventType = "round_complete"
	EventGameComplete        EventType = "game_complete"
)

// Event is one entry in the progress stream. Each variant carries only the
// fields a progress view needs; zero values mean not applicable.
type Event struct {
	Type      EventType                `json:"type"`
	GameID    string                   `json:"game_id"`
	Round     int                      `json:"round,omitempty"`
	AgentID   string                   `json:"agent_id,omitempty"`
	FindingID int64                    `json:"finding_id,omitempty"`
	DisputeID int64                    `json:"dispute_id,omitempty"`
	Verdict   string                   `json:"verdict,omitempty"`
	Outcome   engine.Outcome           `json:"outcome,omitempty"`
	Winner    string                   `json:"winner,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
	Aborted   bool                     `json:"aborted,omitempty"`
	Err       string                   `json:"error,omitempty"`
	Scores    []engine.ScoreboardEntry `json:"scores,omitempty"`
	Usage     *UsageSnapshot           `json:"usage,omitempty"`
}

// EventFunc receives progress events. Implementations must not block; the
// runner calls it inline between engine steps.
type EventFunc func(Event)
