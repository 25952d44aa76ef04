package engine

import (
	"time"

	"github.com/boneshq/bones/internal/game"
)

// Outcome is the winner-check decision for a round.
type Outcome string

const (
	OutcomeGameComplete Outcome = "GAME_COMPLETE"
	OutcomeTieBreaker   Outcome = "TIE_BREAKER"
	OutcomeContinue     Outcome = "CONTINUE"
)

// AgentPrompt pairs an agent with the prompt rendered for it.
type AgentPrompt struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	Prompt  string `json:"prompt"`
}

// HuntStart is the result of starting a hunt phase.
type HuntStart struct {
	GameID   string        `json:"game_id"`
	Round    int           `json:"round"`
	Deadline time.Time     `json:"deadline"`
	Prompts  []AgentPrompt `json:"prompts"`
}

// PhaseCheck is a read-only snapshot of a timed phase's progress.
type PhaseCheck struct {
	Phase             game.Phase `json:"phase"`
	Round             int        `json:"round"`
	TimeExpired       bool       `json:"time_expired"`
	RemainingSeconds  int        `json:"remaining_seconds"`
	AllAgentsFinished bool       `json:"all_agents_finished"`
	ReadyForScoring   bool       `json:"ready_for_scoring"`
	Pending           []string   `json:"pending"`
}

// FindingTask is one pending finding with its referee prompt.
type FindingTask struct {
	Finding *game.Finding `json:"finding"`
	Prompt  string        `json:"prompt"`
}

// ScoringStart is the result of starting hunt scoring: the referee work list.
type ScoringStart struct {
	GameID   string        `json:"game_id"`
	Round    int           `json:"round"`
	Findings []FindingTask `json:"findings"`
}

// ReviewStart is the result of starting a review phase.
type ReviewStart struct {
	GameID   string        `json:"game_id"`
	Round    int           `json:"round"`
	Deadline time.Time     `json:"deadline"`
	Prompts  []AgentPrompt `json:"prompts"`
}

// DisputeTask is one pending dispute with its referee prompt.
type DisputeTask struct {
	Dispute *game.Dispute `json:"dispute"`
	Finding *game.Finding `json:"finding"`
	Prompt  string        `json:"prompt"`
}

// DisputeScoring is the result of starting review scoring.
type DisputeScoring struct {
	GameID   string        `json:"game_id"`
	Round    int           `json:"round"`
	Disputes []DisputeTask `json:"disputes"`
}

// ScoreboardEntry is one agent's line on the scoreboard.
type ScoreboardEntry struct {
	AgentID       string `json:"agent_id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	FindingsValid int    `json:"findings_valid"`
}

// WinnerCheck is the outcome of checking for a winner after review scoring.
type WinnerCheck struct {
	Outcome Outcome           `json:"action"`
	Round   int               `json:"round"`
	Winner  string            `json:"winner,omitempty"`
	Reason  string            `json:"reason,omitempty"`
	Scores  []ScoreboardEntry `json:"final_scores"`
}
