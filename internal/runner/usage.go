package runner

import (
	"sync"

	"github.com/boneshq/bones/internal/claude"
)

// Usage accumulates cost and invocation totals across every agent call in a
// game run. Safe for concurrent use by parallel phase workers.
type Usage struct {
	mu          sync.Mutex
	invocations int
	aborted     int
	costUSD     float64
	durationMs  int64
	turns       int
}

// UsageSnapshot is an immutable copy for events and JSON output.
type UsageSnapshot struct {
	Invocations int     `json:"invocations"`
	Aborted     int     `json:"aborted"`
	CostUSD     float64 `json:"cost_usd"`
	DurationMs  int64   `json:"duration_ms"`
	Turns       int     `json:"turns"`
}

// Record adds one invocation's usage to the totals.
func (u *Usage) Record(r claude.Result) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.invocations++
	if r.Aborted {
		u.aborted++
	}
	u.costUSD += r.CostUSD
	u.durationMs += r.DurationMs
	u.turns += r.NumTurns
}

// Snapshot returns a copy of the current totals.
func (u *Usage) Snapshot() UsageSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageSnapshot{
		Invocations: u.invocations,
		Aborted:     u.aborted,
		CostUSD:     u.costUSD,
		DurationMs:  u.durationMs,
		Turns:       u.turns,
	}
}
