package game

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Repositories and services wrap
// these with context; callers test them with errors.Is.
var (
	// ErrInvalidState indicates an entity mutator was called from a state
	// that does not permit the transition.
	ErrInvalidState = errors.New("invalid entity state for transition")
	// ErrInvalidPhase indicates an operation was attempted in the wrong game phase.
	ErrInvalidPhase = errors.New("invalid game phase")
	// ErrGameNotFound indicates a game lookup by ID failed.
	ErrGameNotFound = errors.New("game not found")
	// ErrAgentNotFound indicates an agent lookup by ID failed.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrFindingNotFound indicates a finding lookup by ID failed.
	ErrFindingNotFound = errors.New("finding not found")
	// ErrDisputeNotFound indicates a dispute lookup by ID failed.
	ErrDisputeNotFound = errors.New("dispute not found")
	// ErrOwnFinding indicates an agent tried to dispute its own finding.
	ErrOwnFinding = errors.New("agents cannot dispute their own findings")
	// ErrAlreadyDisputed indicates the agent already filed a dispute against this finding.
	ErrAlreadyDisputed = errors.New("agent has already disputed this finding")
	// ErrAgentDone indicates the agent already marked this round's phase complete.
	ErrAgentDone = errors.New("agent has already finished this phase")
	// ErrSnippetRequired indicates a doc_drift finding was submitted without evidence.
	ErrSnippetRequired = errors.New("doc_drift findings require a code snippet in DOC/CODE/CONTRADICTION format")
	// ErrTooManyAgents indicates the requested agent count exceeds the name pool.
	ErrTooManyAgents = errors.New("requested agent count exceeds name pool")
	// ErrLineRange indicates line_end is smaller than line_start.
	ErrLineRange = errors.New("line_end must not precede line_start")
)

// PhaseError records a phase-machine violation with the phase that was
// observed and the phase the operation required.
type PhaseError struct {
	Op       string
	Current  Phase
	Required []Phase
}

// Error returns a human-readable string naming both phases.
func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: game is in phase %q, requires %v", e.Op, e.Current, e.Required)
}

// Unwrap returns ErrInvalidPhase for use with errors.Is.
func (e *PhaseError) Unwrap() error {
	return ErrInvalidPhase
}
