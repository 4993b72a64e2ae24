// Package state provides session state management.
package state

// Phase represents the session lifecycle phase.
type Phase int

const (
	PhaseStarting   Phase = iota // Loading favorites, library and listings
	PhaseReady                   // Accepting player operations
	PhaseTerminated              // Session has ended
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseReady:
		return "ready"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
