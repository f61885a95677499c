// Package workflow drives a build run through its fixed phase sequence,
// tolerating individual task failures inside a phase and reporting
// warning-versus-fatal outcomes through callbacks and the final report.
package workflow

// State identifies one phase of the build lifecycle
type State string

const (
	StateInitialized      State = "INITIALIZED"
	StatePlanning         State = "PLANNING"
	StateEnvironmentSetup State = "ENVIRONMENT_SETUP"
	StateCodeGeneration   State = "CODE_GENERATION"
	StateTesting          State = "TESTING"
	StateGitOperations    State = "GIT_OPERATIONS"
	StateCompleted        State = "COMPLETED"
	StateFailed           State = "FAILED"
	StatePaused           State = "PAUSED"
)

// phaseSequence is the forward path of a run. FAILED and PAUSED are side
// states reachable from any working phase.
var phaseSequence = []State{
	StateInitialized,
	StatePlanning,
	StateEnvironmentSetup,
	StateCodeGeneration,
	StateTesting,
	StateGitOperations,
	StateCompleted,
}

// IsTerminal reports whether no further phase can follow
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Next returns the phase that follows s on the forward path, or FAILED when
// s has no successor.
func (s State) Next() State {
	for i, state := range phaseSequence {
		if state == s && i+1 < len(phaseSequence) {
			return phaseSequence[i+1]
		}
	}
	return StateFailed
}

// CanTransition reports whether moving from s to target is allowed
func (s State) CanTransition(target State) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StateFailed {
		return true
	}
	if target == StatePaused {
		return s != StatePaused
	}
	if s == StatePaused {
		// A paused run resumes where it stopped.
		return target == StateEnvironmentSetup || target == StateCodeGeneration ||
			target == StateTesting || target == StateGitOperations
	}
	return s.Next() == target
}
