package runner

import "fmt"

const (
	PhaseSettingsLoad   = "settings load"
	PhaseWorkspaceFetch = "workspace fetch"
	PhaseVariableFetch  = "variable fetch"
	PhaseFiltering      = "filtering"
	PhaseOutputWrite    = "output write"
)

// PhaseError wraps the error that stopped a run with the phase it happened in.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
