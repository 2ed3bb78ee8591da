package optics

import (
	"errors"
	"fmt"
)

// Domain errors for model assembly and evaluation.
var (
	// ErrPortResolution indicates an attachment port could not be uniquely located.
	ErrPortResolution = errors.New("optics: port resolution failed")

	// ErrConfiguration indicates a missing or out-of-range configuration field.
	ErrConfiguration = errors.New("optics: invalid configuration")

	// ErrSolver indicates the field solver failed to evaluate a model.
	ErrSolver = errors.New("optics: solver failure")

	// ErrDuplicateName indicates a component name is already taken in the model.
	ErrDuplicateName = errors.New("optics: duplicate component name")

	// ErrPortInUse indicates a port is already connected by a space.
	ErrPortInUse = errors.New("optics: port already connected")

	// ErrUnknownComponent indicates a lookup by name found nothing.
	ErrUnknownComponent = errors.New("optics: unknown component")

	// ErrUnknownParam indicates a parameter name a component does not expose.
	ErrUnknownParam = errors.New("optics: unknown parameter")
)

// PortResolutionError reports a failed look-up of a port by full name.
type PortResolutionError struct {
	Port    string
	Matches int
}

func (e *PortResolutionError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("optics: no open port named %q", e.Port)
	}
	return fmt.Sprintf("optics: port %q is ambiguous (%d matches)", e.Port, e.Matches)
}

func (e *PortResolutionError) Unwrap() error {
	return ErrPortResolution
}

// ConfigurationError names the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("optics: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Configf builds a ConfigurationError with a formatted reason.
func Configf(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SolverError wraps a solver failure with the sweep sample it occurred at.
// Sample is -1 for a standalone solve.
type SolverError struct {
	Sample  int
	Wrapped error
}

func (e *SolverError) Error() string {
	if e.Sample < 0 {
		return fmt.Sprintf("optics: solve failed: %v", e.Wrapped)
	}
	return fmt.Sprintf("optics: solve failed at sample %d: %v", e.Sample, e.Wrapped)
}

func (e *SolverError) Unwrap() []error {
	return []error{ErrSolver, e.Wrapped}
}
