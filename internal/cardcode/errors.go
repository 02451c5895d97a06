// Package cardcode implements the Cactus-Kev packed card encoding and the
// precomputed rank lookup tables used to score Texas Hold'em hands in O(1).
package cardcode

import "fmt"

// Kind identifies the category of a failure raised by the equity engine.
type Kind int

const (
	// InvalidInput covers malformed requests: duplicate cards, out-of-range
	// fields, an empty hero range. Detected pre-flight, before any
	// telemetry region is created.
	InvalidInput Kind = iota
	// SimulationAborted means the cooperative cancel signal was observed
	// mid-run. Partial results remain valid.
	SimulationAborted
	// TelemetryUnavailable means the shared-memory region could not be
	// created. Not fatal — the simulation proceeds without publishing.
	TelemetryUnavailable
	// InternalError covers invariant violations: a lookup miss, deck
	// exhaustion under otherwise legal inputs.
	InternalError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case SimulationAborted:
		return "SimulationAborted"
	case TelemetryUnavailable:
		return "TelemetryUnavailable"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// EngineError wraps an underlying error with the taxonomy kind from §7 of
// the engine design: callers switch on Kind without parsing messages.
type EngineError struct {
	Kind Kind
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewError wraps err with the given Kind.
func NewError(kind Kind, format string, args ...any) error {
	return &EngineError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err (or something it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var ee *EngineError
	for err != nil {
		if e, ok := err.(*EngineError); ok {
			ee = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ee != nil && ee.Kind == kind
}
