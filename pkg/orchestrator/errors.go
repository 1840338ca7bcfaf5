package orchestrator

import "fmt"

// The orchestrator catches lower-layer failures at its boundary and
// re-wraps them into one of these kinds with a stable message. Cause
// detail is preserved only where it cannot leak resolution internals
// (ImportMapError, EmitError).

// FeatureDisabledError reports that the emit operation was invoked
// without the unstable-APIs flag enabled.
type FeatureDisabledError struct {
	Feature string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("orchestrator: unstable API %q: the unstable APIs flag must be enabled", e.Feature)
}

// ConfigurationError reports an invalid request shape: a bad root
// specifier URL or an illegal import-map combination.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "orchestrator: " + e.Reason
}

// ResolutionError reports that the selected provider could not handle
// a specifier. The underlying cause is deliberately discarded so
// callers cannot depend on resolution internals.
type ResolutionError struct {
	Specifier string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("orchestrator: unable to handle the given specifier: %s", e.Specifier)
}

// ImportMapError reports a fetch or parse failure while loading an
// import map. The cause is preserved.
type ImportMapError struct {
	Specifier string
	Err       error
}

func (e *ImportMapError) Error() string {
	return fmt.Sprintf("orchestrator: unable to load %q import map: %v", e.Specifier, e.Err)
}

func (e *ImportMapError) Unwrap() error { return e.Err }

// AnalysisError reports compiler options the builder rejects outright,
// as opposed to merely ignoring.
type AnalysisError struct {
	Reason string
}

func (e *AnalysisError) Error() string {
	return "orchestrator: invalid compiler options: " + e.Reason
}

// EmitError reports a fatal failure of the emission stage, distinct
// from diagnostics carried by a successful emission. The cause is
// preserved.
type EmitError struct {
	Err error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("orchestrator: emit: %v", e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }
