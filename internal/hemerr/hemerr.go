// Package hemerr implements the typed error-kind hierarchy named in the
// error-handling design: InputValidation, DomainIncompatibility,
// Insufficiency, Numerical, and OutOfRangeOperation. The teacher tags
// failures by which constructor produced them (store.go, ingest parsers)
// rather than by a generic errors.New; this package makes that tagging
// explicit and queryable via errors.As, instead of string-matching.
package hemerr

import "fmt"

// Kind classifies an error per the error-handling design.
type Kind int

const (
	// InputValidation covers schema mismatches, unknown type tags,
	// control-graph cycles, duplicate service names, missing required
	// fields, and out-of-range input values.
	InputValidation Kind = iota
	// DomainIncompatibility covers combinations the model cannot
	// represent (exhaust-air HP with intermittent MEV, warm-air service
	// on a non-air sink, warm-air service on a hybrid HP).
	DomainIncompatibility
	// Insufficiency is raised when demand exceeds a source's capacity.
	// It is never fatal: callers absorb it into the energy ledger.
	Insufficiency
	// Numerical covers unguarded division by zero and similar faults.
	Numerical
	// OutOfRangeOperation covers operation outside a component's valid
	// envelope, e.g. a heat pump below its test-data flow-rate minimum.
	OutOfRangeOperation
)

func (k Kind) String() string {
	switch k {
	case InputValidation:
		return "InputValidation"
	case DomainIncompatibility:
		return "DomainIncompatibility"
	case Insufficiency:
		return "Insufficiency"
	case Numerical:
		return "Numerical"
	case OutOfRangeOperation:
		return "OutOfRangeOperation"
	default:
		return "Unknown"
	}
}

// Error is a kind-tagged error. Fatal reports whether the policy in §7
// requires the run to abort: InputValidation and DomainIncompatibility
// abort before the loop starts; Numerical and OutOfRangeOperation abort
// the run; Insufficiency never aborts.
type Error struct {
	Kind    Kind
	Path    string // dotted config path or component name, when applicable
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Path != "" {
		if e.Wrapped != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Path, e.Message, e.Wrapped)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Path, e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Fatal reports whether this error's kind requires aborting the run.
func (e *Error) Fatal() bool {
	return e.Kind != Insufficiency
}

func newf(kind Kind, path, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// InputValidationf builds an InputValidation error against a config path.
func InputValidationf(path, format string, args ...interface{}) *Error {
	return newf(InputValidation, path, format, args...)
}

// DomainIncompatibilityf builds a DomainIncompatibility error.
func DomainIncompatibilityf(path, format string, args ...interface{}) *Error {
	return newf(DomainIncompatibility, path, format, args...)
}

// Insufficiencyf builds a non-fatal Insufficiency error, to be folded into
// an energy supply's unmet-demand accumulator rather than propagated.
func Insufficiencyf(path, format string, args ...interface{}) *Error {
	return newf(Insufficiency, path, format, args...)
}

// Numericalf builds a fatal Numerical error.
func Numericalf(path, format string, args ...interface{}) *Error {
	return newf(Numerical, path, format, args...)
}

// OutOfRangef builds a fatal OutOfRangeOperation error.
func OutOfRangef(path, format string, args ...interface{}) *Error {
	return newf(OutOfRangeOperation, path, format, args...)
}

// Wrap attaches an underlying error, e.g. a JSON decode failure found
// while validating input.
func Wrap(kind Kind, path string, wrapped error) *Error {
	return &Error{Kind: kind, Path: path, Message: wrapped.Error(), Wrapped: wrapped}
}
