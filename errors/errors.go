package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDuration  Phase = "duration"  // time arithmetic
	PhaseTimestamp Phase = "timestamp" // points in time
	PhaseObject    Phase = "object"    // handle lifetime
	PhaseBridge    Phase = "bridge"    // async completion
	PhaseCore      Phase = "core"      // native function table
	PhaseConfig    Phase = "config"    // option and configuration loading
	PhaseLoad      Phase = "load"      // library open/compatibility
)

// Kind categorizes the error
type Kind string

const (
	KindArithmetic   Kind = "arithmetic"
	KindOverflow     Kind = "overflow"
	KindDivideByZero Kind = "divide_by_zero"
	KindInvalidInput Kind = "invalid_input"
	KindInvalidData  Kind = "invalid_data"
	KindAllocation   Kind = "allocation"
	KindClosed       Kind = "closed"
)

// Error is the structured error type used throughout the bindings
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Sentinels for errors.Is checks against the kind only.
var (
	ErrArithmetic   = &Error{Kind: KindArithmetic}
	ErrOverflow     = &Error{Kind: KindOverflow}
	ErrDivideByZero = &Error{Kind: KindDivideByZero}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrInvalidData  = &Error{Kind: KindInvalidData}
	ErrAllocation   = &Error{Kind: KindAllocation}
	ErrClosed       = &Error{Kind: KindClosed}
)

// Convenience constructors for common error patterns

// Arithmetic creates an invalid arithmetic operation error
func Arithmetic(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindArithmetic,
		Op:     op,
		Detail: detail,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, op string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Op:     op,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// DivideByZero creates a division by zero error
func DivideByZero(phase Phase, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDivideByZero,
		Op:     op,
		Detail: "division by zero",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, what string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("%s exhausted (limit %d)", what, limit),
		Value:  limit,
	}
}

// Closed creates an error for use after close
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a library loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
