package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDuration,
				Kind:   KindOverflow,
				Op:     "mul",
				Detail: "product too large",
			},
			contains: []string{"[duration]", "overflow", "in mul", "product too large"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseObject,
				Kind:  KindClosed,
			},
			contains: []string{"[object]", "closed"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidData,
				Detail: "bad file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[config]", "invalid_data", "bad file", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseLoad, KindInvalidData, cause, "open")

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := Arithmetic(PhaseDuration, "add", "+inf + -inf")

	if !err.Is(&Error{Phase: PhaseDuration, Kind: KindArithmetic}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseBridge, Kind: KindArithmetic}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDuration, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, ErrArithmetic) {
		t.Error("errors.Is should match kind-only sentinel")
	}
	if errors.Is(err, ErrDivideByZero) {
		t.Error("errors.Is matched unrelated sentinel")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseBridge, KindAllocation).
		Op("begin").
		Value(42).
		Cause(cause).
		Detail("limit %d reached", 42).
		Build()

	if err.Phase != PhaseBridge {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseBridge)
	}
	if err.Kind != KindAllocation {
		t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
	}
	if err.Op != "begin" {
		t.Errorf("Op = %q, want begin", err.Op)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "limit 42 reached" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"Overflow", Overflow(PhaseDuration, "from_seconds", int64(1<<62), "int64 nanoseconds"), KindOverflow},
		{"DivideByZero", DivideByZero(PhaseDuration, "div"), KindDivideByZero},
		{"InvalidInput", InvalidInput(PhaseDuration, "negative timeout"), KindInvalidInput},
		{"InvalidData", InvalidData(PhaseConfig, "not json"), KindInvalidData},
		{"AllocationFailed", AllocationFailed(PhaseBridge, "token slots", 8), KindAllocation},
		{"Closed", Closed(PhaseObject, "table"), KindClosed},
		{"Load", Load("incompatible", nil), KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	if err := AllocationFailed(PhaseBridge, "token slots", 1024); !strings.Contains(err.Detail, "1024") {
		t.Errorf("Detail = %v, should contain limit", err.Detail)
	}
}
