package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodePrecondition, "object %s is not self-contained", "k1")

	if err.Code != ErrCodePrecondition {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodePrecondition)
	}

	if err.Message != "object k1 is not self-contained" {
		t.Errorf("Message = %v, want %v", err.Message, "object k1 is not self-contained")
	}

	expected := "PRECONDITION: object k1 is not self-contained"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeParse, cause, "load main.fxml")

	if err.Code != ErrCodeParse {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeParse)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeParse, "test"),
			code:     ErrCodeParse,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeParse, "test"),
			code:     ErrCodeInconsistent,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInconsistent, New(ErrCodeParse, "inner"), "outer"),
			code:     ErrCodeInconsistent,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("refresh: %w", New(ErrCodeInconsistent, "shape")),
			code:     ErrCodeInconsistent,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeParse,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeParse,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnresolved, "test"),
			expected: ErrCodeUnresolved,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDumpOf(t *testing.T) {
	text := []byte("<VBox/>")
	inner := New(ErrCodeInconsistent, "shape mismatch").WithDump(text)
	outer := Wrap(ErrCodeInternal, fmt.Errorf("refresh: %w", inner), "edit")

	if got := string(DumpOf(outer)); got != string(text) {
		t.Errorf("DumpOf() = %q, want %q", got, text)
	}
	if got := DumpOf(errors.New("plain")); got != nil {
		t.Errorf("DumpOf(plain) = %q, want nil", got)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeParse, "x"), true},
		{New(ErrCodeInconsistent, "x"), true},
		{New(ErrCodePrecondition, "x"), false},
		{New(ErrCodeUnresolved, "x"), false},
		{errors.New("plain"), true},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
