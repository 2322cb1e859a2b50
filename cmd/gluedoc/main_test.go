package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gerr "github.com/matzehuels/gluedoc/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"canceled", fmt.Errorf("watch: %w", context.Canceled), 130},
		{"unresolved", gerr.New(gerr.ErrCodeUnresolved, "1 unresolved reference"), 2},
		{"precondition", gerr.New(gerr.ErrCodePrecondition, "object %q is not self-contained", "row"), 2},
		{"parse", gerr.Wrap(gerr.ErrCodeParse, errors.New("unexpected EOF"), "load form.fxml"), 1},
		{"plain", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
