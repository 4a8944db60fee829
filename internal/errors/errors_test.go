package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"not found", NotFoundf("draft %d not found", 7), ErrNotFound, "draft 7 not found"},
		{"validation", Validationf("points limit must be %s", "non-negative"), ErrValidation, "points limit must be non-negative"},
		{"conflict", Conflictf("entry %q already exists", "abc"), ErrConflict, `entry "abc" already exists`},
		{"invalid input", InvalidInputf("clipboard is empty"), ErrInvalidInput, "clipboard is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no underlying error, got %v", tt.err.Err)
			}
		})
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected internal kind, got %s", err.Kind)
	}
	if err.Error() != "internal error: disk full" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("record not found")
	err := Wrap(cause, ErrNotFound, "draft not found")

	if err.Error() != "draft not found: record not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("load draft: %w", NotFoundf("draft 1 not found"))

	if KindOf(wrapped) != ErrNotFound {
		t.Errorf("expected not_found through fmt wrapping, got %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != ErrInternal {
		t.Error("expected plain errors to be internal")
	}
	if !Is(wrapped, ErrNotFound) || Is(wrapped, ErrConflict) {
		t.Error("unexpected Is result")
	}
	if Is(nil, ErrInternal) {
		t.Error("expected nil error to match no kind")
	}
}

func TestKindString(t *testing.T) {
	if ErrValidation.String() != "validation" {
		t.Errorf("unexpected name %q", ErrValidation.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unexpected name %q", Kind(99).String())
	}
}
