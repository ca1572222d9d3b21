package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Run("ClassifiedErrors", func(t *testing.T) {
		cases := []struct {
			err  error
			want Kind
		}{
			{NotFound("student not found: %s", "a@b.c"), KindNotFound},
			{Forbidden("not your course"), KindForbidden},
			{Validation("email required"), KindValidation},
			{InvalidState("no semester assigned"), KindInvalidState},
			{Internal(errors.New("boom"), "store failed"), KindInternal},
		}
		for _, c := range cases {
			if got := KindOf(c.err); got != c.want {
				t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.want)
			}
		}
	})

	t.Run("UnclassifiedDefaultsToInternal", func(t *testing.T) {
		if got := KindOf(errors.New("plain")); got != KindInternal {
			t.Errorf("Expected KindInternal, got %v", got)
		}
	})

	t.Run("SurvivesWrapping", func(t *testing.T) {
		inner := NotFound("course not found: %s", "CS101")
		wrapped := fmt.Errorf("listing records: %w", inner)
		if got := KindOf(wrapped); got != KindNotFound {
			t.Errorf("Expected KindNotFound through the chain, got %v", got)
		}
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, cause, "failed to query store")

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if MessageOf(err) != "failed to query store" {
		t.Errorf("Unexpected message: %q", MessageOf(err))
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("missing")) {
		t.Error("Expected IsNotFound true for NotFound error")
	}
	if IsNotFound(Forbidden("nope")) {
		t.Error("Expected IsNotFound false for Forbidden error")
	}
	if IsNotFound(nil) {
		t.Error("Expected IsNotFound false for nil")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(Validation("bad input")); got != "bad input" {
		t.Errorf("Expected caller message, got %q", got)
	}
	if got := MessageOf(errors.New("raw failure")); got != "raw failure" {
		t.Errorf("Expected raw text for unclassified errors, got %q", got)
	}
	if got := MessageOf(nil); got != "" {
		t.Errorf("Expected empty string for nil, got %q", got)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNotFound:     "not_found",
		KindForbidden:    "forbidden",
		KindValidation:   "validation",
		KindInvalidState: "invalid_state",
		KindInternal:     "internal",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}
