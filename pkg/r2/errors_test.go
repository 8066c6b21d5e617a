package r2

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNewUnclassifiedObjectError(t *testing.T) {
	err := NewUnclassifiedObjectError("stray/object")

	if err.Code != ErrUnclassifiedObject {
		t.Errorf("Code = %v, want %v", err.Code, ErrUnclassifiedObject)
	}
	if err.Key != "stray/object" {
		t.Errorf("Key = %q, want %q", err.Key, "stray/object")
	}
	if got := err.Error(); got != "object matches no known repository namespace: stray/object" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewStoreUnavailableError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreUnavailableError("listing failed after 3 retries", cause)

	if err.Code != ErrStoreUnavailable {
		t.Errorf("Code = %v, want %v", err.Code, ErrStoreUnavailable)
	}
	if got := err.Error(); got != "listing failed after 3 retries: connection reset" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the underlying cause")
	}
}

func TestNewAccessDeniedError(t *testing.T) {
	err := NewAccessDeniedError("access denied to bucket", nil)

	if err.Code != ErrAccessDenied {
		t.Errorf("Code = %v, want %v", err.Code, ErrAccessDenied)
	}
	if got := err.Error(); got != "access denied to bucket" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewCancelledError(t *testing.T) {
	err := NewCancelledError(context.Canceled)

	if err.Code != ErrCancelled {
		t.Errorf("Code = %v, want %v", err.Code, ErrCancelled)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected errors.Is to find context.Canceled")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
		wantOK   bool
	}{
		{"direct", NewAccessDeniedError("denied", nil), ErrAccessDenied, true},
		{"wrapped", fmt.Errorf("compute failed: %w", NewCancelledError(context.Canceled)), ErrCancelled, true},
		{"plain error", errors.New("boom"), 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeOf(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("CodeOf ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && code != tt.wantCode {
				t.Errorf("CodeOf code = %v, want %v", code, tt.wantCode)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewUnknownRepositoryLayoutError("no config object", nil))

	if !IsCode(err, ErrUnknownRepositoryLayout) {
		t.Error("expected IsCode to match ErrUnknownRepositoryLayout")
	}
	if IsCode(err, ErrAccessDenied) {
		t.Error("expected IsCode not to match ErrAccessDenied")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(NewCancelledError(nil)) {
		t.Error("expected IsCancelled to be true")
	}
	if IsCancelled(NewAccessDeniedError("denied", nil)) {
		t.Error("expected IsCancelled to be false")
	}
	if IsCancelled(context.Canceled) {
		t.Error("bare context.Canceled is not a UsageError")
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrStoreUnavailable, "store unavailable"},
		{ErrAccessDenied, "access denied"},
		{ErrUnknownRepositoryLayout, "unknown repository layout"},
		{ErrUnclassifiedObject, "unclassified object"},
		{ErrCancelled, "cancelled"},
		{ErrorCode(99), "unknown error"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
