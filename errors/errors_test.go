package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestBootErrorError(t *testing.T) {
	e := New(ErrCodeStartupFailure, "user manager failed")
	want := "STARTUP_FAILURE: user manager failed"
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}

	cause := stderrors.New("connection refused")
	e = e.WithCause(cause)
	if e.Error() != want+" (cause: connection refused)" {
		t.Errorf("unexpected message with cause: %q", e.Error())
	}
	if !stderrors.Is(e, cause) {
		t.Error("expected errors.Is to match cause")
	}
}

func TestFatalCodes(t *testing.T) {
	if !IsFatalCode(ErrCodeStartupFailure) {
		t.Error("startup failure must be fatal")
	}
	for _, code := range []ErrorCode{ErrCodeConfigWarning, ErrCodeResourceError, ErrCodeShutdownFailure} {
		if IsFatalCode(code) {
			t.Errorf("%s must not be fatal", code)
		}
	}
}

func TestAsBootError(t *testing.T) {
	inner := New(ErrCodeStartupFailure, "boom")
	wrapped := fmt.Errorf("startup: %w", inner)

	if got := AsBootError(wrapped); got != inner {
		t.Errorf("expected to unwrap inner error, got %v", got)
	}
	if !IsStartupFailure(wrapped) {
		t.Error("expected IsStartupFailure on wrapped error")
	}
	if AsBootError(stderrors.New("plain")) != nil {
		t.Error("expected nil for plain error")
	}
}
