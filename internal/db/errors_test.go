package db

import (
	"context"
	"errors"
	"testing"
)

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpGet, Err: context.DeadlineExceeded}

	if err.Error() != "GET: context deadline exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to see the wrapped error")
	}
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpGet {
		t.Errorf("expected errors.As to yield op GET, got %+v", dbErr)
	}
}
