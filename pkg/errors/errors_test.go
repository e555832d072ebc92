package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("row lock timeout")
	err := Wrap(CodeDependency, cause, "load inventory record")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to unwrap to cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeInsufficientStock, "cannot remove 12, only 5 on hand")
	wrapped := fmt.Errorf("ship transfer: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected As to locate typed error")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !HasCode(wrapped, CodeInsufficientStock) {
		t.Fatal("expected HasCode to match")
	}
	if HasCode(wrapped, CodeInvalidTransition) {
		t.Fatal("expected HasCode to reject other codes")
	}
}

func TestMetadataForEngineCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeInvalidTransition, http.StatusUnprocessableEntity},
		{CodeInsufficientStock, http.StatusConflict},
		{CodeTransferLocked, http.StatusConflict},
		{CodeAuditNotInProgress, http.StatusUnprocessableEntity},
		{CodeConcurrentModification, http.StatusConflict},
		{Code("UNKNOWN_CODE"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("code %s: expected status %d, got %d", tc.code, tc.status, meta.HTTPStatus)
		}
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	err := New(CodeValidation, "validation failed").WithDetails(map[string]string{"quantity": "must be at least 1"})
	details, ok := err.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", details)
	}
}
