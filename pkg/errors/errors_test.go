package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataMapping(t *testing.T) {
	cases := []struct {
		code   Code
		status int
		kind   string
	}{
		{CodeValidation, http.StatusBadRequest, "Validation Error"},
		{CodeNotFound, http.StatusNotFound, "Not Found"},
		{CodeConflict, http.StatusConflict, "Conflict"},
		{CodeRateLimit, http.StatusTooManyRequests, "Rate Limit Exceeded"},
		{CodeInternal, http.StatusInternalServerError, "Internal Server Error"},
		{CodeDependency, http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		meta := MetadataFor(tc.code)
		if meta.HTTPStatus != tc.status {
			t.Fatalf("%s: expected status %d got %d", tc.code, tc.status, meta.HTTPStatus)
		}
		if meta.Kind != tc.kind {
			t.Fatalf("%s: expected kind %q got %q", tc.code, tc.kind, meta.Kind)
		}
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "query users")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be findable via errors.Is")
	}
	if err.Error() != "DEPENDENCY_ERROR: query users" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeConflict, "email address already in use")
	wrapped := fmt.Errorf("service: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("expected conflict code got %s", typed.Code())
	}
}

func TestAsNonTyped(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for non-typed error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "ping store")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", dump.Chain)
	}
}
