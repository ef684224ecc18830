package photomap

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestErrorCodeString(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeInvalidRequest:    "invalid request",
		ErrCodeNetwork:           "server not accessible",
		ErrCodeServer:            "server failed",
		ErrCodeMalformedResponse: "malformed response",
		ErrCodeCanceled:          "operation canceled",
		ErrCodeSuperseded:        "session superseded",
		ErrorCode(0):             "unknown error",
	}

	for code, expected := range tests {
		if got := code.String(); got != expected {
			t.Errorf("ErrorCode(%d).String() = %q, expected %q", code, got, expected)
		}
	}
}

func TestServerErrorMatchesSentinel(t *testing.T) {
	err := NewServerError("SearchFailed", "index unavailable")

	if !errors.Is(err, ErrServer) {
		t.Error("server errors must match ErrServer")
	}

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected a ServerError, got %T", err)
	}
	if serverErr.Code != "SearchFailed" || serverErr.Message != "index unavailable" {
		t.Errorf("unexpected fields: %+v", serverErr)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidRequest, ErrNetwork, ErrServer,
		ErrMalformedResponse, ErrCanceled, ErrSuperseded,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v must not match %v", a, b)
			}
		}
	}
}

func TestWrappedSentinelStillMatches(t *testing.T) {
	err := errors.Wrapf(ErrNetwork, "GET /api/search")
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapping must preserve sentinel identity")
	}
}
