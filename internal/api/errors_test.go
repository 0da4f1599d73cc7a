package api

import (
	"errors"
	"testing"
)

func TestNormalizeErrorPriority(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field wins", 400, `{"error":"email already registered","message":"bad request"}`, "email already registered"},
		{"message field second", 400, `{"message":"invalid payload"}`, "invalid payload"},
		{"status text third", 500, `not json at all`, "Internal Server Error"},
		{"empty body", 404, ``, "Not Found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := normalizeError(tc.status, []byte(tc.body))
			if apiErr.Message != tc.want {
				t.Errorf("expected %q, got %q", tc.want, apiErr.Message)
			}
			if apiErr.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, apiErr.Status)
			}
		})
	}
}

func TestNormalizeTransportError(t *testing.T) {
	apiErr := normalizeTransportError(errors.New("dial tcp: connection refused"))
	if apiErr.Status != 0 {
		t.Errorf("transport failures carry status 0, got %d", apiErr.Status)
	}
	if apiErr.Message != "dial tcp: connection refused" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}

	apiErr = normalizeTransportError(nil)
	if apiErr.Message != fallbackMessage {
		t.Errorf("expected generic fallback, got %q", apiErr.Message)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(nil); got != "" {
		t.Errorf("nil error should yield empty message, got %q", got)
	}
	if got := ErrorMessage(&APIError{Status: 400, Message: "boom"}); got != "boom" {
		t.Errorf("expected boom, got %q", got)
	}
	if got := ErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("expected plain, got %q", got)
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(&APIError{Status: 401, Message: "expired"}) {
		t.Error("401 APIError should be unauthorized")
	}
	if IsUnauthorized(&APIError{Status: 403, Message: "forbidden"}) {
		t.Error("403 is not the rejected-credential case")
	}
	if IsUnauthorized(errors.New("nope")) {
		t.Error("plain errors are never unauthorized")
	}
}
