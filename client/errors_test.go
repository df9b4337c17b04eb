package client

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kbukum/tweetkit/resilience"
)

var errTest = errors.New("test error")

func TestClassify_Success(t *testing.T) {
	for _, status := range []int{200, 201, 204} {
		if err := Classify(status, "http://x", nil, nil); err != nil {
			t.Errorf("Classify(%d) = %v, want nil", status, err)
		}
	}
}

func TestClassify_RateLimitStatus(t *testing.T) {
	reset := time.Now().Add(30 * time.Second).Unix()
	headers := map[string]string{
		resilience.HeaderLimitReset: strconv.FormatInt(reset, 10),
	}

	for _, status := range []int{429, 420} {
		err := Classify(status, "http://x", headers, nil)
		if err == nil {
			t.Fatalf("Classify(%d) = nil", status)
		}
		if err.Code != ErrCodeRateLimit {
			t.Errorf("Code = %v, want rate limit", err.Code)
		}
		if !err.Retryable {
			t.Error("rate limit errors must be retryable")
		}
		if err.ResetAt.Unix() != reset {
			t.Errorf("ResetAt = %v, want unix %d", err.ResetAt, reset)
		}
		if !IsRateLimit(err) {
			t.Error("IsRateLimit() = false")
		}
	}
}

func TestClassify_RateLimitAPICode(t *testing.T) {
	body := []byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)

	err := Classify(403, "http://x", nil, body)
	if err == nil {
		t.Fatal("Classify() = nil")
	}
	if err.Code != ErrCodeRateLimit {
		t.Errorf("Code = %v, want rate limit for API code 88", err.Code)
	}
	if err.APICode != 88 {
		t.Errorf("APICode = %d, want 88", err.APICode)
	}
	if err.Message != "Rate limit exceeded" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestClassify_ClientAndServer(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{400, ErrCodeClient, false},
		{401, ErrCodeClient, false},
		{404, ErrCodeClient, false},
		{500, ErrCodeServer, false},
		{503, ErrCodeServer, false},
	}
	for _, tt := range tests {
		err := Classify(tt.status, "http://x", nil, nil)
		if err == nil {
			t.Fatalf("Classify(%d) = nil", tt.status)
		}
		if err.Code != tt.code {
			t.Errorf("Classify(%d).Code = %v, want %v", tt.status, err.Code, tt.code)
		}
		if err.Retryable != tt.retryable {
			t.Errorf("Classify(%d).Retryable = %v, want %v", tt.status, err.Retryable, tt.retryable)
		}
	}
}

func TestClassify_ErrorPayloadVariants(t *testing.T) {
	err := Classify(404, "http://x", nil, []byte(`{"error":"Not found"}`))
	if err.Message != "Not found" {
		t.Errorf("Message = %q, want payload error string", err.Message)
	}

	err = Classify(500, "http://x", nil, []byte("not json at all"))
	if err.Message != "HTTP 500" {
		t.Errorf("Message = %q, want fallback", err.Message)
	}
	if err.Body == nil {
		t.Error("raw body must be kept even when undecodable")
	}
}

func TestError_RetryDelay(t *testing.T) {
	e := &Error{Code: ErrCodeRateLimit, ResetAt: time.Now().Add(5 * time.Second)}

	d := e.RetryDelay()
	if d < 5*time.Second || d > 7*time.Second {
		t.Errorf("RetryDelay() = %v, want reset + margin", d)
	}

	// an expired window still waits the margin
	e.ResetAt = time.Now().Add(-time.Minute)
	if d := e.RetryDelay(); d != resetMargin {
		t.Errorf("RetryDelay() after reset = %v, want %v", d, resetMargin)
	}

	// non rate-limit errors carry no hint
	if d := (&Error{Code: ErrCodeServer}).RetryDelay(); d != 0 {
		t.Errorf("RetryDelay() = %v, want 0", d)
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsNotFound(Classify(404, "http://x", nil, nil)) {
		t.Error("IsNotFound(404) = false")
	}
	if !IsUnauthorized(Classify(401, "http://x", nil, nil)) {
		t.Error("IsUnauthorized(401) = false")
	}
	if !IsForbidden(Classify(403, "http://x", nil, nil)) {
		t.Error("IsForbidden(403) = false")
	}
	if !IsServerError(Classify(500, "http://x", nil, nil)) {
		t.Error("IsServerError(500) = false")
	}
	if !IsNetwork(NewNetworkError("http://x", errTest)) {
		t.Error("IsNetwork() = false")
	}
	if !IsTimeout(NewTimeoutError("http://x", errTest)) {
		t.Error("IsTimeout() = false")
	}
	if !IsRetryable(NewNetworkError("http://x", errTest)) {
		t.Error("network errors must be retryable")
	}
	if IsRetryable(Classify(404, "http://x", nil, nil)) {
		t.Error("404 must not be retryable")
	}
}
