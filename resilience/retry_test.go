package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errFlaky = errors.New("flaky")

func noSleep(t *testing.T) (sleep func(context.Context, time.Duration) error, slept *[]time.Duration) {
	t.Helper()
	var log []time.Duration
	return func(ctx context.Context, d time.Duration) error {
		log = append(log, d)
		return ctx.Err()
	}, &log
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	sleep, slept := noSleep(t)
	calls := 0

	got, err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, Sleep: sleep},
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", errFlaky
			}
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	sleep, _ := noSleep(t)
	calls := 0

	_, err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, Sleep: sleep},
		func() (int, error) {
			calls++
			return 0, errFlaky
		})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("err = %v, want errFlaky", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want exactly 3", calls)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	sleep, _ := noSleep(t)
	fatal := errors.New("fatal")
	calls := 0

	_, err := Retry(context.Background(), RetryConfig{
		MaxAttempts: 5,
		Sleep:       sleep,
		RetryIf:     func(err error) bool { return !errors.Is(err, fatal) },
	}, func() (int, error) {
		calls++
		return 0, fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

type hintedErr struct{ delay time.Duration }

func (e *hintedErr) Error() string             { return "rate limited" }
func (e *hintedErr) RetryDelay() time.Duration { return e.delay }

func TestRetry_DelayHintOverridesBackoff(t *testing.T) {
	sleep, slept := noSleep(t)
	calls := 0

	_, err := Retry(context.Background(), RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		Sleep:          sleep,
	}, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &hintedErr{delay: 5 * time.Second}
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 5*time.Second {
		t.Errorf("slept = %v, want [5s] from the delay hint", *slept)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, DefaultRetryConfig(), func() (int, error) {
		t.Fatal("fn must not run after cancellation")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCalculateBackoff_GrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}.normalize()
	cfg.Jitter = 0

	if d := calculateBackoff(1, cfg); d != 100*time.Millisecond {
		t.Errorf("attempt 1 backoff = %v", d)
	}
	if d := calculateBackoff(2, cfg); d != 200*time.Millisecond {
		t.Errorf("attempt 2 backoff = %v", d)
	}
	if d := calculateBackoff(10, cfg); d != time.Second {
		t.Errorf("attempt 10 backoff = %v, want cap at 1s", d)
	}
}

func TestLimitTracker(t *testing.T) {
	tr := NewLimitTracker()

	if _, ok := tr.Get("/statuses/home_timeline.json"); ok {
		t.Fatal("empty tracker should miss")
	}

	tr.UpdateFromHeaders("/statuses/home_timeline.json", map[string]string{
		HeaderLimitRemaining: "13",
		HeaderLimitReset:     "1318622958",
	})

	l, ok := tr.Get("/statuses/home_timeline.json")
	if !ok {
		t.Fatal("expected tracked limit")
	}
	if l.Remaining != 13 {
		t.Errorf("Remaining = %d", l.Remaining)
	}
	if l.Reset.Unix() != 1318622958 {
		t.Errorf("Reset = %v", l.Reset)
	}

	// last writer wins
	tr.UpdateFromHeaders("/statuses/home_timeline.json", map[string]string{
		HeaderLimitRemaining: "0",
		HeaderLimitReset:     "1318623000",
	})
	l, _ = tr.Get("/statuses/home_timeline.json")
	if !l.Exhausted() {
		t.Error("limit should be exhausted after overwrite")
	}

	// malformed headers are ignored
	tr.UpdateFromHeaders("/statuses/home_timeline.json", map[string]string{})
	l, _ = tr.Get("/statuses/home_timeline.json")
	if l.Remaining != 0 || l.Reset.Unix() != 1318623000 {
		t.Error("malformed headers must not clobber state")
	}
}

func TestLimit_Until(t *testing.T) {
	now := time.Unix(1000, 0)
	l := Limit{Reset: time.Unix(1005, 0)}
	if d := l.Until(now); d != 5*time.Second {
		t.Errorf("Until = %v, want 5s", d)
	}
	if d := l.Until(time.Unix(2000, 0)); d != 0 {
		t.Errorf("Until past reset = %v, want 0", d)
	}
}
