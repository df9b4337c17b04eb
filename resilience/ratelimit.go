package resilience

import (
	"strconv"
	"sync"
	"time"
)

// Rate-limit response headers.
const (
	HeaderLimitRemaining = "X-Rate-Limit-Remaining"
	HeaderLimitReset     = "X-Rate-Limit-Reset"
)

// Limit is the advisory rate-limit state of one endpoint.
type Limit struct {
	// Remaining is the number of calls left in the current window.
	Remaining int
	// Reset is when the window resets.
	Reset time.Time
}

// Exhausted reports whether the window has no calls left.
func (l Limit) Exhausted() bool {
	return l.Remaining <= 0
}

// Until returns the time left before the window resets, never negative.
func (l Limit) Until(now time.Time) time.Duration {
	if d := l.Reset.Sub(now); d > 0 {
		return d
	}
	return 0
}

// LimitTracker records per-endpoint rate-limit state. It is the only
// cross-task mutable structure in the library; updates are simple
// last-writer-wins overwrites and races between concurrent calls to
// the same endpoint are tolerated.
type LimitTracker struct {
	mu     sync.RWMutex
	limits map[string]Limit
}

// NewLimitTracker creates an empty tracker.
func NewLimitTracker() *LimitTracker {
	return &LimitTracker{limits: make(map[string]Limit)}
}

// Update overwrites the state for key.
func (t *LimitTracker) Update(key string, limit Limit) {
	t.mu.Lock()
	t.limits[key] = limit
	t.mu.Unlock()
}

// UpdateFromHeaders parses the rate-limit response headers and records
// them for key. Responses without both headers are ignored.
func (t *LimitTracker) UpdateFromHeaders(key string, headers map[string]string) {
	limit, ok := ParseLimit(headers[HeaderLimitRemaining], headers[HeaderLimitReset])
	if !ok {
		return
	}
	t.Update(key, limit)
}

// ParseLimit parses the raw values of the rate-limit headers. It
// returns false when either value is missing or malformed.
func ParseLimit(remaining, reset string) (Limit, bool) {
	rem, err := strconv.Atoi(remaining)
	if err != nil {
		return Limit{}, false
	}
	resetUnix, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return Limit{}, false
	}
	return Limit{Remaining: rem, Reset: time.Unix(resetUnix, 0)}, true
}

// Get returns the recorded state for key.
func (t *LimitTracker) Get(key string) (Limit, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.limits[key]
	return l, ok
}
