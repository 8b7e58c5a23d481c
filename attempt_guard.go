package auth

import (
	"sync"
	"time"
)

// attemptRecord tracks failures for one username. The window is
// anchored at the first failure; it does not slide per attempt.
type attemptRecord struct {
	failureCount int
	windowStart  time.Time
}

// LoginAttemptGuard throttles credential guessing with a per-username
// failure counter. Records are a process-local cache, never persisted;
// the durable lock lives on the account itself. Expiry is checked
// lazily on read, there is no background sweep.
type LoginAttemptGuard struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// GuardOption customizes guard construction
type GuardOption func(*LoginAttemptGuard)

// WithGuardClock injects a custom clock (useful for tests).
func WithGuardClock(clock func() time.Time) GuardOption {
	return func(g *LoginAttemptGuard) {
		if clock != nil {
			g.now = clock
		}
	}
}

// NewLoginAttemptGuard creates a guard allowing maxAttempts failures
// within window. Non-positive values fall back to the defaults.
func NewLoginAttemptGuard(maxAttempts int, window time.Duration, opts ...GuardOption) *LoginAttemptGuard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}

	g := &LoginAttemptGuard{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// NewLoginAttemptGuardFromConfig builds a guard from the recognized
// configuration surface.
func NewLoginAttemptGuardFromConfig(config Config, opts ...GuardOption) *LoginAttemptGuard {
	return NewLoginAttemptGuard(config.GetMaxLoginAttempts(), config.GetLockoutWindow(), opts...)
}

// RecordFailure counts a failed attempt for username, starting a fresh
// window when none is live. Returns the count in the current window.
func (g *LoginAttemptGuard) RecordFailure(username string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	record, ok := g.attempts[username]
	if !ok || g.expired(record, now) {
		g.attempts[username] = &attemptRecord{failureCount: 1, windowStart: now}
		return 1
	}

	record.failureCount++
	return record.failureCount
}

// HasExceededMaxAttempts reports whether a live window for username has
// reached the failure threshold. An expired record counts as absent.
func (g *LoginAttemptGuard) HasExceededMaxAttempts(username string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.attempts[username]
	if !ok {
		return false
	}

	if g.expired(record, g.now()) {
		delete(g.attempts, username)
		return false
	}

	return record.failureCount >= g.maxAttempts
}

// Evict clears the record for username. Eviction of an absent record is
// a no-op; callers use it on successful login and administrative
// unlock.
func (g *LoginAttemptGuard) Evict(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, username)
}

func (g *LoginAttemptGuard) expired(record *attemptRecord, now time.Time) bool {
	return now.Sub(record.windowStart) >= g.window
}
