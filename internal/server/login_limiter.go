package server

import (
	"sync"
	"time"
)

const loginLimiterSweepSize = 256

// loginLimiter throttles repeated failed logins per client and email. A key
// that collects maxFailures failures inside window is locked for lockFor.
type loginLimiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	lockFor     time.Duration
	keys        map[string]*loginAttempts
}

type loginAttempts struct {
	failures    []time.Time
	lockedUntil time.Time
}

func newLoginLimiter(maxFailures int, window, lockFor time.Duration) *loginLimiter {
	if maxFailures <= 0 || window <= 0 || lockFor <= 0 {
		return nil
	}
	return &loginLimiter{
		maxFailures: maxFailures,
		window:      window,
		lockFor:     lockFor,
		keys:        make(map[string]*loginAttempts),
	}
}

// Allow reports whether key may attempt a login at now.
func (l *loginLimiter) Allow(key string, now time.Time) bool {
	if l == nil || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.keys[key]
	if !ok {
		return true
	}
	return !now.Before(a.lockedUntil)
}

// Fail records a failed attempt and locks the key once the limit is hit.
func (l *loginLimiter) Fail(key string, now time.Time) {
	if l == nil || key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.keys) >= loginLimiterSweepSize {
		l.sweepLocked(now)
	}

	a, ok := l.keys[key]
	if !ok {
		a = &loginAttempts{}
		l.keys[key] = a
	}
	a.failures = append(pruneBefore(a.failures, now.Add(-l.window)), now)
	if len(a.failures) >= l.maxFailures {
		a.lockedUntil = now.Add(l.lockFor)
		a.failures = a.failures[:0]
	}
}

// Succeed forgets a key after a successful login.
func (l *loginLimiter) Succeed(key string) {
	if l == nil || key == "" {
		return
	}
	l.mu.Lock()
	delete(l.keys, key)
	l.mu.Unlock()
}

func (l *loginLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	for key, a := range l.keys {
		a.failures = pruneBefore(a.failures, cutoff)
		if len(a.failures) == 0 && !now.Before(a.lockedUntil) {
			delete(l.keys, key)
		}
	}
}

// pruneBefore drops timestamps older than cutoff. Input is in ascending order.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	return times[i:]
}
