package auth

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LoginThrottle counts failed login attempts per client in a fixed TTL
// window. It is a cheap brake on online password guessing; the bcrypt cost
// remains the primary defense.
type LoginThrottle struct {
	attempts *gocache.Cache
	limit    int
}

// NewLoginThrottle allows up to limit failures per key within window.
func NewLoginThrottle(limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		attempts: gocache.New(window, 2*window),
		limit:    limit,
	}
}

// Allow reports whether the key is still under the failure limit.
func (t *LoginThrottle) Allow(key string) bool {
	n, found := t.attempts.Get(key)
	if !found {
		return true
	}
	return n.(int) < t.limit
}

// Fail records a failed attempt for the key. The window starts at the first
// failure and is not extended by later ones.
func (t *LoginThrottle) Fail(key string) {
	if _, err := t.attempts.IncrementInt(key, 1); err != nil {
		t.attempts.Add(key, 1, gocache.DefaultExpiration)
	}
}

// Reset clears the counter for the key after a successful login.
func (t *LoginThrottle) Reset(key string) {
	t.attempts.Delete(key)
}
