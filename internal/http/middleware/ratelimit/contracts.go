package ratelimit

import "time"

// Limiter decides whether a client identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Clock reports the current time. A nil Clock means time.Now.
type Clock func() time.Time

// AllowAll is the Limiter used when rate limiting is switched off.
type AllowAll struct{}

// Allow admits every key.
func (AllowAll) Allow(string) bool { return true }
