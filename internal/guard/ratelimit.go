package guard

import "time"

const (
	DefaultRateLimit       = 15
	DefaultRateLimitWindow = time.Minute
)

// Limiter is a fixed sliding-window admission gate: at most maxRequests are
// accepted within window of the window's start; once the window has elapsed
// the counter resets. A rejected request never advances the window.
//
// A Limiter belongs to exactly one session and is not safe for concurrent
// use; sessions must not share one.
type Limiter struct {
	maxRequests int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow consumes one slot when the request is admitted. The first admitted
// request opens the window.
func (l *Limiter) Allow() bool {
	now := l.now()

	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}

	if l.count >= l.maxRequests {
		return false
	}

	l.count++
	return true
}
