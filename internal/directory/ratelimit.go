package directory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WindowLimiter is a fixed-window request limiter shared by all directory
// calls in the process. When the window elapses the counter resets; when the
// counter reaches the cap, Acquire blocks until the window boundary. It is
// an explicit object constructed once and passed by reference, not package
// state, and takes its notion of time from an injected Clock.
type WindowLimiter struct {
	mu          sync.Mutex
	clock       Clock
	maxRequests int
	window      time.Duration
	windowStart time.Time
	count       int
}

// NewWindowLimiter creates a limiter allowing maxRequests per window.
// Non-positive arguments fall back to 300 requests per 60s.
func NewWindowLimiter(maxRequests int, window time.Duration, clock Clock) *WindowLimiter {
	if maxRequests <= 0 {
		maxRequests = 300
	}
	if window <= 0 {
		window = 60 * time.Second
	}
	if clock == nil {
		clock = RealClock()
	}
	return &WindowLimiter{
		clock:       clock,
		maxRequests: maxRequests,
		window:      window,
		windowStart: clock.Now(),
	}
}

// Acquire reserves one request slot, blocking until the current window
// resets if the cap has been reached. It returns early only on context
// cancellation.
func (l *WindowLimiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.clock.Now()
		if now.Sub(l.windowStart) >= l.window {
			l.windowStart = now
			l.count = 0
		}
		if l.count < l.maxRequests {
			l.count++
			l.mu.Unlock()
			return nil
		}
		wait := l.windowStart.Add(l.window).Sub(now)
		l.mu.Unlock()

		zap.L().Debug("directory: rate limit window full, waiting",
			zap.Duration("wait", wait),
			zap.Int("max_requests", l.maxRequests),
		)
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}
