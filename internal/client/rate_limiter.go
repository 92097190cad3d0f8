package client

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter spaces out requests to each catalog host independently.
// A nil *hostLimiter never waits.
type hostLimiter struct {
	rps float64

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// newHostLimiter returns nil when rps is not positive.
func newHostLimiter(rps float64) *hostLimiter {
	if rps <= 0 {
		return nil
	}
	return &hostLimiter{rps: rps, hosts: make(map[string]*rate.Limiter)}
}

func (l *hostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil {
		return ctx.Err()
	}
	return l.forHost(host).Wait(ctx)
}

func (l *hostLimiter) forHost(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.hosts[host] = lim
	}
	return lim
}
