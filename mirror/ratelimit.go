package mirror

import (
	"context"
	"sync"

	"github.com/fwojciec/pagemirror"
	"golang.org/x/time/rate"
)

var _ pagemirror.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter paces asset requests with one token bucket per host.
// The zero rate means unlimited.
type DomainLimiter struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// NewDomainLimiter returns a limiter admitting rps requests per second to
// each host. burst is raised to 1 if smaller.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	l := &DomainLimiter{
		limit: rate.Inf,
		burst: max(burst, 1),
		hosts: make(map[string]*rate.Limiter),
	}
	if rps > 0 {
		l.limit = rate.Limit(rps)
	}
	return l
}

// Wait blocks until host has a token or ctx is done.
func (l *DomainLimiter) Wait(ctx context.Context, host string) error {
	return l.bucket(host).Wait(ctx)
}

func (l *DomainLimiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.hosts[host]
	if b == nil {
		b = rate.NewLimiter(l.limit, l.burst)
		l.hosts[host] = b
	}
	return b
}
