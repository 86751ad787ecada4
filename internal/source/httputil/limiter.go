package httputil

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces requests per hostname. One limiter is shared by every
// adapter in the process, so two adapters hitting the same site share its
// budget. A nil *HostLimiter never waits.
type HostLimiter struct {
	mu        sync.Mutex
	hosts     map[string]*rate.Limiter
	overrides map[string]rate.Limit
	every     rate.Limit
	burst     int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		hosts:     map[string]*rate.Limiter{},
		overrides: map[string]rate.Limit{},
		every:     rate.Limit(reqPerSec),
		burst:     max(burst, 1),
	}
}

// Slow sets a stricter rate for one host, e.g. a search engine that bans
// bursty clients. It applies to limiters created after the call.
func (hl *HostLimiter) Slow(host string, reqPerSec float64) {
	if hl == nil {
		return
	}
	hl.mu.Lock()
	defer hl.mu.Unlock()
	hl.overrides[hostKey(host)] = rate.Limit(reqPerSec)
	delete(hl.hosts, hostKey(host))
}

func (hl *HostLimiter) forHost(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if l := hl.hosts[host]; l != nil {
		return l
	}
	r, b := hl.every, hl.burst
	if o, ok := hl.overrides[host]; ok {
		r, b = o, 1
	}
	l := rate.NewLimiter(r, b)
	hl.hosts[host] = l
	return l
}

// WaitURL blocks until rawURL's host may be hit again. Unparsable URLs share
// a single bucket.
func (hl *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	if hl == nil {
		return nil
	}
	host := "_"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = hostKey(u.Host)
	}
	return hl.forHost(host).Wait(ctx)
}

func hostKey(h string) string {
	h = strings.ToLower(h)
	if i := strings.LastIndexByte(h, ':'); i > 0 && !strings.Contains(h[i:], "]") {
		h = h[:i]
	}
	return strings.TrimPrefix(h, "www.")
}
