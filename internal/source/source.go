package source

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"internhunt-engine/internal/domain"
)

// ErrUnknownSource is returned by Resolve when a requested family is not registered.
var ErrUnknownSource = errors.New("unknown source family")

// Adapter fetches raw listings from one external source. An empty result with
// a nil error means the source had nothing; any unexpected failure is an error.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, cfg domain.RunConfig) ([]domain.RawListing, error)
}

type funcAdapter struct {
	name string
	fn   func(ctx context.Context, cfg domain.RunConfig) ([]domain.RawListing, error)
}

func (f funcAdapter) Name() string { return f.name }

func (f funcAdapter) Fetch(ctx context.Context, cfg domain.RunConfig) ([]domain.RawListing, error) {
	return f.fn(ctx, cfg)
}

// Func wraps a plain function as an Adapter.
func Func(name string, fn func(ctx context.Context, cfg domain.RunConfig) ([]domain.RawListing, error)) Adapter {
	return funcAdapter{name: name, fn: fn}
}

// Registry maps source family names to the adapters that serve them.
// Families resolve in registration order.
type Registry struct {
	order    []string
	families map[string][]Adapter
}

func NewRegistry() *Registry {
	return &Registry{families: map[string][]Adapter{}}
}

// Register appends adapters to family, creating it when needed. A family
// registered with no adapters still resolves (to nothing).
func (r *Registry) Register(family string, adapters ...Adapter) {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		return
	}
	if _, ok := r.families[family]; !ok {
		r.order = append(r.order, family)
	}
	r.families[family] = append(r.families[family], adapters...)
}

func (r *Registry) Families() []string { return slices.Clone(r.order) }

func (r *Registry) Adapters(family string) []Adapter {
	return slices.Clone(r.families[strings.ToLower(family)])
}

// Resolve returns the ordered adapter list for cfg. An empty Sources set selects
// every family. Unknown families fail the whole resolution so no adapter runs.
// An adapter reachable through several families appears once.
func (r *Registry) Resolve(cfg domain.RunConfig) ([]Adapter, error) {
	families := cfg.Normalized().Sources
	if len(families) == 0 {
		families = r.order
	}

	var unknown []string
	for _, f := range families {
		if _, ok := r.families[f]; !ok {
			unknown = append(unknown, f)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(unknown, ", "))
	}

	var out []Adapter
	seen := map[string]bool{}
	for _, f := range families {
		for _, a := range r.families[f] {
			if seen[a.Name()] {
				continue
			}
			seen[a.Name()] = true
			out = append(out, a)
		}
	}
	return out, nil
}

// Live is a registry that can be replaced while passes and readers hold it,
// so a config save takes effect on the next pass without a restart.
type Live struct {
	cur atomic.Pointer[Registry]
}

func NewLive(r *Registry) *Live {
	l := &Live{}
	l.cur.Store(r)
	return l
}

func (l *Live) Swap(r *Registry) { l.cur.Store(r) }

func (l *Live) Current() *Registry { return l.cur.Load() }

func (l *Live) Resolve(cfg domain.RunConfig) ([]Adapter, error) {
	return l.cur.Load().Resolve(cfg)
}

func (l *Live) Families() []string { return l.cur.Load().Families() }

func (l *Live) Adapters(family string) []Adapter { return l.cur.Load().Adapters(family) }
