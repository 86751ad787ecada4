package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
)

func stub(name string) Adapter {
	return Func(name, func(context.Context, domain.RunConfig) ([]domain.RawListing, error) {
		return []domain.RawListing{{Title: name}}, nil
	})
}

func names(as []Adapter) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.Name())
	}
	return out
}

func TestResolveAllFamiliesInOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("b", stub("b1"), stub("b2"))
	r.Register("a", stub("a1"))
	r.Register("b", stub("b3"))
	r.Register("empty")

	got, err := r.Resolve(domain.RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2", "b3", "a1"}, names(got))
	assert.Equal(t, []string{"b", "a", "empty"}, r.Families())
}

func TestResolveSelectedFamilies(t *testing.T) {
	r := NewRegistry()
	r.Register("naukri", stub("Naukri"), stub("Shine"))
	r.Register("internshala", stub("Internshala"))
	r.Register("alerts")

	got, err := r.Resolve(domain.RunConfig{Sources: []string{" Internshala ", "naukri", "alerts"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Internshala", "Naukri", "Shine"}, names(got))

	got, err = r.Resolve(domain.RunConfig{Sources: []string{"alerts"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveUnknownFamily(t *testing.T) {
	r := NewRegistry()
	r.Register("naukri", stub("Naukri"))

	got, err := r.Resolve(domain.RunConfig{Sources: []string{"naukri", "monster", "dice"}})
	require.ErrorIs(t, err, ErrUnknownSource)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "monster, dice")
}

func TestResolveDedupsSharedAdapters(t *testing.T) {
	shared := stub("Shared")
	r := NewRegistry()
	r.Register("x", shared, stub("X"))
	r.Register("y", shared)

	got, err := r.Resolve(domain.RunConfig{Sources: []string{"y", "x"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Shared", "X"}, names(got))
}

func TestFuncAdapter(t *testing.T) {
	a := stub("Fn")
	assert.Equal(t, "Fn", a.Name())
	got, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fn", got[0].Title)
}

func TestBuiltinFamilies(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Boards = []config.Board{{Name: "My Board", URLs: []string{"https://example.test"}, Card: ".c", Title: "h2"}}
	cfg.Sources.Feeds = []config.Feed{{Name: "My Feed", Family: "remotive", URL: "https://example.test/rss"}}

	r := Builtin(cfg, NewClient(cfg), nil)
	assert.Equal(t, []string{
		"internshala", "unstop", "naukri", "government",
		"remotive", "weworkremotely", "linkedin", "international",
		"bigtech", "niche", "aggregators",
		"universities", "search", "alerts", "boards",
	}, r.Families())

	assert.Len(t, r.Adapters("naukri"), 5)
	assert.Empty(t, r.Adapters("alerts"))
	assert.Equal(t, []string{"Remotive", "My Feed"}, names(r.Adapters("remotive")))

	bigtech := names(r.Adapters("bigtech"))
	assert.Contains(t, bigtech, "Greenhouse")
	assert.Contains(t, bigtech, "Lever")
	assert.Contains(t, bigtech, "SmartRecruiters")
	assert.Contains(t, bigtech, "Workday")
	assert.Contains(t, bigtech, "NVIDIA")

	cfg.Email.Enabled = true
	r = Builtin(cfg, NewClient(cfg), nil)
	assert.Equal(t, []string{"Mail Alerts"}, names(r.Adapters("alerts")))
}

func TestLiveSwap(t *testing.T) {
	a := NewRegistry()
	a.Register("one", stub("One"))
	b := NewRegistry()
	b.Register("two", stub("Two"))

	l := NewLive(a)
	_, err := l.Resolve(domain.RunConfig{Sources: []string{"two"}})
	require.ErrorIs(t, err, ErrUnknownSource)

	l.Swap(b)
	got, err := l.Resolve(domain.RunConfig{Sources: []string{"two"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Two"}, names(got))
	assert.Equal(t, []string{"two"}, l.Families())
	assert.Len(t, l.Adapters("two"), 1)
	assert.Same(t, b, l.Current())
}
