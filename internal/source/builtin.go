package source

import (
	"net/url"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/ats"
	"internhunt-engine/internal/source/board"
	"internhunt-engine/internal/source/httputil"
	"internhunt-engine/internal/source/mailalert"
	"internhunt-engine/internal/source/rss"
	"internhunt-engine/internal/source/search"
)

const (
	FamilyBigTech      = "bigtech"
	FamilyUniversities = "universities"
	FamilySearch       = "search"
	FamilyAlerts       = "alerts"

	defaultBoardFamily = "boards"
	defaultFeedFamily  = "feeds"
)

// NewClient builds the shared HTTP client from the http section of cfg.
func NewClient(cfg config.Config) *httputil.Client {
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	var limiter *httputil.HostLimiter
	if cfg.HTTP.RatePerSecond > 0 {
		limiter = httputil.NewHostLimiter(cfg.HTTP.RatePerSecond, max(cfg.HTTP.Burst, 1))
		if d := cfg.Sources.Search.DelaySeconds; d > 0 {
			if u, err := url.Parse(cfg.Sources.Search.Endpoint); err == nil && u.Host != "" {
				limiter.Slow(u.Host, 1/float64(d))
			}
		}
	}
	return httputil.NewClient(timeout, limiter, cfg.HTTP.UserAgent)
}

// Builtin assembles the registry: the built-in presets first, then whatever
// boards and feeds the config declares. The alerts family always exists but is
// empty unless email is enabled.
func Builtin(cfg config.Config, client *httputil.Client, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	r := NewRegistry()

	presets := board.Presets()
	registerBoards := func(families ...string) {
		for _, p := range presets {
			for _, f := range families {
				if p.Family == f {
					r.Register(f, board.New(p.Site, client))
				}
			}
		}
	}

	registerBoards("internshala", "unstop", "naukri", "government")

	for _, p := range rss.Presets() {
		r.Register(p.Family, rss.New(p.Feed, client))
	}

	registerBoards(FamilyBigTech)
	r.Register(FamilyBigTech,
		ats.NewGreenhouse(companies(cfg.Sources.Greenhouse.Companies), client, log),
		ats.NewLever(companies(cfg.Sources.Lever.Companies), client, log),
		ats.NewSmartRecruiters(companies(cfg.Sources.SmartRecruiters.Companies), client, log),
		ats.NewWorkday(companies(cfg.Sources.Workday.Companies), client, log),
	)

	registerBoards("niche", "aggregators")

	sc := search.Config{
		Endpoint:   cfg.Sources.Search.Endpoint,
		Delay:      time.Duration(cfg.Sources.Search.DelaySeconds) * time.Second,
		MaxResults: cfg.Sources.Search.MaxResults,
	}
	r.Register(FamilyUniversities, search.New(search.UniversityProfile(), sc, client, log))
	r.Register(FamilySearch, search.New(search.SearchProfile(), sc, client, log))

	if cfg.Email.Enabled {
		r.Register(FamilyAlerts, mailalert.FromConfig(cfg.Email, log))
	} else {
		r.Register(FamilyAlerts)
	}

	for _, b := range cfg.Sources.Boards {
		r.Register(familyOr(b.Family, defaultBoardFamily), board.New(board.FromConfig(b), client))
	}
	for _, f := range cfg.Sources.Feeds {
		r.Register(familyOr(f.Family, defaultFeedFamily), rss.New(rss.FromConfig(f), client))
	}
	return r
}

func companies(cs []config.Company) []ats.Company {
	out := make([]ats.Company, 0, len(cs))
	for _, c := range cs {
		if c.Slug == "" {
			continue
		}
		name := c.Name
		if name == "" {
			name = c.Slug
		}
		out = append(out, ats.Company{Slug: c.Slug, Name: name})
	}
	return out
}

func familyOr(f, def string) string {
	if f == "" {
		return def
	}
	return f
}
