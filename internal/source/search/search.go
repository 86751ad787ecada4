// Package search discovers listings that live on pages no board adapter
// covers by running region- and topic-aware dorks against an HTML search
// endpoint.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/httputil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const DefaultEndpoint = "https://html.duckduckgo.com/html/"

var (
	aiTerms = []string{
		"machine learning", "artificial intelligence", "deep learning", "nlp",
		"computer vision", "data science", "neural network", "ai intern", "ml intern",
		"generative ai", "llm", "reinforcement learning", "research intern",
	}
	internshipTerms = []string{
		"intern", "fellowship", "trainee", "urop", "reu", "visiting researcher",
		"summer program", "research assistant", "research program", "student researcher",
	}
	academicMarkers = []string{
		".edu", ".ac.", ".res.", "lab", "institute", "university", "deepmind", "mila",
		"allenai", "vectorinstitute", "bair", "inria", "riken",
	}
	governmentMarkers = []string{".gov", "ornl", "anl", "pnnl", "sandia", "energy.gov"}
)

// Profile is what distinguishes one search family from another.
type Profile struct {
	Name    string
	Queries []Query

	IndiaStipend   float64
	ForeignStipend float64
	StipendText    string
	Skills         []string
	Duration       string
	Deadline       string

	// ClassifyByDomain overrides a query's org and role kind when the result
	// host is clearly academic or governmental.
	ClassifyByDomain bool
}

func SearchProfile() Profile {
	return Profile{
		Name:           "Search",
		Queries:        DorkQueries,
		IndiaStipend:   5000,
		ForeignStipend: 1000,
		StipendText:    "Discover on Site",
		Skills:         []string{"AI/ML (Extracted from search)"},
		Duration:       "Check Website",
		Deadline:       "Rolling",
	}
}

func UniversityProfile() Profile {
	return Profile{
		Name:             "Uni Search",
		Queries:          UniversityQueries,
		IndiaStipend:     60000,
		ForeignStipend:   1500,
		StipendText:      "Funded / Stipend (Check Website)",
		Skills:           []string{"AI/ML", "Research"},
		Duration:         "Check Program Page",
		Deadline:         "Check Program Page",
		ClassifyByDomain: true,
	}
}

type Config struct {
	Endpoint   string
	Delay      time.Duration
	MaxResults int
	Now        func() time.Time
}

type Adapter struct {
	profile Profile
	cfg     Config
	client  *httputil.Client
	pace    *rate.Limiter
	log     logger.Logger
}

func New(profile Profile, cfg Config, client *httputil.Client, log logger.Logger) *Adapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 15
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.NewNop()
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Adapter{
		profile: profile,
		cfg:     cfg,
		client:  client,
		pace:    rate.NewLimiter(limit, 1),
		log:     log.With(logger.String("source", profile.Name)),
	}
}

func (a *Adapter) Name() string { return a.profile.Name }

// Fetch runs every active query in order. A failing query is logged and
// skipped; the adapter fails only when every query failed.
func (a *Adapter) Fetch(ctx context.Context, cfg domain.RunConfig) ([]domain.RawListing, error) {
	active := Active(a.profile.Queries, cfg)
	if len(active) == 0 {
		a.log.Warn("no queries match the requested regions and topics")
		return []domain.RawListing{}, nil
	}

	year := a.cfg.Now().Year()
	seen := map[string]bool{}
	out := []domain.RawListing{}
	var (
		failed  int
		lastErr error
	)

	for i, q := range active {
		if err := a.pace.Wait(ctx); err != nil {
			return out, err
		}

		results, err := a.query(ctx, q.render(year))
		if err != nil {
			failed++
			lastErr = err
			a.log.Warn("query failed", logger.String("label", q.Label), logger.Err(err))
			continue
		}

		found := 0
		for _, r := range results {
			if seen[r.Href] || !r.relevant() {
				continue
			}
			seen[r.Href] = true
			out = append(out, a.listing(q, r))
			found++
		}
		a.log.Debug("query done",
			logger.Int("index", i+1),
			logger.Int("of", len(active)),
			logger.String("label", q.Label),
			logger.Int("found", found),
		)
	}

	if failed == len(active) {
		return nil, fmt.Errorf("%s: all %d queries failed: %w", a.profile.Name, failed, lastErr)
	}
	return out, nil
}

// Result is one organic hit on a search results page.
type Result struct {
	Title   string
	Snippet string
	Href    string
}

func (r Result) relevant() bool {
	if r.Title == "" || r.Href == "" {
		return false
	}
	text := strings.ToLower(r.Title + " " + r.Snippet)
	return containsAny(text, aiTerms) && containsAny(text, internshipTerms)
}

func (a *Adapter) query(ctx context.Context, q string) ([]Result, error) {
	form := url.Values{"q": {q}}.Encode()
	body, err := a.client.PostForm(ctx, a.cfg.Endpoint, form)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return ParseResults(doc, a.cfg.MaxResults), nil
}

// ParseResults reads result links from the HTML endpoint's page, unwrapping
// its redirect links.
func ParseResults(doc *goquery.Document, limit int) []Result {
	var out []Result
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		href, _ := s.Attr("href")
		out = append(out, Result{
			Title:   httputil.CleanText(s.Text()),
			Snippet: httputil.CleanText(s.Closest(".result").Find(".result__snippet").First().Text()),
			Href:    unwrapRedirect(href),
		})
		return true
	})
	return out
}

func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func (a *Adapter) listing(q Query, r Result) domain.RawListing {
	host := hostOf(r.Href)

	title := r.Title
	if len(title) >= 100 {
		title = "AI/ML Opportunity at " + host
	}

	orgKind, roleKind := q.OrgKind, q.RoleKind
	if a.profile.ClassifyByDomain {
		low := strings.ToLower(r.Href)
		switch {
		case containsAny(low, academicMarkers):
			orgKind, roleKind = domain.OrgInstitution, domain.RoleResearch
		case containsAny(low, governmentMarkers):
			orgKind, roleKind = domain.OrgGovernment, domain.RoleResearch
		}
	}

	stipend, currency := a.profile.ForeignStipend, "USD"
	if q.Kind == domain.LocationIndia {
		stipend, currency = a.profile.IndiaStipend, "INR"
	}

	return domain.RawListing{
		Organization:    host,
		Title:           title,
		Skills:          a.profile.Skills,
		StipendText:     a.profile.StipendText,
		StipendNumeric:  stipend,
		StipendCurrency: currency,
		Location:        q.Location,
		LocationKind:    q.Kind,
		OrgKind:         orgKind,
		RoleKind:        roleKind,
		SourceName:      a.profile.Name + ": " + q.Label,
		ApplyURL:        r.Href,
		Duration:        a.profile.Duration,
		Deadline:        a.profile.Deadline,
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if len(raw) > 40 {
			return raw[:40]
		}
		return raw
	}
	h := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return strings.TrimPrefix(h, "jobs.")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
