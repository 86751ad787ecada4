// Package ats reads the public job boards of applicant tracking systems.
package ats

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/httputil"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultGreenhouseBase = "https://boards.greenhouse.io"
	DefaultLeverBase      = "https://api.lever.co"
)

type Company struct {
	Slug string
	Name string
}

// Greenhouse scrapes boards.greenhouse.io/<slug> and hydrates each internship
// from its job page.
type Greenhouse struct {
	Companies []Company
	BaseURL   string

	client *httputil.Client
	log    logger.Logger
}

func NewGreenhouse(companies []Company, client *httputil.Client, log logger.Logger) *Greenhouse {
	if log == nil {
		log = logger.NewNop()
	}
	return &Greenhouse{
		Companies: companies,
		BaseURL:   DefaultGreenhouseBase,
		client:    client,
		log:       log.With(logger.String("source", "Greenhouse")),
	}
}

func (g *Greenhouse) Name() string { return "Greenhouse" }

// Fetch never fails because one board is down; it fails only when every
// configured board did.
func (g *Greenhouse) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	out := []domain.RawListing{}
	var errs []error
	for _, co := range g.Companies {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		jobs, err := g.fetchCompany(ctx, co)
		if err != nil {
			g.log.Warn("board failed", logger.String("company", co.Name), logger.String("slug", co.Slug), logger.Err(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, jobs...)
	}
	if len(g.Companies) > 0 && len(errs) == len(g.Companies) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (g *Greenhouse) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	boardURL := strings.TrimRight(g.BaseURL, "/") + "/" + co.Slug
	doc, err := g.client.Document(ctx, boardURL)
	if err != nil {
		return nil, fmt.Errorf("greenhouse get board %s: %w", co.Slug, err)
	}

	base, _ := url.Parse(g.BaseURL)
	seen := map[string]bool{}

	var jobs []domain.RawListing
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := httputil.AbsURL(g.BaseURL, href)
		u, err := url.Parse(abs)
		if err != nil || base == nil || u.Host != base.Host || !strings.Contains(u.Path, "/jobs/") {
			return
		}
		id := extractJobID(u.Path)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		title := httputil.CleanText(a.Text())
		if looksLikeJunkTitle(title) {
			title = ""
		}
		// skip obvious non-internships before paying for a page fetch
		if title != "" && !isInternship(title) {
			return
		}

		jobs = append(jobs, domain.RawListing{
			Organization: co.Name,
			Title:        title,
			OrgKind:      domain.OrgCompany,
			SourceName:   "Greenhouse",
			ApplyURL:     abs,
		})
	})

	out := jobs[:0]
	for _, j := range jobs {
		if err := g.hydrate(ctx, &j); err != nil {
			g.log.Debug("hydrate failed", logger.String("url", j.ApplyURL), logger.Err(err))
		}
		if j.Title == "" || !isInternship(j.Title) {
			continue
		}
		j.RoleKind = httputil.RoleKindFor(j.Title)
		j.LocationKind = httputil.InferLocationKind(j.Location, domain.LocationInternational)
		out = append(out, j)
	}
	return out, nil
}

func (g *Greenhouse) hydrate(ctx context.Context, j *domain.RawListing) error {
	doc, err := g.client.Document(ctx, j.ApplyURL)
	if err != nil {
		return err
	}
	if j.Title == "" {
		j.Title = httputil.CleanText(doc.Find("h1").First().Text())
	}
	j.Location = httputil.NormalizeLocation(doc.Find(".location").First().Text())
	return nil
}

func extractJobID(path string) string {
	parts := strings.SplitN(path, "/jobs/", 2)
	if len(parts) < 2 {
		return ""
	}
	id := ""
	for _, r := range parts[1] {
		if r < '0' || r > '9' {
			break
		}
		id += string(r)
	}
	return id
}

func looksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view") || strings.Contains(l, "apply")
}

func isInternship(title string) bool {
	return strings.Contains(strings.ToLower(title), "intern")
}
