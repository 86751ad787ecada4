package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/httputil"

	"golang.org/x/sync/errgroup"
)

const leverWorkers = 8

// Lever reads the public postings API of each configured company.
type Lever struct {
	Companies []Company
	BaseURL   string
	// PerCompany bounds a single company's request, retries included.
	PerCompany time.Duration

	client *httputil.Client
	log    logger.Logger
}

func NewLever(companies []Company, client *httputil.Client, log logger.Logger) *Lever {
	if log == nil {
		log = logger.NewNop()
	}
	return &Lever{
		Companies:  companies,
		BaseURL:    DefaultLeverBase,
		PerCompany: 30 * time.Second,
		client:     client,
		log:        log.With(logger.String("source", "Lever")),
	}
}

func (l *Lever) Name() string { return "Lever" }

type leverPosting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	Categories struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
}

// Fetch fans out over companies with a bounded worker count. Results keep the
// configured company order. One company failing is logged and skipped.
func (l *Lever) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	results := make([][]domain.RawListing, len(l.Companies))
	errs := make([]error, len(l.Companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leverWorkers)
	for i, co := range l.Companies {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, l.PerCompany)
			defer cancel()

			jobs, err := l.fetchCompany(cctx, co)
			if err != nil {
				l.log.Warn("company failed", logger.String("company", co.Name), logger.String("slug", co.Slug), logger.Err(err))
				errs[i] = err
				return nil
			}
			results[i] = jobs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []domain.RawListing{}
	failed := 0
	for i := range l.Companies {
		if errs[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if len(l.Companies) > 0 && failed == len(l.Companies) {
		return nil, errors.Join(errs...)
	}
	l.log.Debug("processed", logger.Int("listings", len(out)))
	return out, nil
}

func (l *Lever) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", strings.TrimRight(l.BaseURL, "/"), co.Slug)
	body, err := l.client.Get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}

	var postings []leverPosting
	if err := json.Unmarshal(body, &postings); err != nil {
		return nil, fmt.Errorf("lever decode: %w", err)
	}

	var out []domain.RawListing
	for _, p := range postings {
		title := strings.TrimSpace(p.Text)
		if p.ID == "" || p.HostedURL == "" || title == "" {
			continue
		}
		if !isInternship(title) && !isInternship(p.Categories.Commitment) {
			continue
		}
		loc := httputil.NormalizeLocation(p.Categories.Location)
		var skills []string
		if p.Categories.Team != "" {
			skills = []string{p.Categories.Team}
		}
		out = append(out, domain.RawListing{
			Organization: co.Name,
			Title:        title,
			Skills:       skills,
			Location:     loc,
			LocationKind: httputil.InferLocationKind(loc, domain.LocationInternational),
			OrgKind:      domain.OrgCompany,
			RoleKind:     httputil.RoleKindFor(title),
			SourceName:   "Lever",
			ApplyURL:     p.HostedURL,
			Duration:     p.Categories.Commitment,
		})
	}
	return out, nil
}
