package ats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/httputil"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSmartRecruitersBase = "https://api.smartrecruiters.com"
	smartRecruitersPage        = 100
	// smartRecruitersMaxOffset stops paging through very large boards.
	smartRecruitersMaxOffset = 5000
)

// SmartRecruiters pages through the public postings API of each company.
type SmartRecruiters struct {
	Companies  []Company
	BaseURL    string
	PerCompany time.Duration

	client *httputil.Client
	log    logger.Logger
}

func NewSmartRecruiters(companies []Company, client *httputil.Client, log logger.Logger) *SmartRecruiters {
	if log == nil {
		log = logger.NewNop()
	}
	return &SmartRecruiters{
		Companies:  companies,
		BaseURL:    DefaultSmartRecruitersBase,
		PerCompany: 30 * time.Second,
		client:     client,
		log:        log.With(logger.String("source", "SmartRecruiters")),
	}
}

func (s *SmartRecruiters) Name() string { return "SmartRecruiters" }

type srPage struct {
	Content    []srPosting `json:"content"`
	TotalFound int         `json:"totalFound"`
}

type srPosting struct {
	ID       string `json:"id"`
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Location struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`
}

// Fetch has the same failure rule as Lever: one company down is skipped, all
// of them down is an error.
func (s *SmartRecruiters) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	results := make([][]domain.RawListing, len(s.Companies))
	errs := make([]error, len(s.Companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leverWorkers)
	for i, co := range s.Companies {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.PerCompany)
			defer cancel()

			jobs, err := s.fetchCompany(cctx, co)
			if err != nil {
				s.log.Warn("company failed", logger.String("company", co.Name), logger.String("slug", co.Slug), logger.Err(err))
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
	for i := range s.Companies {
		if errs[i] != nil {
			failed++
			continue
		}
		out = append(out, results[i]...)
	}
	if len(s.Companies) > 0 && failed == len(s.Companies) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (s *SmartRecruiters) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	base := fmt.Sprintf("%s/v1/companies/%s/postings", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(co.Slug))

	var out []domain.RawListing
	for offset := 0; offset <= smartRecruitersMaxOffset; offset += smartRecruitersPage {
		body, err := s.client.Get(ctx, fmt.Sprintf("%s?q=intern&limit=%d&offset=%d", base, smartRecruitersPage, offset))
		if err != nil {
			return out, fmt.Errorf("smartrecruiters get: %w", err)
		}
		var page srPage
		if err := json.Unmarshal(body, &page); err != nil {
			return out, fmt.Errorf("smartrecruiters decode: %w", err)
		}
		if len(page.Content) == 0 {
			break
		}

		for _, p := range page.Content {
			title := strings.TrimSpace(p.Name)
			id := firstNonEmpty(p.ID, p.UUID)
			if title == "" || id == "" {
				continue
			}
			if !isInternship(title) && !isInternship(p.TypeOfEmployment.Label) {
				continue
			}
			loc := httputil.NormalizeLocation(strings.Join(nonEmpty(p.Location.City, p.Location.Region, p.Location.Country), ", "))
			kind := httputil.InferLocationKind(loc, domain.LocationInternational)
			if p.Location.Remote {
				kind = domain.LocationRemote
			}
			var skills []string
			if p.Department.Label != "" {
				skills = []string{p.Department.Label}
			}
			out = append(out, domain.RawListing{
				Organization: co.Name,
				Title:        title,
				Skills:       skills,
				Location:     loc,
				LocationKind: kind,
				OrgKind:      domain.OrgCompany,
				RoleKind:     httputil.RoleKindFor(title),
				SourceName:   "SmartRecruiters",
				ApplyURL:     fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", url.PathEscape(co.Slug), id),
			})
		}

		if page.TotalFound > 0 && offset+smartRecruitersPage >= page.TotalFound {
			break
		}
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
