package ats

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/source/httputil"
)

const workdayPage = 20

var ErrWorkdayBlocked = errors.New("workday: host blocked by cloudflare")

// Workday queries the cxs jobs endpoint behind a myworkdayjobs.com career
// site. Company.Slug holds the full board URL, e.g.
// https://nvidia.wd5.myworkdayjobs.com/NVIDIAExternalCareerSite.
type Workday struct {
	Companies  []Company
	PerCompany time.Duration
	// MaxOffset stops paging through very large boards.
	MaxOffset int

	client *httputil.Client
	log    logger.Logger

	mu      sync.Mutex
	blocked map[string]bool
}

func NewWorkday(companies []Company, client *httputil.Client, log logger.Logger) *Workday {
	if log == nil {
		log = logger.NewNop()
	}
	return &Workday{
		Companies:  companies,
		PerCompany: 45 * time.Second,
		MaxOffset:  500,
		client:     client,
		log:        log.With(logger.String("source", "Workday")),
		blocked:    map[string]bool{},
	}
}

func (w *Workday) Name() string { return "Workday" }

type wdRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type wdResponse struct {
	Total       int         `json:"total"`
	JobPostings []wdPosting `json:"jobPostings"`
}

type wdPosting struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
}

type wdBoard struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

func parseWorkdayBoard(raw string) (wdBoard, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return wdBoard{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	parts := strings.Split(u.Host, ".")
	if u.Host == "" || len(parts) < 3 {
		return wdBoard{}, fmt.Errorf("unexpected workday host in %q", raw)
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return wdBoard{}, fmt.Errorf("no career site in %q", raw)
	}
	b := wdBoard{Scheme: u.Scheme, Host: u.Host, Tenant: parts[0]}
	if len(segs) >= 2 && isLocale(segs[0]) {
		b.Locale = strings.ToLower(segs[0][:2]) + "-" + strings.ToUpper(segs[0][3:])
		segs = segs[1:]
	}
	b.Site = segs[len(segs)-1]
	return b, nil
}

func isLocale(s string) bool {
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	for _, c := range s[:2] + s[3:] {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

func (b wdBoard) origin() string { return b.Scheme + "://" + b.Host }

func (b wdBoard) jobsEndpoint() string {
	ep := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", b.origin(), b.Tenant, b.Site)
	if b.Locale != "" {
		ep += "?locale=" + url.QueryEscape(b.Locale)
	}
	return ep
}

// Fetch walks companies in order. A host that answered with a Cloudflare
// challenge is skipped for the rest of the pass.
func (w *Workday) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	out := []domain.RawListing{}
	var errs []error
	for _, co := range w.Companies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cctx, cancel := context.WithTimeout(ctx, w.PerCompany)
		jobs, err := w.fetchCompany(cctx, co)
		cancel()
		if err != nil {
			w.log.Warn("company failed", logger.String("company", co.Name), logger.Err(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, jobs...)
	}
	if len(w.Companies) > 0 && len(errs) == len(w.Companies) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (w *Workday) isBlocked(host string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blocked[host]
}

func (w *Workday) block(host string) {
	w.mu.Lock()
	w.blocked[host] = true
	w.mu.Unlock()
}

func (w *Workday) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	b, err := parseWorkdayBoard(co.Slug)
	if err != nil {
		return nil, err
	}
	if w.isBlocked(b.Host) {
		return nil, ErrWorkdayBlocked
	}

	// Workday keeps its CSRF token in a session cookie, so each board gets
	// its own jar.
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Timeout: 30 * time.Second}
	if w.client.HC != nil && w.client.HC.Timeout > 0 {
		hc.Timeout = w.client.HC.Timeout
	}

	csrf, err := w.bootstrap(ctx, hc, co.Slug)
	if errors.Is(err, ErrWorkdayBlocked) {
		w.block(b.Host)
		return nil, err
	}
	if err != nil {
		w.log.Debug("session bootstrap failed, continuing without token", logger.String("company", co.Name), logger.Err(err))
	}

	var out []domain.RawListing
	for offset := 0; offset <= w.MaxOffset; offset += workdayPage {
		page, err := w.page(ctx, hc, b, co.Slug, csrf, offset)
		if err != nil {
			return out, err
		}
		if len(page.JobPostings) == 0 {
			break
		}
		for _, p := range page.JobPostings {
			title := strings.TrimSpace(p.Title)
			if title == "" || p.ExternalPath == "" || !isInternship(title) {
				continue
			}
			loc := httputil.NormalizeLocation(p.LocationsText)
			out = append(out, domain.RawListing{
				Organization: co.Name,
				Title:        title,
				Location:     loc,
				LocationKind: httputil.InferLocationKind(loc, domain.LocationInternational),
				OrgKind:      domain.OrgCompany,
				RoleKind:     httputil.RoleKindFor(title),
				SourceName:   "Workday",
				ApplyURL:     strings.TrimRight(co.Slug, "/") + "/" + strings.TrimLeft(p.ExternalPath, "/"),
			})
		}
		if page.Total > 0 && offset+workdayPage >= page.Total {
			break
		}
	}
	return out, nil
}

func (w *Workday) page(ctx context.Context, hc *http.Client, b wdBoard, boardURL, csrf string, offset int) (wdResponse, error) {
	endpoint := b.jobsEndpoint()
	payload, err := json.Marshal(wdRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPage,
		Offset:        offset,
		SearchText:    "intern",
	})
	if err != nil {
		return wdResponse{}, err
	}
	if err := w.client.Limiter.WaitURL(ctx, endpoint); err != nil {
		return wdResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return wdResponse{}, err
	}
	req.Header.Set("User-Agent", w.client.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", b.origin())
	req.Header.Set("Referer", strings.TrimRight(boardURL, "/"))
	req.Header.Set("Accept-Language", cmp.Or(b.Locale, "en-US"))
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	res, err := hc.Do(req)
	if err != nil {
		return wdResponse{}, fmt.Errorf("workday post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return wdResponse{}, &httputil.StatusError{URL: endpoint, Code: res.StatusCode}
	}

	var page wdResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 8<<20)).Decode(&page); err != nil {
		return wdResponse{}, fmt.Errorf("workday decode: %w", err)
	}
	return page, nil
}

// bootstrap loads the career site once so the jar picks up the session and
// returns the CSRF token when the tenant sets one.
func (w *Workday) bootstrap(ctx context.Context, hc *http.Client, boardURL string) (string, error) {
	if err := w.client.Limiter.WaitURL(ctx, boardURL); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", w.client.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	res, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	preview, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	_, _ = io.Copy(io.Discard, res.Body)
	if looksLikeCloudflare(res, string(preview)) {
		return "", ErrWorkdayBlocked
	}

	u, _ := url.Parse(boardURL)
	for _, c := range hc.Jar.Cookies(u) {
		if c.Name == "CALYPSO_CSRF_TOKEN" && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("workday bootstrap: no CALYPSO_CSRF_TOKEN cookie (status %d)", res.StatusCode)
}

func looksLikeCloudflare(res *http.Response, preview string) bool {
	if strings.Contains(strings.ToLower(res.Header.Get("Server")), "cloudflare") && res.Header.Get("CF-RAY") != "" {
		return true
	}
	low := strings.ToLower(preview)
	if strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) {
		return true
	}
	return res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests
}
