package board

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"

	"github.com/PuerkitoBio/goquery"
)

// Site describes a job-card page by CSS selectors. Every selector is
// evaluated inside a card; empty selectors are skipped.
type Site struct {
	Name     string
	URLs     []string
	BaseURL  string
	Card     string
	Title    string
	Company  string
	Location string
	Stipend  string
	Duration string
	Start    string
	Skills   string
	Link     string

	// Currency is assumed when the stipend text carries no marker.
	Currency     string
	LocationKind domain.LocationKind
	OrgKind      domain.OrgKind

	// MaxPages > 1 follows URL+fmt.Sprintf(PageSuffix, n) until a page has no cards.
	MaxPages   int
	PageSuffix string

	// Lead switches the site to portal mode: the page yields one listing
	// pointing at itself instead of being split into cards.
	Lead *Lead
}

// Lead is the single listing a portal page stands for.
type Lead struct {
	Title          string
	Organization   string
	Location       string
	Stipend        string
	StipendNumeric float64
	Duration       string
	Deadline       string
	Skills         []string
	RoleKind       domain.RoleKind
	// Keywords gate the lead: the page must mention at least one. Empty means always.
	Keywords []string
}

type Adapter struct {
	site   Site
	client *httputil.Client
}

func New(site Site, client *httputil.Client) *Adapter {
	return &Adapter{site: site, client: client}
}

func (a *Adapter) Name() string { return a.site.Name }

func (a *Adapter) Site() Site { return a.site }

// Fetch walks every configured URL. Individual page failures are tolerated as
// long as one page loaded; if none did the combined error is returned.
func (a *Adapter) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	var (
		out    []domain.RawListing
		errs   []error
		loaded int
	)
	seen := map[string]bool{}

	for _, base := range a.site.URLs {
		pages := max(a.site.MaxPages, 1)
		for n := 1; n <= pages; n++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			pageURL := base
			if n > 1 {
				pageURL = base + fmt.Sprintf(a.site.PageSuffix, n)
			}

			doc, err := a.client.Document(ctx, pageURL)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", pageURL, err))
				break
			}
			loaded++

			got := Parse(doc, a.site, pageURL)
			if len(got) == 0 {
				break
			}
			for _, l := range got {
				key := l.ApplyURL + "\x1f" + l.Title
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, l)
			}
			if a.site.Lead != nil {
				break
			}
		}
	}

	if loaded == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", a.site.Name, errors.Join(errs...))
	}
	return out, nil
}

// Parse extracts listings from one loaded page.
func Parse(doc *goquery.Document, site Site, pageURL string) []domain.RawListing {
	if site.Lead != nil {
		if l, ok := parseLead(doc, site, pageURL); ok {
			return []domain.RawListing{l}
		}
		return nil
	}

	base := site.BaseURL
	if base == "" {
		base = pageURL
	}

	var out []domain.RawListing
	doc.Find(site.Card).Each(func(_ int, card *goquery.Selection) {
		title := pick(card, site.Title)
		if title == "" {
			return
		}

		org := pick(card, site.Company)
		if org == "" {
			org = "Unknown"
		}

		loc := httputil.NormalizeLocation(pick(card, site.Location))
		if loc == "" {
			loc = defaultLocation(site.LocationKind)
		}

		stipendText := pick(card, site.Stipend)
		amount, currency := httputil.ParseStipend(stipendText)
		if currency == "" {
			currency = site.Currency
		}

		orgKind := site.OrgKind
		if orgKind == "" {
			orgKind = domain.OrgCompany
		}

		out = append(out, domain.RawListing{
			Organization:    org,
			Title:           title,
			Skills:          pickAll(card, site.Skills),
			StipendText:     stipendText,
			StipendNumeric:  amount,
			StipendCurrency: currency,
			Location:        loc,
			LocationKind:    httputil.InferLocationKind(loc, site.LocationKind),
			OrgKind:         orgKind,
			RoleKind:        httputil.RoleKindFor(title),
			SourceName:      site.Name,
			StartWindowText: pick(card, site.Start),
			ApplyURL:        httputil.AbsURL(base, linkFor(card, site)),
			Duration:        pick(card, site.Duration),
		})
	})
	return out
}

func parseLead(doc *goquery.Document, site Site, pageURL string) (domain.RawListing, bool) {
	lead := site.Lead
	if len(lead.Keywords) > 0 {
		body := strings.ToLower(doc.Text())
		hit := false
		for _, k := range lead.Keywords {
			if strings.Contains(body, strings.ToLower(k)) {
				hit = true
				break
			}
		}
		if !hit {
			return domain.RawListing{}, false
		}
	}

	org := lead.Organization
	if org == "" {
		org = site.Name
	}
	loc := lead.Location
	if loc == "" {
		loc = defaultLocation(site.LocationKind)
	}
	role := lead.RoleKind
	if role == "" {
		role = httputil.RoleKindFor(lead.Title)
	}
	orgKind := site.OrgKind
	if orgKind == "" {
		orgKind = domain.OrgCompany
	}

	return domain.RawListing{
		Organization:    org,
		Title:           lead.Title,
		Skills:          lead.Skills,
		StipendText:     lead.Stipend,
		StipendNumeric:  lead.StipendNumeric,
		StipendCurrency: site.Currency,
		Location:        loc,
		LocationKind:    httputil.InferLocationKind(loc, site.LocationKind),
		OrgKind:         orgKind,
		RoleKind:        role,
		SourceName:      site.Name,
		StartWindowText: "Rolling",
		ApplyURL:        pageURL,
		Duration:        lead.Duration,
		Deadline:        lead.Deadline,
	}, true
}

func pick(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return httputil.CleanText(s.Find(selector).First().Text())
}

func pickAll(s *goquery.Selection, selector string) []string {
	if selector == "" {
		return nil
	}
	var out []string
	s.Find(selector).Each(func(_ int, el *goquery.Selection) {
		if t := httputil.CleanText(el.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// linkFor prefers the explicit link selector, then the card itself when it is
// an anchor, then an anchor in or around the title, then any anchor.
func linkFor(card *goquery.Selection, site Site) string {
	if site.Link != "" {
		if href, ok := card.Find(site.Link).First().Attr("href"); ok {
			return href
		}
	}
	if goquery.NodeName(card) == "a" {
		if href, ok := card.Attr("href"); ok {
			return href
		}
	}
	if site.Title != "" {
		t := card.Find(site.Title).First()
		if goquery.NodeName(t) == "a" {
			if href, ok := t.Attr("href"); ok {
				return href
			}
		}
		if href, ok := t.Find("a[href]").First().Attr("href"); ok {
			return href
		}
	}
	href, _ := card.Find("a[href]").First().Attr("href")
	return href
}

func defaultLocation(k domain.LocationKind) string {
	switch k {
	case domain.LocationIndia:
		return "India"
	case domain.LocationRemote:
		return "Remote"
	default:
		return ""
	}
}
