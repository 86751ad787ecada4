// Package rss adapts RSS and Atom job feeds into raw listings.
package rss

import (
	"context"
	"fmt"
	"strings"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"

	"github.com/mmcdole/gofeed"
)

const httpPrefix = "http"

// Feed is one subscribed job feed. LocationKind is used when neither the
// title nor the description says where the role is.
type Feed struct {
	Name         string
	URL          string
	LocationKind domain.LocationKind
}

type Adapter struct {
	feed   Feed
	client *httputil.Client
}

func New(feed Feed, client *httputil.Client) *Adapter {
	return &Adapter{feed: feed, client: client}
}

func (a *Adapter) Name() string { return a.feed.Name }

func (a *Adapter) Fetch(ctx context.Context, _ domain.RunConfig) ([]domain.RawListing, error) {
	body, err := a.client.Get(ctx, a.feed.URL)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", a.feed.Name, err)
	}
	return Parse(ctx, a.feed, string(body))
}

// Parse turns a feed body into listings. Entries without a usable link are
// skipped. An empty feed returns a non-nil empty slice.
func Parse(ctx context.Context, feed Feed, body string) ([]domain.RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]domain.RawListing, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		link := extractLink(entry)
		if link == "" {
			continue
		}
		raw := httputil.CleanText(entry.Title)
		if raw == "" {
			continue
		}

		role, org := SplitTitle(raw)
		if org == "" && len(entry.Authors) > 0 && entry.Authors[0] != nil {
			org = httputil.CleanText(entry.Authors[0].Name)
		}
		if org == "" {
			org = "Unknown"
		}

		loc, kind := locate(raw, entry.Description, feed.LocationKind)
		currency := "USD"
		if kind == domain.LocationIndia {
			currency = "INR"
		}

		out = append(out, domain.RawListing{
			Organization:    org,
			Title:           role,
			Skills:          []string{"AI/ML"},
			StipendCurrency: currency,
			Location:        loc,
			LocationKind:    kind,
			OrgKind:         domain.OrgCompany,
			RoleKind:        httputil.RoleKindFor(role),
			SourceName:      feed.Name,
			ApplyURL:        link,
		})
	}
	return out, nil
}

// SplitTitle separates role and organization in the common feed title
// shapes: "Role at Company (Place)", "Company: Role" and "Role - Company - Place".
func SplitTitle(title string) (role, org string) {
	if i := strings.Index(title, " at "); i > 0 {
		role = strings.TrimSpace(title[:i])
		org = strings.TrimSpace(title[i+len(" at "):])
		if j := strings.Index(org, " ("); j > 0 {
			org = strings.TrimSpace(org[:j])
		}
		return role, org
	}
	if i := strings.Index(title, ": "); i > 0 {
		return strings.TrimSpace(title[i+2:]), strings.TrimSpace(title[:i])
	}
	if parts := strings.Split(title, " - "); len(parts) > 1 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return title, ""
}

// locate applies the feed convention: a mention of Remote wins over India,
// which wins over the feed default.
func locate(title, description string, fallback domain.LocationKind) (string, domain.LocationKind) {
	text := title + " " + description
	switch {
	case strings.Contains(text, "Remote"):
		return "Remote", domain.LocationRemote
	case strings.Contains(text, "India"):
		return "India", domain.LocationIndia
	}
	if fallback == "" {
		fallback = domain.LocationInternational
	}
	return string(fallback), fallback
}

func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}
	return ""
}
