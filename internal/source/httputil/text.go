package httputil

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"internhunt-engine/internal/domain"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

var indianPlaces = []string{
	"india", "bangalore", "bengaluru", "mumbai", "delhi", "noida", "gurgaon", "gurugram",
	"hyderabad", "pune", "chennai", "kolkata", "ahmedabad", "jaipur", "kochi",
}

// InferLocationKind classifies a location string. fallback is used when the
// text says nothing useful.
func InferLocationKind(location string, fallback domain.LocationKind) domain.LocationKind {
	l := strings.ToLower(location)
	switch {
	case strings.Contains(l, "remote") || strings.Contains(l, "work from home") || strings.Contains(l, "anywhere"):
		return domain.LocationRemote
	case containsAny(l, indianPlaces):
		return domain.LocationIndia
	case strings.TrimSpace(l) == "":
		return fallback
	default:
		if fallback == "" {
			return domain.LocationInternational
		}
		return fallback
	}
}

func RoleKindFor(title string) domain.RoleKind {
	l := strings.ToLower(title)
	if strings.Contains(l, "research") || strings.Contains(l, "scientist") {
		return domain.RoleResearch
	}
	return domain.RoleApplied
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// AbsURL resolves href against base; unparsable input comes back unchanged.
func AbsURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	if h.IsAbs() {
		return h.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "trackingid" || lk == "refid" {
			q.Del(k)
		}
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

var (
	reAmount = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k|lpa|lakh|l)?\b`)
	reRupee  = regexp.MustCompile(`\b(rs|inr)\b`)
)

// ParseStipend pulls the first amount out of stipend text. "10 K/Month" is
// 10000, "₹ 12,500 /month" is 12500, "3 LPA" is 300000 per year and is
// reported monthly. The currency is guessed from symbols and codes.
func ParseStipend(text string) (amount float64, currency string) {
	t := strings.ToLower(strings.ReplaceAll(text, ",", ""))
	currency = stipendCurrency(t)

	if strings.Contains(t, "unpaid") {
		return 0, currency
	}
	m := reAmount.FindStringSubmatch(t)
	if m == nil {
		return 0, currency
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, currency
	}
	switch m[2] {
	case "k":
		v *= 1000
	case "lpa", "lakh", "l":
		v = v * 100000 / 12
	}
	return v, currency
}

func stipendCurrency(t string) string {
	switch {
	case strings.Contains(t, "₹") || reRupee.MatchString(t) || strings.Contains(t, "lpa"):
		return "INR"
	case strings.Contains(t, "€") || strings.Contains(t, "eur"):
		return "EUR"
	case strings.Contains(t, "£") || strings.Contains(t, "gbp"):
		return "GBP"
	case strings.Contains(t, "$") || strings.Contains(t, "usd"):
		return "USD"
	default:
		return ""
	}
}
