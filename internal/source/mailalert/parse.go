package mailalert

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"

	"github.com/PuerkitoBio/goquery"
)

const maxPart = 6 << 20

// Body is the decoded text of a message.
type Body struct {
	Subject string
	Plain   string
	HTML    string
}

// ParseRFC822 decodes headers and picks the largest text/plain and text/html
// parts. A message that is not valid RFC822 is treated as plain text.
func ParseRFC822(raw []byte, fallbackSubject string) Body {
	if len(raw) == 0 {
		return Body{Subject: fallbackSubject}
	}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return Body{Subject: fallbackSubject, Plain: string(raw)}
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	if subject == "" {
		subject = fallbackSubject
	}
	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 25<<20))

	plain, html := textParts(msg.Header, bodyRaw)
	if plain == "" && html == "" {
		plain = string(bodyRaw)
	}
	return Body{Subject: subject, Plain: plain, HTML: html}
}

func textParts(h mail.Header, body []byte) (plain, html string) {
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))
	mediaType, params, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return string(decodeTransfer(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	if !strings.HasPrefix(mediaType, "multipart/") {
		s := string(decodeTransfer(body, cte))
		if strings.HasPrefix(mediaType, "text/html") {
			return "", s
		}
		return s, ""
	}

	boundary := params["boundary"]
	if boundary == "" {
		return string(decodeTransfer(body, cte)), ""
	}
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		p, err := mr.NextPart()
		if err != nil {
			break
		}
		pMedia, _, _ := mime.ParseMediaType(p.Header.Get("Content-Type"))
		pMedia = strings.ToLower(pMedia)
		b, _ := io.ReadAll(io.LimitReader(p, 20<<20))
		b = decodeTransfer(b, strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding"))))

		switch {
		case strings.HasPrefix(pMedia, "multipart/"):
			pl, ht := textParts(mail.Header(p.Header), b)
			if len(pl) > len(plain) {
				plain = pl
			}
			if len(ht) > len(html) {
				html = ht
			}
		case strings.HasPrefix(pMedia, "text/plain"):
			if len(b) > len(plain) {
				plain = string(b)
			}
		case strings.HasPrefix(pMedia, "text/html"):
			if len(b) > len(html) {
				html = string(b)
			}
		}
	}
	return plain, html
}

func decodeTransfer(b []byte, cte string) []byte {
	var r io.Reader
	switch cte {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
	case "quoted-printable":
		r = quotedprintable.NewReader(bytes.NewReader(b))
	default:
		return b
	}
	out, _ := io.ReadAll(io.LimitReader(r, maxPart))
	return out
}

func decodeHeader(s string) string {
	s = strings.TrimSpace(s)
	out, err := new(mime.WordDecoder).DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

var (
	reLinkedInJob = regexp.MustCompile(`/jobs/view/(\d+)`)
	reURL         = regexp.MustCompile(`https?://[^\s<>"']+`)
)

// Layout recognises one family of alert emails.
type Layout struct {
	Name string
	// Match reports whether href points at a job in this layout.
	Match func(href string) bool
	// Location defaults the location kind of jobs from this layout.
	Location domain.LocationKind
	Currency string
}

var layouts = []Layout{
	{
		Name: "LinkedIn Alerts",
		Match: func(h string) bool {
			h = strings.ToLower(h)
			return strings.Contains(h, "linkedin.com") && strings.Contains(h, "/jobs/view")
		},
		Location: domain.LocationInternational,
	},
	{
		Name: "Internshala Alerts",
		Match: func(h string) bool {
			h = strings.ToLower(h)
			return strings.Contains(h, "internshala.com") && strings.Contains(h, "/internship/detail")
		},
		Location: domain.LocationIndia,
		Currency: "INR",
	},
}

// ParseAlert extracts job cards from an alert body. Anchors that point at the
// same job are merged so a logo link seen first does not hide the title.
func ParseAlert(b Body) []domain.RawListing {
	if strings.TrimSpace(b.HTML) == "" {
		return parsePlain(b)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.HTML))
	if err != nil {
		return nil
	}

	type card struct {
		layout   Layout
		title    string
		org      string
		location string
		stipend  string
		href     string
	}
	var order []string
	byKey := map[string]*card{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := unwrap(strings.TrimSpace(a.AttrOr("href", "")))
		layout, ok := layoutFor(href)
		if !ok {
			return
		}
		key := jobKey(href)
		c, ok := byKey[key]
		if !ok {
			c = &card{layout: layout, href: href}
			byKey[key] = c
			order = append(order, key)
		}

		if t := cleanTitle(a.Text()); !strings.Contains(t, " · ") && len(t) > len(c.title) {
			c.title = t
		}

		container := a.Closest("table")
		if container.Length() == 0 {
			container = a.Parent()
		}
		container.Find("p, span").Each(func(_ int, p *goquery.Selection) {
			t := httputil.CleanText(p.Text())
			if c.org == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				c.org = strings.TrimSpace(parts[0])
				c.location = strings.TrimSpace(parts[1])
			}
			if c.stipend == "" && strings.Contains(strings.ToLower(t), "stipend") {
				c.stipend = strings.TrimSpace(strings.TrimPrefix(t, "Stipend:"))
			}
		})
	})

	var out []domain.RawListing
	for _, k := range order {
		c := byKey[k]
		if c.title == "" {
			continue
		}
		out = append(out, build(c.layout, c.title, c.org, c.location, c.stipend, c.href))
	}
	return out
}

// parsePlain falls back to naked URLs in a text body, using the subject as the title.
func parsePlain(b Body) []domain.RawListing {
	var out []domain.RawListing
	seen := map[string]bool{}
	title := strings.TrimSpace(b.Subject)
	for _, u := range reURL.FindAllString(b.Plain, -1) {
		u = strings.TrimRight(u, ".,);:]\"'")
		layout, ok := layoutFor(u)
		if !ok || seen[jobKey(u)] || title == "" {
			continue
		}
		seen[jobKey(u)] = true
		out = append(out, build(layout, title, "", "", "", u))
	}
	return out
}

func build(l Layout, title, org, location, stipend, href string) domain.RawListing {
	if org == "" {
		org = "Unknown"
	}
	amount, currency := httputil.ParseStipend(stipend)
	if currency == "" {
		currency = l.Currency
	}
	return domain.RawListing{
		Organization:    org,
		Title:           title,
		StipendText:     stipend,
		StipendNumeric:  amount,
		StipendCurrency: currency,
		Location:        location,
		LocationKind:    httputil.InferLocationKind(location, l.Location),
		OrgKind:         domain.OrgCompany,
		RoleKind:        httputil.RoleKindFor(title),
		SourceName:      l.Name,
		ApplyURL:        httputil.CanonicalizeURL(href),
	}
}

func layoutFor(href string) (Layout, bool) {
	for _, l := range layouts {
		if l.Match(href) {
			return l, true
		}
	}
	return Layout{}, false
}

func jobKey(href string) string {
	if m := reLinkedInJob.FindStringSubmatch(href); len(m) == 2 {
		return "linkedin:" + m[1]
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return strings.ToLower(u.Host) + u.Path
}

// unwrap follows tracking wrappers that carry the real target in a url or q parameter.
func unwrap(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	for _, p := range []string{"url", "q"} {
		if raw := u.Query().Get(p); raw != "" {
			if t, err := url.Parse(raw); err == nil && t.Host != "" {
				return t.String()
			}
		}
	}
	return href
}

var titleJunk = []string{"Actively recruiting", "Easy Apply", "Promoted", "View job", "Apply now"}

func cleanTitle(s string) string {
	s = httputil.CleanText(s)
	for _, j := range titleJunk {
		s = strings.TrimSpace(strings.ReplaceAll(s, j, ""))
	}
	low := strings.ToLower(s)
	if strings.Contains(low, "alumni") || strings.Contains(low, "connections") ||
		strings.Contains(low, "applicants") || strings.Contains(low, "unsubscribe") {
		return ""
	}
	return httputil.CleanText(s)
}
