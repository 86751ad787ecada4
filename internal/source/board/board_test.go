package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"
)

const naukriPage = `<html><body>
<div class="srp-jobtuple-wrapper">
  <a class="title" href="/job-listings-ml-intern-1">Machine Learning Research Intern</a>
  <a class="comp-name">Acme AI</a>
  <span class="locWdth">Bengaluru</span>
  <span class="expwdth">6 Months</span>
  <span class="ni-job-tuple-icon-srp-rupee"></span><span>₹ 25,000 /month</span>
  <ul class="tags-gt"><li>Python</li><li>PyTorch</li></ul>
</div>
<div class="srp-jobtuple-wrapper">
  <a class="comp-name">No Title Co</a>
</div>
<div class="srp-jobtuple-wrapper">
  <a class="title" href="https://elsewhere.test/job/2">Data Science Intern</a>
  <span class="locWdth">Remote</span>
</div>
</body></html>`

func testClient() *httputil.Client {
	c := httputil.NewClient(5*time.Second, nil, "test")
	c.Retry = httputil.RetryOpts{MaxAttempts: 1}
	return c
}

func naukriSite() Site {
	for _, p := range Presets() {
		if p.Site.Name == "Naukri" {
			return p.Site
		}
	}
	panic("naukri preset missing")
}

func TestParseCards(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(naukriPage))
	require.NoError(t, err)

	got := Parse(doc, naukriSite(), "https://www.naukri.com/ai-ml-internship-jobs-in-india")
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Acme AI", first.Organization)
	assert.Equal(t, "Machine Learning Research Intern", first.Title)
	assert.Equal(t, "https://www.naukri.com/job-listings-ml-intern-1", first.ApplyURL)
	assert.Equal(t, 25000.0, first.StipendNumeric)
	assert.Equal(t, "INR", first.StipendCurrency)
	assert.Equal(t, domain.LocationIndia, first.LocationKind)
	assert.Equal(t, domain.RoleResearch, first.RoleKind)
	assert.Equal(t, []string{"Python", "PyTorch"}, first.Skills)
	assert.Equal(t, "6 Months", first.Duration)
	assert.Equal(t, "Naukri", first.SourceName)

	second := got[1]
	assert.Equal(t, "Unknown", second.Organization)
	assert.Equal(t, "https://elsewhere.test/job/2", second.ApplyURL)
	assert.Equal(t, domain.LocationRemote, second.LocationKind)
	assert.Equal(t, domain.RoleApplied, second.RoleKind)
}

func TestAnchorCardUsesOwnHref(t *testing.T) {
	html := `<a class="item" href="/internship/42"><h3>Computer Vision Intern</h3><p>VisionCo</p>
	<span class="job_location">Work From Home</span><div class="cash_widget"><strong>10 K/Month</strong></div></a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	var unstop Site
	for _, p := range Presets() {
		if p.Family == "unstop" {
			unstop = p.Site
		}
	}
	got := Parse(doc, unstop, unstop.URLs[0])
	require.Len(t, got, 1)
	assert.Equal(t, "https://unstop.com/internship/42", got[0].ApplyURL)
	assert.Equal(t, "VisionCo", got[0].Organization)
	assert.Equal(t, 10000.0, got[0].StipendNumeric)
	assert.Equal(t, "INR", got[0].StipendCurrency)
	assert.Equal(t, domain.LocationRemote, got[0].LocationKind)
}

func TestFetchFollowsPagesUntilEmpty(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/list/":
			_, _ = w.Write([]byte(`<div class="card"><h3><a href="/a">AI Intern A</a></h3></div>`))
		case "/list/page-2/":
			_, _ = w.Write([]byte(`<div class="card"><h3><a href="/b">AI Intern B</a></h3></div>
			<div class="card"><h3><a href="/a">AI Intern A</a></h3></div>`))
		default:
			_, _ = w.Write([]byte(`<p>nothing here</p>`))
		}
	}))
	defer srv.Close()

	a := New(Site{
		Name:       "Paged",
		URLs:       []string{srv.URL + "/list/"},
		Card:       "div.card",
		Title:      "h3",
		MaxPages:   5,
		PageSuffix: "page-%d/",
	}, testClient())

	got, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, srv.URL+"/a", got[0].ApplyURL)
	assert.Equal(t, srv.URL+"/b", got[1].ApplyURL)
	assert.Equal(t, []string{"/list/", "/list/page-2/", "/list/page-3/"}, paths)
}

func TestFetchFailsOnlyWhenNothingLoaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<div class="card"><h3><a href="/x">AI Intern</a></h3></div>`))
	}))
	defer srv.Close()

	site := Site{Name: "Mixed", URLs: []string{srv.URL + "/down", srv.URL + "/up"}, Card: "div.card", Title: "h3"}
	got, err := New(site, testClient()).Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	site.URLs = []string{srv.URL + "/down"}
	_, err = New(site, testClient()).Fetch(context.Background(), domain.RunConfig{})
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestLeadPortalKeywordGate(t *testing.T) {
	body := "<html><body>Call for Machine Learning interns</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quiet" {
			_, _ = w.Write([]byte("<html><body>Tenders and notices</body></html>"))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	p := governmentPortal("CDAC Careers", srv.URL+"/loud", govKeywords)
	got, err := New(p.Site, testClient()).Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AI/ML Internship Opportunities (CDAC Careers)", got[0].Title)
	assert.Equal(t, "CDAC", got[0].Organization)
	assert.Equal(t, domain.OrgGovernment, got[0].OrgKind)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, srv.URL+"/loud", got[0].ApplyURL)

	p = governmentPortal("CDAC Careers", srv.URL+"/quiet", govKeywords)
	got, err = New(p.Site, testClient()).Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPresetFamilies(t *testing.T) {
	count := map[string]int{}
	for _, p := range Presets() {
		count[p.Family]++
		assert.NotEmpty(t, p.Site.URLs, p.Site.Name)
	}
	assert.Equal(t, 5, count["naukri"])
	assert.Equal(t, 1, count["internshala"])
	assert.Equal(t, 1, count["unstop"])
	assert.Equal(t, 3, count["government"])
	assert.Equal(t, 5, count["bigtech"])
	assert.Equal(t, 4, count["niche"])
	assert.Equal(t, 3, count["aggregators"])
}

func TestFromConfig(t *testing.T) {
	s := FromConfig(config.Board{Name: "Custom", URLs: []string{"https://x.test"}, Card: ".c", Title: "h2", LocationKind: "India"})
	assert.Equal(t, "INR", s.Currency)
	assert.Equal(t, domain.LocationIndia, s.LocationKind)
	assert.Nil(t, s.Lead)
}
