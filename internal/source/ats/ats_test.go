package ats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"
)

func testClient() *httputil.Client {
	c := httputil.NewClient(5*time.Second, nil, "test")
	c.Retry = httputil.RetryOpts{MaxAttempts: 1}
	return c
}

func newATSServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/acme", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/acme/jobs/101">Machine Learning Intern, Summer</a>
			<a href="/acme/jobs/102">Staff Engineer</a>
			<a href="/acme/jobs/103?gh_src=x">Apply now</a>
			<a href="/acme/jobs/101">Machine Learning Intern, Summer</a>
			<a href="https://elsewhere.test/jobs/999">Research Intern</a>
		</body></html>`))
	})
	mux.HandleFunc("/acme/jobs/101", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<h1>Machine Learning Intern, Summer</h1><div class="location">Bengaluru, India</div>`))
	})
	mux.HandleFunc("/acme/jobs/103", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<h1>Research Scientist Intern</h1><div class="location">Remote - US</div>`))
	})
	mux.HandleFunc("/v0/postings/acme", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("mode"))
		_, _ = w.Write([]byte(`[
			{"id":"a1","text":"NLP Intern","hostedUrl":"https://jobs.lever.co/acme/a1","categories":{"location":"London","team":"Research","commitment":"Internship"}},
			{"id":"a2","text":"Senior Backend Engineer","hostedUrl":"https://jobs.lever.co/acme/a2","categories":{"commitment":"Full-time"}},
			{"id":"a3","text":"Applied Scientist","hostedUrl":"https://jobs.lever.co/acme/a3","categories":{"location":"Remote","commitment":"Intern"}},
			{"id":"","text":"Broken","hostedUrl":""}
		]`))
	})
	mux.HandleFunc("/v1/companies/acme/postings", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			_, _ = w.Write([]byte(`{"totalFound":3,"content":[
				{"id":"s1","name":"Computer Vision Intern","location":{"city":"Pune","country":"India"},"department":{"label":"Perception"}},
				{"id":"s2","name":"Sales Manager","location":{"city":"Pune","country":"India"}},
				{"uuid":"s3","name":"Research Assistant","location":{"remote":true},"typeOfEmployment":{"label":"Internship"}}
			]}`))
		default:
			t.Errorf("unexpected page %s", r.URL.RawQuery)
			_, _ = w.Write([]byte(`{"content":[]}`))
		}
	})
	mux.HandleFunc("/acme/careers", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "CALYPSO_CSRF_TOKEN", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`<html>careers</html>`))
	})
	mux.HandleFunc("/wday/cxs/127/careers/jobs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "tok", r.Header.Get("x-calypso-csrf-token"))
		var body wdRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "intern", body.SearchText)
		if body.Offset > 0 {
			_, _ = w.Write([]byte(`{"total":2,"jobPostings":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"total":2,"jobPostings":[
			{"title":"Deep Learning Intern","externalPath":"/job/Bangalore/Deep-Learning-Intern_JR1","locationsText":"Bangalore, India"},
			{"title":"Director, Sales","externalPath":"/job/US/Director_JR2","locationsText":"Santa Clara"}
		]}`))
	})
	mux.HandleFunc("/blocked/careers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/v0/postings/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func TestGreenhouseFetch(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	g := NewGreenhouse([]Company{{Slug: "acme", Name: "Acme"}}, testClient(), nil)
	g.BaseURL = srv.URL

	got, err := g.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Machine Learning Intern, Summer", got[0].Title)
	assert.Equal(t, "Acme", got[0].Organization)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, srv.URL+"/acme/jobs/101", got[0].ApplyURL)

	assert.Equal(t, "Research Scientist Intern", got[1].Title)
	assert.Equal(t, domain.LocationRemote, got[1].LocationKind)
	assert.Equal(t, domain.RoleResearch, got[1].RoleKind)
}

func TestGreenhouseAllBoardsDown(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	g := NewGreenhouse([]Company{{Slug: "missing", Name: "Missing"}}, testClient(), nil)
	g.BaseURL = srv.URL
	_, err := g.Fetch(context.Background(), domain.RunConfig{})
	assert.Error(t, err)
}

func TestLeverFetch(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	l := NewLever([]Company{{Slug: "acme", Name: "Acme"}, {Slug: "broken", Name: "Broken"}}, testClient(), nil)
	l.BaseURL = srv.URL

	got, err := l.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "NLP Intern", got[0].Title)
	assert.Equal(t, []string{"Research"}, got[0].Skills)
	assert.Equal(t, domain.LocationInternational, got[0].LocationKind)
	assert.Equal(t, "Lever", got[0].SourceName)

	assert.Equal(t, "Applied Scientist", got[1].Title)
	assert.Equal(t, domain.LocationRemote, got[1].LocationKind)
	assert.Equal(t, domain.RoleResearch, got[1].RoleKind)
}

func TestLeverAllCompaniesFail(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	l := NewLever([]Company{{Slug: "broken", Name: "Broken"}}, testClient(), nil)
	l.BaseURL = srv.URL

	_, err := l.Fetch(context.Background(), domain.RunConfig{})
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestSmartRecruitersFetch(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	s := NewSmartRecruiters([]Company{{Slug: "acme", Name: "Acme"}}, testClient(), nil)
	s.BaseURL = srv.URL

	got, err := s.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Computer Vision Intern", got[0].Title)
	assert.Equal(t, []string{"Perception"}, got[0].Skills)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, "https://jobs.smartrecruiters.com/acme/s1", got[0].ApplyURL)

	assert.Equal(t, "Research Assistant", got[1].Title)
	assert.Equal(t, domain.LocationRemote, got[1].LocationKind)
	assert.Equal(t, "SmartRecruiters", got[1].SourceName)
}

func TestSmartRecruitersAllCompaniesFail(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	s := NewSmartRecruiters([]Company{{Slug: "nobody", Name: "Nobody"}}, testClient(), nil)
	s.BaseURL = srv.URL
	_, err := s.Fetch(context.Background(), domain.RunConfig{})
	assert.Error(t, err)
}

func TestWorkdayFetch(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	board := srv.URL + "/acme/careers"
	w := NewWorkday([]Company{{Slug: board, Name: "Acme"}}, testClient(), nil)

	got, err := w.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Deep Learning Intern", got[0].Title)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, board+"/job/Bangalore/Deep-Learning-Intern_JR1", got[0].ApplyURL)
	assert.Equal(t, "Workday", got[0].SourceName)
}

func TestWorkdayBlockedHostIsSkipped(t *testing.T) {
	srv := newATSServer(t)
	defer srv.Close()

	w := NewWorkday([]Company{
		{Slug: srv.URL + "/blocked/careers", Name: "Blocked"},
		{Slug: srv.URL + "/acme/careers", Name: "Acme"},
	}, testClient(), nil)

	_, err := w.Fetch(context.Background(), domain.RunConfig{})
	require.ErrorIs(t, err, ErrWorkdayBlocked)
}

func TestParseWorkdayBoard(t *testing.T) {
	b, err := parseWorkdayBoard("https://nvidia.wd5.myworkdayjobs.com/en-us/NVIDIAExternalCareerSite")
	require.NoError(t, err)
	assert.Equal(t, "nvidia", b.Tenant)
	assert.Equal(t, "NVIDIAExternalCareerSite", b.Site)
	assert.Equal(t, "en-US", b.Locale)
	assert.Equal(t, "https://nvidia.wd5.myworkdayjobs.com/wday/cxs/nvidia/NVIDIAExternalCareerSite/jobs?locale=en-US", b.jobsEndpoint())

	_, err = parseWorkdayBoard("https://localhost/")
	assert.Error(t, err)
}

func TestExtractJobID(t *testing.T) {
	assert.Equal(t, "4021", extractJobID("/acme/jobs/4021"))
	assert.Equal(t, "", extractJobID("/acme/careers"))
}
