package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/source/httputil"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Jobs</title>
  <item>
    <title>Machine Learning Intern at DeepCo (Bengaluru)</title>
    <link>https://jobs.test/1</link>
    <description>Hybrid role in India</description>
  </item>
  <item>
    <title>VisionWorks: Computer Vision Research Intern</title>
    <guid>https://jobs.test/2</guid>
    <description>Fully Remote, worldwide</description>
  </item>
  <item>
    <title>No link here</title>
  </item>
  <item>
    <title>Data Science Intern - Numbers Inc - Berlin</title>
    <link>https://jobs.test/3</link>
  </item>
</channel>
</rss>`

func TestParse(t *testing.T) {
	got, err := Parse(context.Background(), Feed{Name: "Feed"}, sampleRSS)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Machine Learning Intern", got[0].Title)
	assert.Equal(t, "DeepCo", got[0].Organization)
	assert.Equal(t, domain.LocationIndia, got[0].LocationKind)
	assert.Equal(t, "INR", got[0].StipendCurrency)
	assert.Equal(t, "https://jobs.test/1", got[0].ApplyURL)

	assert.Equal(t, "Computer Vision Research Intern", got[1].Title)
	assert.Equal(t, "VisionWorks", got[1].Organization)
	assert.Equal(t, domain.LocationRemote, got[1].LocationKind)
	assert.Equal(t, domain.RoleResearch, got[1].RoleKind)
	assert.Equal(t, "https://jobs.test/2", got[1].ApplyURL)

	assert.Equal(t, "Numbers Inc", got[2].Organization)
	assert.Equal(t, domain.LocationInternational, got[2].LocationKind)
	assert.Equal(t, "USD", got[2].StipendCurrency)
	assert.Equal(t, "Feed", got[2].SourceName)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(context.Background(), Feed{Name: "Feed"}, "definitely not xml")
	assert.Error(t, err)
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		in, role, org string
	}{
		{"AI Intern at Lab (Remote)", "AI Intern", "Lab"},
		{"Acme: NLP Intern", "NLP Intern", "Acme"},
		{"DL Intern - Corp - Pune", "DL Intern", "Corp"},
		{"Just a title", "Just a title", ""},
	}
	for _, tc := range tests {
		role, org := SplitTitle(tc.in)
		assert.Equal(t, tc.role, role, tc.in)
		assert.Equal(t, tc.org, org, tc.in)
	}
}

func TestFetchUsesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	c := httputil.NewClient(5*time.Second, nil, "test")
	a := New(Feed{Name: "Local", URL: srv.URL, LocationKind: domain.LocationRemote}, c)
	assert.Equal(t, "Local", a.Name())

	got, err := a.Fetch(context.Background(), domain.RunConfig{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, domain.LocationRemote, got[2].LocationKind)
}

func TestFetchPropagatesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := httputil.NewClient(5*time.Second, nil, "test")
	_, err := New(Feed{Name: "Local", URL: srv.URL}, c).Fetch(context.Background(), domain.RunConfig{})
	assert.Error(t, err)
}
