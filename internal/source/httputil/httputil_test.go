package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/domain"
)

func TestParseStipend(t *testing.T) {
	tests := []struct {
		in       string
		amount   float64
		currency string
	}{
		{"₹ 10,000 /month", 10000, "INR"},
		{"10 K/Month", 10000, ""},
		{"Rs. 4999", 4999, "INR"},
		{"$2,000 per month", 2000, "USD"},
		{"€1.5k", 1500, "EUR"},
		{"3 LPA", 25000, "INR"},
		{"Unpaid", 0, ""},
		{"Performance based", 0, ""},
		{"", 0, ""},
		{"40 hours/week", 40, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, cur := ParseStipend(tt.in)
			assert.InDelta(t, tt.amount, amount, 0.01)
			assert.Equal(t, tt.currency, cur)
		})
	}
}

func TestInferLocationKind(t *testing.T) {
	assert.Equal(t, domain.LocationRemote, InferLocationKind("Work From Home", domain.LocationIndia))
	assert.Equal(t, domain.LocationIndia, InferLocationKind("Bengaluru, Karnataka", ""))
	assert.Equal(t, domain.LocationInternational, InferLocationKind("Zurich", ""))
	assert.Equal(t, domain.LocationIndia, InferLocationKind("", domain.LocationIndia))
	assert.Equal(t, domain.LocationIndia, InferLocationKind("Onsite", domain.LocationIndia))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "a b", CleanText("  a \n b "))
	assert.Equal(t, "Pune, Mumbai", NormalizeLocation("Location: Pune, pune , Mumbai"))
	assert.Equal(t, domain.RoleResearch, RoleKindFor("Research Scientist Intern"))
	assert.Equal(t, domain.RoleApplied, RoleKindFor("ML Intern"))
	assert.Equal(t, "https://www.shine.com/jobs/1", AbsURL("https://www.shine.com", "/jobs/1"))
	assert.Equal(t, "https://x.test/a", AbsURL("https://www.shine.com", "https://x.test/a"))
	assert.Equal(t, "https://jobs.test/view?id=7", CanonicalizeURL("HTTPS://Jobs.test/view?utm_source=mail&id=7#top"))
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html><h1>ok</h1></html>"))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, NewHostLimiter(100, 10), "test-agent")
	c.Retry = RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	doc, err := c.Document(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("h1").Text())
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, nil, "")
	c.Retry = RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}

	_, err := c.Get(context.Background(), srv.URL)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestHostKey(t *testing.T) {
	assert.Equal(t, "example.com", hostKey("WWW.Example.com:443"))
	assert.Equal(t, "127.0.0.1", hostKey("127.0.0.1:8080"))
	assert.Equal(t, "[::1]", hostKey("[::1]"))
}

func TestHostLimiterSlowHost(t *testing.T) {
	hl := NewHostLimiter(1000, 5)
	hl.Slow("slow.test", 1)

	ctx := context.Background()
	fast, slow := hl.forHost("fast.test"), hl.forHost("slow.test")
	assert.Equal(t, 5, fast.Burst())
	assert.Equal(t, 1, slow.Burst())
	assert.InDelta(t, 1.0, float64(slow.Limit()), 1e-9)

	require.NoError(t, hl.WaitURL(ctx, "https://www.slow.test/a"))
	assert.False(t, slow.Allow(), "first wait spent the only token")

	var nilLimiter *HostLimiter
	assert.NoError(t, nilLimiter.WaitURL(ctx, "https://x.test"))
	nilLimiter.Slow("x.test", 1)
}
