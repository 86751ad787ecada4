package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
)

// early January: the target season is the same calendar year
var jan5 = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

var jul1 = time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(now time.Time) *Engine {
	return New(Options{Now: func() time.Time { return now }})
}

func TestTargetYear(t *testing.T) {
	assert.Equal(t, 2026, TargetYear(jan5))
	assert.Equal(t, 2026, TargetYear(time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2027, TargetYear(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)))
}

func TestIsRelevant(t *testing.T) {
	e := newTestEngine(jan5)

	tests := []struct {
		name   string
		title  string
		skills []string
		source string
		want   bool
	}{
		{"ml intern", "Machine Learning Intern", nil, "linkedin", true},
		{"skill carries subject", "Research Intern", []string{"PyTorch", "Computer Vision"}, "remotive", true},
		{"no intern word", "Machine Learning Engineer", nil, "linkedin", false},
		{"internship-only platform", "Machine Learning Engineer", nil, "internshala", true},
		{"platform match is case-insensitive", "NLP Trainee", nil, "Unstop", true},
		{"no subject", "Marketing Intern", []string{"excel"}, "linkedin", false},
		{"past hiring year", "Machine Learning Intern 2024", nil, "linkedin", false},
		{"target year is fine", "Machine Learning Intern 2026", nil, "linkedin", true},
		{"language requirement", "Computer Vision Intern (German speaking)", nil, "linkedin", false},
		{"empty input", "", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsRelevant(tt.title, tt.skills, tt.source))
		})
	}
}

func TestExclusionAlwaysWins(t *testing.T) {
	e := newTestEngine(jan5)

	assert.False(t, e.IsRelevant("Senior ML Intern, 5+ years", []string{"deep learning", "nlp"}, "linkedin"))

	for _, term := range DefaultVocabulary().Exclude {
		title := "Machine Learning AI Intern " + term
		assert.False(t, e.IsRelevant(title, []string{"computer vision"}, "internshala"), term)
		assert.False(t, e.IsRelevant("Machine Learning Intern", []string{term}, "linkedin"), term)
	}
}

func TestIsAdequatelyPaid(t *testing.T) {
	e := newTestEngine(jan5)

	tests := []struct {
		name     string
		text     string
		numeric  float64
		domestic bool
		want     bool
	}{
		{"below domestic floor", "₹4,999 /month", 4999, true, false},
		{"at domestic floor", "₹5,000 /month", 5000, true, true},
		{"unpaid text wins", "Unpaid", 10000, true, false},
		{"unpaid international", "unpaid", 3000, false, false},
		{"empty text", "", 0, true, true},
		{"whitespace text", "   ", 0, false, true},
		{"explicit zero", "0", 0, false, false},
		{"low but international", "$100", 100, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsAdequatelyPaid(tt.text, tt.numeric, tt.domestic))
		})
	}
}

func TestIsInSeason(t *testing.T) {
	e := newTestEngine(jan5)

	tests := []struct {
		text string
		want bool
	}{
		{"January 15", false},
		{"May 20", true},
		{"June 2024", false},
		{"Rolling", true},
		{"", true},
		{"  ASAP ", true},
		{"Summer 2026", true},
		{"starts june", true},
		{"September 10", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsInSeason(tt.text))
		})
	}
}

func TestIsInSeasonWindowEdges(t *testing.T) {
	var parsed time.Time
	e := New(Options{
		Now:       func() time.Time { return jan5 },
		ParseDate: func(string, time.Time) (time.Time, bool) { return parsed, true },
	})

	cases := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2026, time.May, 19, 23, 0, 0, 0, time.UTC), false},
		{time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), false},
		// other year without an explicit year in the text is kept
		{time.Date(2027, time.February, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, c := range cases {
		parsed = c.date
		assert.Equal(t, c.want, e.IsInSeason("some start date"), c.date.String())
	}
}

func TestIsInSeasonParseFailureAccepts(t *testing.T) {
	e := New(Options{
		Now:       func() time.Time { return jan5 },
		ParseDate: func(string, time.Time) (time.Time, bool) { return time.Time{}, false },
	})
	assert.True(t, e.IsInSeason("whenever the stars align"))
	assert.True(t, e.IsInSeason("sometime in 2019"))
}

func TestParseFutureDateFindsDateInsideText(t *testing.T) {
	d, ok := ParseFutureDate("Starts Jan 2027", jul1)
	require.True(t, ok)
	assert.Equal(t, 2027, d.Year())
	assert.Equal(t, time.January, d.Month())

	d, ok = ParseFutureDate("joining from 10 September 2027", jul1)
	require.True(t, ok)
	assert.Equal(t, time.September, d.Month())
	assert.Equal(t, 10, d.Day())

	_, ok = ParseFutureDate("whenever works", jul1)
	assert.False(t, ok)
}

func TestIsInSeasonPrefixedStartText(t *testing.T) {
	// after May the target season is next year
	e := newTestEngine(jul1)
	require.Equal(t, 2027, TargetYear(jul1))

	assert.False(t, e.IsInSeason("Starts Jan 2027"))
	assert.False(t, e.IsInSeason("Joining from 10 September 2027"))
	assert.True(t, e.IsInSeason("Starting May 25"))
	assert.True(t, e.IsInSeason("Starts 15 June 2027"))
}

func TestScore(t *testing.T) {
	e := newTestEngine(jan5)

	assert.Equal(t, 50, e.Score("ML Intern", nil, domain.OrgCompany, 0))
	assert.Equal(t, 70, e.Score("Research Intern", []string{"nlp", "deep learning"}, domain.OrgCompany, 0))
	assert.Equal(t, 65, e.Score("ML Intern", nil, domain.OrgGovernment, 0))
	assert.Equal(t, 65, e.Score("ML Intern", nil, domain.OrgInstitution, 0))
	assert.Equal(t, 50, e.Score("ML Intern", nil, domain.OrgCompany, 40000))
	assert.Equal(t, 65, e.Score("ML Intern", nil, domain.OrgCompany, 40001))
	assert.Equal(t, 100, e.Score("Research Scientist Intern", nil, domain.OrgInstitution, 90000))
}

func TestCheckOrderAndReasons(t *testing.T) {
	e := newTestEngine(jan5)

	good := domain.RawListing{
		Organization:    "IISc",
		Title:           "Computer Vision Research Intern",
		StipendText:     "₹20,000 /month",
		StipendNumeric:  20000,
		StipendCurrency: "INR",
		LocationKind:    domain.LocationIndia,
		SourceName:      "internshala",
		StartWindowText: "Immediately",
	}
	keep, why := e.Check(good, false)
	require.True(t, keep, why)

	bad := good
	bad.Title = "Senior Computer Vision Intern"
	bad.StipendText = "Unpaid"
	_, why = e.Check(bad, false)
	assert.Equal(t, ReasonRelevance, why)

	bad = good
	bad.StipendText = "₹2,000 /month"
	bad.StipendNumeric = 2000
	_, why = e.Check(bad, false)
	assert.Equal(t, ReasonCompensation, why)

	bad = good
	bad.StartWindowText = "June 2024"
	_, why = e.Check(bad, false)
	assert.Equal(t, ReasonSeason, why)

	unstated := good
	unstated.StipendText = ""
	unstated.StipendNumeric = 0
	keep, _ = e.Check(unstated, false)
	assert.True(t, keep)
	keep, why = e.Check(unstated, true)
	assert.False(t, keep)
	assert.Equal(t, ReasonCompensation, why)
}

func TestEvaluate(t *testing.T) {
	e := newTestEngine(jan5)
	l, _, ok := e.Evaluate(domain.RawListing{
		Organization: "DRDO",
		Title:        "AI Intern",
		OrgKind:      domain.OrgGovernment,
		SourceName:   "government",
	}, false)
	require.True(t, ok)
	assert.Equal(t, 65, l.MatchScore)
	assert.Equal(t, jan5, l.ScrapedAt)
	assert.Equal(t, domain.ListingID("DRDO", "AI Intern", "government", ""), l.ID)
}

func TestFromConfigExtendsVocabulary(t *testing.T) {
	f := config.Default().Filters
	f.ExtraInclude = []string{"graph neural"}
	f.ExtraExclude = []string{"unpaid trial"}
	f.MinStipendINR = 8000

	opts := FromConfig(f)
	opts.Now = func() time.Time { return jan5 }
	e := New(opts)

	assert.True(t, e.IsRelevant("Graph Neural Intern", nil, "linkedin"))
	assert.False(t, e.IsRelevant("Machine Learning Intern (unpaid trial)", nil, "linkedin"))
	assert.False(t, e.IsAdequatelyPaid("₹7,000", 7000, true))
}
