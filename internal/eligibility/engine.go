// Package eligibility decides whether a raw listing is a relevant, paid,
// in-season AI/ML internship and ranks the ones that are.
//
// Every check is total: text that cannot be interpreted is accepted, since a
// missed opportunity costs more than a noisy row.
package eligibility

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudflare/ahocorasick"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
)

const (
	ReasonRelevance    = "relevance"
	ReasonCompensation = "compensation"
	ReasonSeason       = "season"
)

var (
	reYear       = regexp.MustCompile(`\b(20\d{2})\b`)
	reSeasonWord = regexp.MustCompile(`\b(summer|may|june|july|aug|august)\b`)
)

type Options struct {
	Vocabulary Vocabulary
	// Zero thresholds fall back to DefaultMinStipendINR and DefaultHighStipend.
	MinStipendINR float64
	HighStipend   float64

	Now       func() time.Time
	ParseDate DateParser
}

// FromConfig extends the default vocabulary with the configured extras.
func FromConfig(f config.Filters) Options {
	v := DefaultVocabulary()
	v.Include = append(v.Include, f.ExtraInclude...)
	v.Exclude = append(v.Exclude, f.ExtraExclude...)
	v.InternshipPlatforms = append(v.InternshipPlatforms, f.InternshipPlatforms...)
	return Options{
		Vocabulary:    v,
		MinStipendINR: f.MinStipendINR,
		HighStipend:   f.HighStipend,
	}
}

type Engine struct {
	include *ahocorasick.Matcher
	exclude *ahocorasick.Matcher
	core    *ahocorasick.Matcher

	platforms map[string]bool
	minINR    float64
	high      float64
	now       func() time.Time
	parseDate DateParser
}

func New(opts Options) *Engine {
	v := opts.Vocabulary
	if len(v.Include) == 0 && len(v.Exclude) == 0 && len(v.Core) == 0 {
		v = DefaultVocabulary()
	}
	e := &Engine{
		include:   matcher(v.Include),
		exclude:   matcher(v.Exclude),
		core:      matcher(v.Core),
		platforms: map[string]bool{},
		minINR:    opts.MinStipendINR,
		high:      opts.HighStipend,
		now:       opts.Now,
		parseDate: opts.ParseDate,
	}
	for _, p := range v.InternshipPlatforms {
		e.platforms[strings.ToLower(strings.TrimSpace(p))] = true
	}
	if e.minINR <= 0 {
		e.minINR = DefaultMinStipendINR
	}
	if e.high <= 0 {
		e.high = DefaultHighStipend
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.parseDate == nil {
		e.parseDate = ParseFutureDate
	}
	return e
}

func matcher(terms []string) *ahocorasick.Matcher {
	var lower []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lower = append(lower, t)
		}
	}
	if len(lower) == 0 {
		return nil
	}
	return ahocorasick.NewStringMatcher(lower)
}

func hits(m *ahocorasick.Matcher, text string) bool {
	if m == nil || text == "" {
		return false
	}
	return len(m.Match([]byte(text))) > 0
}

func combined(title string, skills []string) string {
	parts := make([]string, 0, len(skills)+1)
	parts = append(parts, title)
	parts = append(parts, skills...)
	return strings.ToLower(strings.Join(parts, " "))
}

// IsRelevant rejects exclusion terms and references to past hiring years,
// requires "intern" outside internship-only platforms, and then needs at
// least one AI/ML subject term.
func (e *Engine) IsRelevant(title string, skills []string, source string) bool {
	text := combined(title, skills)

	if !strings.Contains(text, internWord) && !e.platforms[strings.ToLower(strings.TrimSpace(source))] {
		return false
	}
	if hits(e.exclude, text) {
		return false
	}

	target := TargetYear(e.now())
	for i := 1; i <= pastYears; i++ {
		if strings.Contains(text, strconv.Itoa(target-i)) {
			return false
		}
	}

	return hits(e.include, text)
}

func (e *Engine) IsAdequatelyPaid(stipendText string, stipendNumeric float64, domestic bool) bool {
	text := strings.ToLower(strings.TrimSpace(stipendText))
	if text == "" {
		return true
	}
	if strings.Contains(text, "unpaid") || stipendNumeric == 0 {
		return false
	}
	if domestic && stipendNumeric > 0 && stipendNumeric < e.minINR {
		return false
	}
	return true
}

func (e *Engine) IsInSeason(startWindow string) bool {
	text := strings.ToLower(strings.TrimSpace(startWindow))
	if flexibleStarts[text] {
		return true
	}

	now := e.now()
	target := TargetYear(now)
	targetStr := strconv.Itoa(target)

	offYear := false
	if m := reYear.FindStringSubmatch(text); m != nil && m[1] != targetStr && !strings.Contains(text, targetStr) {
		offYear = true
	}

	// "Summer", "starts in June" and friends pass unless pinned to another year
	if !offYear && reSeasonWord.MatchString(text) {
		return true
	}

	d, ok := e.parseDate(text, now)
	if !ok {
		return true
	}
	if d.Year() != target {
		return !offYear
	}
	start, end := seasonWindow(target, d.Location())
	return !d.Before(start) && d.Before(end)
}

func (e *Engine) Score(title string, skills []string, org domain.OrgKind, stipendNumeric float64) int {
	score := baseScore
	if hits(e.core, combined(title, skills)) {
		score += coreBonus
	}
	if org == domain.OrgInstitution || org == domain.OrgGovernment {
		score += orgBonus
	}
	if stipendNumeric > e.high {
		score += payBonus
	}
	return min(score, maxScore)
}

// Check runs relevance, compensation and season in that order. With paidOnly
// a listing that states no stipend at all is rejected as well.
func (e *Engine) Check(r domain.RawListing, paidOnly bool) (keep bool, reason string) {
	if !e.IsRelevant(r.Title, r.Skills, r.SourceName) {
		return false, ReasonRelevance
	}
	if paidOnly && strings.TrimSpace(r.StipendText) == "" {
		return false, ReasonCompensation
	}
	if !e.IsAdequatelyPaid(r.StipendText, r.StipendNumeric, r.IsDomestic()) {
		return false, ReasonCompensation
	}
	if !e.IsInSeason(r.StartWindowText) {
		return false, ReasonSeason
	}
	return true, ""
}

// Evaluate checks r and, when it passes, returns the scored listing.
func (e *Engine) Evaluate(r domain.RawListing, paidOnly bool) (domain.Listing, string, bool) {
	if keep, why := e.Check(r, paidOnly); !keep {
		return domain.Listing{}, why, false
	}
	score := e.Score(r.Title, r.Skills, r.OrgKind, r.StipendNumeric)
	return domain.Validate(r, score, e.now()), "", true
}
