package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	RegionIndia     = "india"
	RegionUSA       = "usa"
	RegionEurope    = "europe"
	RegionRemote    = "remote"
	RegionWorldwide = "worldwide"
)

var AllRegions = []string{RegionIndia, RegionUSA, RegionEurope, RegionRemote, RegionWorldwide}

var AllTopics = []string{"ml", "ai", "dl", "ds", "cv", "nlp", "research", "llm"}

// ErrInvalidRunConfig is returned for regions or topics outside AllRegions
// and AllTopics.
var ErrInvalidRunConfig = errors.New("invalid run config")

// RunConfig is the declarative input of one pass. Empty sets mean "all".
type RunConfig struct {
	Regions  []string `json:"regions" koanf:"regions" yaml:"regions"`
	Topics   []string `json:"topics" koanf:"topics" yaml:"topics"`
	Sources  []string `json:"sources" koanf:"sources" yaml:"sources"`
	PaidOnly bool     `json:"paid_only" koanf:"paid_only" yaml:"paid_only"`
}

// Normalized lowercases and dedups every set, expanding empty sets to the full vocabulary.
// Sources are left empty when unset so the registry can substitute its own families.
func (c RunConfig) Normalized() RunConfig {
	out := RunConfig{
		Regions:  normSet(c.Regions),
		Topics:   normSet(c.Topics),
		Sources:  normSet(c.Sources),
		PaidOnly: c.PaidOnly,
	}
	if len(out.Regions) == 0 {
		out.Regions = slices.Clone(AllRegions)
	}
	if len(out.Topics) == 0 {
		out.Topics = slices.Clone(AllTopics)
	}
	for i, t := range out.Topics {
		if t == "genai" || t == "llm/genai" {
			out.Topics[i] = "llm"
		}
	}
	out.Topics = normSet(out.Topics)
	return out
}

// Validate reports every region and topic that no query or adapter knows.
// Topic aliases ("genai", "llm/genai") are accepted.
func (c RunConfig) Validate() error {
	n := c.Normalized()
	var problems []string
	if bad := unknown(n.Regions, AllRegions); len(bad) > 0 {
		problems = append(problems, fmt.Sprintf("unknown regions: %s (known: %s)",
			strings.Join(bad, ", "), strings.Join(AllRegions, ", ")))
	}
	if bad := unknown(n.Topics, AllTopics); len(bad) > 0 {
		problems = append(problems, fmt.Sprintf("unknown topics: %s (known: %s)",
			strings.Join(bad, ", "), strings.Join(AllTopics, ", ")))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidRunConfig, strings.Join(problems, "; "))
}

func unknown(xs, known []string) []string {
	var out []string
	for _, x := range xs {
		if !slices.Contains(known, x) {
			out = append(out, x)
		}
	}
	return out
}

func (c RunConfig) HasRegion(r string) bool { return slices.Contains(c.Regions, r) }

func (c RunConfig) HasAnyRegion(rs ...string) bool {
	for _, r := range rs {
		if c.HasRegion(r) {
			return true
		}
	}
	return false
}

func (c RunConfig) HasTopic(t string) bool { return slices.Contains(c.Topics, t) }

func normSet(xs []string) []string {
	var out []string
	for _, x := range xs {
		x = strings.ToLower(strings.TrimSpace(x))
		if x == "" || slices.Contains(out, x) {
			continue
		}
		out = append(out, x)
	}
	return out
}

// RunRecord is the ledger entry for one calendar day.
type RunRecord struct {
	Date          string   `json:"date"`
	NewListings   int      `json:"new_listings"`
	FailedSources []string `json:"sources_failed"`
}

// Merge folds another pass of the same day into r. Counts add, failures union.
func (r RunRecord) Merge(added int, failed []string) RunRecord {
	r.NewListings += added
	set := slices.Clone(r.FailedSources)
	for _, f := range failed {
		if !slices.Contains(set, f) {
			set = append(set, f)
		}
	}
	slices.Sort(set)
	if set == nil {
		set = []string{}
	}
	r.FailedSources = set
	return r
}

// MergeHistory returns history with the pass recorded under date.
func MergeHistory(history []RunRecord, date string, added int, failed []string) []RunRecord {
	out := slices.Clone(history)
	for i := range out {
		if out[i].Date == date {
			out[i] = out[i].Merge(added, failed)
			return out
		}
	}
	return append(out, RunRecord{Date: date}.Merge(added, failed))
}
