package domain

import "time"

type LocationKind string

const (
	LocationIndia         LocationKind = "India"
	LocationRemote        LocationKind = "Remote"
	LocationInternational LocationKind = "International"
)

type OrgKind string

const (
	OrgCompany     OrgKind = "Company"
	OrgInstitution OrgKind = "Institution"
	OrgGovernment  OrgKind = "Government"
)

type RoleKind string

const (
	RoleResearch RoleKind = "Research"
	RoleApplied  RoleKind = "Applied"
)

// RawListing is what a source adapter produces. Nothing in it is trusted yet.
type RawListing struct {
	Organization    string       `json:"company_name"`
	Title           string       `json:"role_title"`
	Skills          []string     `json:"required_skills"`
	StipendText     string       `json:"stipend"`
	StipendNumeric  float64      `json:"stipend_numeric"`
	StipendCurrency string       `json:"stipend_currency"`
	Location        string       `json:"location"`
	LocationKind    LocationKind `json:"location_type"`
	OrgKind         OrgKind      `json:"org_type"`
	RoleKind        RoleKind     `json:"role_type"`
	SourceName      string       `json:"source_platform"`
	StartWindowText string       `json:"start_window"`
	ApplyURL        string       `json:"apply_link"`
	Duration        string       `json:"duration"`
	Deadline        string       `json:"application_deadline"`
}

// IsDomestic reports whether the stipend rules for Indian listings apply.
func (r RawListing) IsDomestic() bool {
	if r.LocationKind == LocationIndia {
		return true
	}
	return r.StipendCurrency == "INR"
}

// Listing is a RawListing that passed every eligibility stage.
type Listing struct {
	RawListing

	ID         string    `json:"id"`
	MatchScore int       `json:"match_score"`
	IsNew      bool      `json:"is_new"`
	ScrapedAt  time.Time `json:"date_scraped"`
}

// Validate turns a raw listing into a Listing with its identity and score set.
func Validate(r RawListing, score int, scrapedAt time.Time) Listing {
	return Listing{
		RawListing: r,
		ID:         ListingID(r.Organization, r.Title, r.SourceName, r.ApplyURL),
		MatchScore: score,
		ScrapedAt:  scrapedAt,
	}
}
