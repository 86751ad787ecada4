package search

import (
	"slices"
	"strconv"
	"strings"

	"internhunt-engine/internal/domain"
)

// Query is one search-engine dork. {year} in Text is replaced with the
// current year at fetch time.
type Query struct {
	Text     string
	Label    string
	OrgKind  domain.OrgKind
	RoleKind domain.RoleKind
	Location string
	Kind     domain.LocationKind

	// Regions narrows an international query to specific regions; when empty
	// the location kind decides.
	Regions []string
	// Topics gates topic-specific queries; empty means the query always runs.
	Topics []string
}

func (q Query) render(year int) string {
	return strings.ReplaceAll(q.Text, "{year}", strconv.Itoa(year))
}

// Active keeps the queries relevant to cfg. India queries need "india",
// international queries need worldwide, usa or europe, and remote queries are
// dropped only when india is the sole requested region.
func Active(queries []Query, cfg domain.RunConfig) []Query {
	cfg = cfg.Normalized()
	indiaOnly := slices.Equal(cfg.Regions, []string{domain.RegionIndia})

	var out []Query
	for _, q := range queries {
		switch q.Kind {
		case domain.LocationIndia:
			if !cfg.HasRegion(domain.RegionIndia) {
				continue
			}
		case domain.LocationInternational:
			regions := q.Regions
			if len(regions) == 0 {
				regions = []string{domain.RegionWorldwide, domain.RegionUSA, domain.RegionEurope}
			}
			if !cfg.HasAnyRegion(regions...) {
				continue
			}
		case domain.LocationRemote:
			if !cfg.HasRegion(domain.RegionRemote) && indiaOnly {
				continue
			}
		}
		if len(q.Topics) > 0 && !slices.ContainsFunc(q.Topics, cfg.HasTopic) {
			continue
		}
		out = append(out, q)
	}
	return out
}

var (
	usa    = []string{domain.RegionUSA, domain.RegionWorldwide}
	europe = []string{domain.RegionEurope, domain.RegionWorldwide}
)

// DorkQueries back the "search" family: site-restricted searches for boards
// and institutions that do not expose a scrapable listing page.
var DorkQueries = []Query{
	{
		Text:    `(site:.edu OR site:.ac.uk) "artificial intelligence" OR "machine learning" "summer research internship" {year}`,
		Label:   "Global Edu",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch,
		Location: "Global / Remote", Kind: domain.LocationInternational,
	},
	{
		Text:    `(site:.ac.in OR site:.edu.in OR site:.res.in) "artificial intelligence" OR "machine learning" "internship" {year}`,
		Label:   "India Edu",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch,
		Location: "India", Kind: domain.LocationIndia,
	},
	{
		Text:    `(site:boards.greenhouse.io OR site:jobs.lever.co) "machine learning" OR "ai" "intern" OR "internship" {year}`,
		Label:   "ATS Boards",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied,
		Location: "Global", Kind: domain.LocationInternational,
	},
	{
		Text:    `site:.in (intitle:careers OR intitle:jobs) "machine learning intern" OR "AI intern" Bangalore OR Hyderabad OR Pune OR Remote`,
		Label:   "India Tech",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied,
		Location: "India", Kind: domain.LocationIndia,
	},
	{
		Text:    `(site:.gov.in OR site:.nic.in) "machine learning" OR "artificial intelligence" "internship" {year}`,
		Label:   "Govt India",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch,
		Location: "India", Kind: domain.LocationIndia,
	},
	{
		Text:    `(site:.org OR site:.io) "machine learning" OR "artificial intelligence" "internship" OR "summer of code" {year}`,
		Label:   "Open Source",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleApplied,
		Location: "Global / Remote", Kind: domain.LocationRemote,
	},
	{
		Text:    `(site:naukri.com/job-listings OR site:foundit.in OR site:cutshort.io) "machine learning" OR "artificial intelligence" "intern" OR "internship" {year}`,
		Label:   "India Boards (Dork)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied,
		Location: "India", Kind: domain.LocationIndia,
	},
	{
		Text:    `(site:linkedin.com/jobs/view OR site:indeed.com/viewjob) "machine learning" OR "artificial intelligence" "intern" OR "internship" {year}`,
		Label:   "Global Boards (Dork)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied,
		Location: "Global", Kind: domain.LocationInternational,
	},
}

// UniversityQueries back the "universities" family. They are kept short;
// the HTML endpoint rejects long dorks.
var UniversityQueries = []Query{
	{Text: "AI ML deep learning research internship {year} university stipend", Label: "Global University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational},
	{Text: "machine learning summer internship {year} fellowship apply university", Label: "Global University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational},
	{Text: "IIT IISc IIIT research internship AI machine learning {year} india apply", Label: "Indian University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "India", Kind: domain.LocationIndia},
	{Text: "data science ML internship India {year} stipend DRDO ISRO TIFR apply", Label: "Indian R&D Lab",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch, Location: "India", Kind: domain.LocationIndia,
		Topics: []string{"ds", "ml"}},
	{Text: "PMRF PM research fellowship AI machine learning {year} India apply", Label: "India Government Fellowship",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch, Location: "India", Kind: domain.LocationIndia},
	{Text: "Aalto KTH Chalmers ETH EPFL TU Munich AI research internship {year}", Label: "European University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Europe", Kind: domain.LocationInternational, Regions: europe},
	{Text: "DAAD Max Planck Inria AI ML research internship Europe {year} summer", Label: "European Research Institute",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Europe", Kind: domain.LocationInternational, Regions: europe},
	{Text: "Oxford Cambridge UCL Imperial Edinburgh AI ML research intern {year}", Label: "UK University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "United Kingdom", Kind: domain.LocationInternational, Regions: europe},
	{Text: "CERN ESA European Space Agency AI ML internship trainee {year} apply", Label: "European Science Agency",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch, Location: "Europe", Kind: domain.LocationInternational, Regions: europe},
	{Text: "MIT Stanford CMU Berkeley AI ML summer research {year} UROP REU internship", Label: "US University (Top)",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "USA", Kind: domain.LocationInternational, Regions: usa},
	{Text: "NSF REU machine learning artificial intelligence {year} summer program", Label: "US National Science Foundation (REU)",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch, Location: "USA", Kind: domain.LocationInternational, Regions: usa},
	{Text: "Oak Ridge Argonne PNNL Sandia AI machine learning internship {year} SULI", Label: "US National Lab",
		OrgKind: domain.OrgGovernment, RoleKind: domain.RoleResearch, Location: "USA", Kind: domain.LocationInternational, Regions: usa},
	{Text: "DeepMind OpenAI Anthropic Google Meta AI research intern {year} apply", Label: "Global AI Lab (US)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleResearch, Location: "USA / Remote", Kind: domain.LocationInternational, Regions: usa},
	{Text: "Mitacs Globalink Vector Institute Mila AI ML research internship {year}", Label: "Canadian Program",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Canada", Kind: domain.LocationInternational},
	{Text: "Tsinghua Peking NUS AI machine learning research internship {year}", Label: "Asia University (China/SG)",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "China / Singapore", Kind: domain.LocationInternational},
	{Text: "RIKEN Kaist NII Samsung NAVER LG AI research internship {year} apply", Label: "East Asia Lab/University",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "East Asia", Kind: domain.LocationInternational},
	{Text: "CSIRO Data61 ANU Melbourne AI ML research internship {year} apply", Label: "Australia University/Lab",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Australia", Kind: domain.LocationInternational},
	{Text: "KAUST MBZUAI Mohamed bin Zayed AI research internship {year} apply", Label: "Middle East AI Lab",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "UAE / Saudi Arabia", Kind: domain.LocationInternational},
	{Text: "computer vision NLP generative AI research internship {year} stipend funded apply", Label: "Global Research (CV/NLP)",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"cv", "nlp", "llm"}},
	{Text: "reinforcement learning RL research intern {year} lab university funded apply", Label: "RL Research Intern",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"ml", "research"}},
	{Text: "speech recognition audio AI research internship {year} lab apply", Label: "Speech AI Lab",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"nlp", "dl"}},
	{Text: "generative AI LLM large language model research internship {year} apply", Label: "LLM/GenAI Research",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"llm"}},
	{Text: "bioinformatics computational biology AI ML internship {year} PhD application", Label: "Bio/ML Internship",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"ml", "ds"}},
	{Text: "site:boards.greenhouse.io machine learning intern {year}", Label: "ATS Board (Greenhouse)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied, Location: "Global", Kind: domain.LocationInternational},
	{Text: "site:jobs.lever.co AI machine learning research intern {year}", Label: "ATS Board (Lever)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied, Location: "Global", Kind: domain.LocationInternational},
	{Text: "site:wellfound.com machine learning intern {year}", Label: "Startup Board (Wellfound)",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied, Location: "Remote", Kind: domain.LocationRemote},
	{Text: "site:jobs.ycombinator.com AI ML intern {year}", Label: "YC Job Board",
		OrgKind: domain.OrgCompany, RoleKind: domain.RoleApplied, Location: "USA / Remote", Kind: domain.LocationRemote},
	{Text: "Hugging Face Mozilla Mozilla.ai AI open source research internship {year}", Label: "Open Source AI Lab",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleApplied, Location: "Remote", Kind: domain.LocationRemote},
	{Text: `"visiting researcher" OR "research assistant" AI ML {year} stipend university`, Label: "Visiting Researcher Roles",
		OrgKind: domain.OrgInstitution, RoleKind: domain.RoleResearch, Location: "Global", Kind: domain.LocationInternational,
		Topics: []string{"research"}},
}
