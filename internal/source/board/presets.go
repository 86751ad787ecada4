package board

import (
	"strings"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
)

// Preset pins a built-in site to the registry family it belongs to.
type Preset struct {
	Family string
	Site   Site
}

var govKeywords = []string{"artificial intelligence", "machine learning", "deep learning", "ai/ml", "computer vision"}

// Presets are the built-in job-card and portal pages, in registry order.
func Presets() []Preset {
	return []Preset{
		{Family: "internshala", Site: Site{
			Name:         "Internshala",
			URLs:         []string{"https://internshala.com/internships/artificial-intelligence-ai,data-science,deep-learning,machine-learning,natural-language-processing-nlp-internship/"},
			BaseURL:      "https://internshala.com",
			Card:         "div.individual_internship",
			Title:        "h3.job-internship-name",
			Company:      "p.company-name, div.company_name",
			Location:     "#location_names, .locations a, .loc_container a",
			Stipend:      "span.stipend",
			Start:        ".item_body",
			Link:         "h3.job-internship-name a, a.view_detail_button",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
			MaxPages:     3,
			PageSuffix:   "page-%d/",
		}},
		{Family: "unstop", Site: Site{
			Name: "Unstop",
			URLs: []string{
				"https://unstop.com/internships?domain=tech&specialization=ai-ml",
				"https://unstop.com/internships?query=artificial+intelligence",
				"https://unstop.com/internships?query=machine+learning",
				"https://unstop.com/internships?query=deep+learning",
				"https://unstop.com/internships?query=data+science",
				"https://unstop.com/internships?query=computer+vision",
				"https://unstop.com/internships?query=nlp",
			},
			BaseURL:      "https://unstop.com",
			Card:         "a.item",
			Title:        "h3",
			Company:      "h3 + p, p",
			Location:     "span.job_location",
			Stipend:      ".cash_widget strong",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		{Family: "naukri", Site: Site{
			Name:         "Naukri",
			URLs:         []string{"https://www.naukri.com/ai-ml-internship-jobs-in-india"},
			BaseURL:      "https://www.naukri.com",
			Card:         "div.srp-jobtuple-wrapper",
			Title:        "a.title",
			Company:      "a.comp-name",
			Location:     "span.locWdth",
			Stipend:      "span.ni-job-tuple-icon-srp-rupee + span",
			Duration:     "span.expwdth",
			Skills:       "ul.tags-gt li",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		{Family: "naukri", Site: Site{
			Name:         "Shine",
			URLs:         []string{"https://www.shine.com/job-search/ai-machine-learning-internship-jobs"},
			BaseURL:      "https://www.shine.com",
			Card:         "div[class*='jobCard']",
			Title:        "h2",
			Company:      "div[class*='jobCard_jobCard_cName']",
			Location:     "div[class*='jobCard_locationIcon']",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		{Family: "naukri", Site: Site{
			Name:         "Foundit",
			URLs:         []string{"https://www.foundit.in/srp/results?query=ai+ml+internship"},
			BaseURL:      "https://www.foundit.in",
			Card:         "div[class*='job-tuple']",
			Title:        "h3",
			Company:      "span[class*='company-name']",
			Location:     "div[class*='details']",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		{Family: "naukri", Site: Site{
			Name:         "Apna",
			URLs:         []string{"https://apna.co/jobs?category=internship&q=ai+ml"},
			BaseURL:      "https://apna.co",
			Card:         "div[class*='JobCard']",
			Title:        "h3",
			Company:      "p[class*='Company']",
			Location:     "div[class*='Location']",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		{Family: "naukri", Site: Site{
			Name:         "Cutshort",
			URLs:         []string{"https://cutshort.io/jobs/ai-ml?type=internship"},
			BaseURL:      "https://cutshort.io",
			Card:         "div[class*='job-card']",
			Title:        "div[class*='title']",
			Company:      "div[class*='company']",
			Location:     "div[class*='location']",
			Currency:     "INR",
			LocationKind: domain.LocationIndia,
		}},
		governmentPortal("AICTE Internship Portal", "https://internship.aicte-india.org/", nil),
		governmentPortal("CDAC Careers", "https://www.cdac.in/index.aspx?id=careers_interns", govKeywords),
		governmentPortal("DRDO Internship", "https://www.drdo.gov.in/internship-scheme", govKeywords),
		bigTechPortal("Microsoft Research", "https://careers.microsoft.com/v2/global/en/search-results?q=AI%20intern"),
		bigTechPortal("Google Research", "https://www.google.com/about/careers/applications/jobs/results/?q=AI%20intern"),
		bigTechPortal("Meta AI", "https://www.metacareers.com/jobs/?q=AI%20Intern"),
		bigTechPortal("Apple AI/ML", "https://jobs.apple.com/en-us/search?search=AI%20internship"),
		bigTechPortal("NVIDIA", "https://nvidia.wd5.myworkdayjobs.com/en-US/NVIDIAExternalCareerSite?q=AI%20Intern"),
		nicheBoard("AIJobs.net", "https://aijobs.net/?keyword=internship"),
		nicheBoard("MLOps Community", "https://mlops.community/jobs/?search=intern"),
		nicheBoard("DeepLearning.AI", "https://www.deeplearning.ai/jobs/"),
		nicheBoard("KDnuggets", "https://www.kdnuggets.com/jobs"),
		aggregator("SimplyHired", "https://www.simplyhired.co.in/search?q=AI+ML+internship"),
		aggregator("CareerJet", "https://www.careerjet.co.in/jobs?s=ai+ml+internship"),
		aggregator("Talent.com", "https://in.talent.com/jobs?k=AI+ML+internship"),
	}
}

func governmentPortal(name, url string, keywords []string) Preset {
	return Preset{Family: "government", Site: Site{
		Name:         name,
		URLs:         []string{url},
		Currency:     "INR",
		LocationKind: domain.LocationIndia,
		OrgKind:      domain.OrgGovernment,
		Lead: &Lead{
			Title:          "AI/ML Internship Opportunities (" + name + ")",
			Organization:   strings.Fields(name)[0],
			Location:       "India",
			Stipend:        "Govt Norms",
			StipendNumeric: 5000,
			Duration:       "Variable",
			Skills:         []string{"AI/ML"},
			RoleKind:       domain.RoleResearch,
			Keywords:       keywords,
		},
	}}
}

// bigTechPortal points at a pre-filtered careers search. Those pages render
// client-side, so the lead is emitted whenever the page loads.
func bigTechPortal(name, url string) Preset {
	return Preset{Family: "bigtech", Site: Site{
		Name:         name,
		URLs:         []string{url},
		Currency:     "USD",
		LocationKind: domain.LocationInternational,
		Lead: &Lead{
			Title:          "AI/ML Internships (" + name + ")",
			Organization:   strings.Fields(name)[0],
			Location:       "Global/Remote",
			Stipend:        "Highly Competitive",
			StipendNumeric: 10000,
			Duration:       "Variable",
			Deadline:       "Rolling",
			Skills:         []string{"AI/ML", "Research"},
			RoleKind:       domain.RoleResearch,
		},
	}}
}

func nicheBoard(name, url string) Preset {
	role := domain.RoleApplied
	if l := strings.ToLower(name); strings.Contains(l, "deeplearning") || strings.Contains(l, "mlops") {
		role = domain.RoleResearch
	}
	return Preset{Family: "niche", Site: Site{
		Name:         name,
		URLs:         []string{url},
		Currency:     "USD",
		LocationKind: domain.LocationRemote,
		Lead: &Lead{
			Title:          "AI Internship Directory (" + name + ")",
			Location:       "Global/Remote",
			Stipend:        "Varies",
			StipendNumeric: 1000,
			Duration:       "Variable",
			Deadline:       "Rolling",
			Skills:         []string{"AI/ML"},
			RoleKind:       role,
		},
	}}
}

func aggregator(name, url string) Preset {
	return Preset{Family: "aggregators", Site: Site{
		Name:         name,
		URLs:         []string{url},
		Currency:     "INR",
		LocationKind: domain.LocationIndia,
		Lead: &Lead{
			Title:          "Search Results: AI/ML Internships",
			Location:       "India",
			Stipend:        "Varies",
			StipendNumeric: 5000,
			Duration:       "Variable",
			Skills:         []string{"AI/ML"},
			RoleKind:       domain.RoleApplied,
		},
	}}
}

// FromConfig turns a user-declared board into a Site.
func FromConfig(b config.Board) Site {
	s := Site{
		Name:         b.Name,
		URLs:         b.URLs,
		BaseURL:      b.BaseURL,
		Card:         b.Card,
		Title:        b.Title,
		Company:      b.Company,
		Location:     b.Location,
		Stipend:      b.Stipend,
		Duration:     b.Duration,
		Start:        b.Start,
		Skills:       b.Skills,
		Link:         b.Link,
		LocationKind: domain.LocationKind(b.LocationKind),
		OrgKind:      domain.OrgKind(b.OrgKind),
	}
	if s.LocationKind == domain.LocationIndia {
		s.Currency = "INR"
	}
	return s
}
