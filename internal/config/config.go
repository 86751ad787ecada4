package config

import "internhunt-engine/internal/domain"

type Company struct {
	Slug string `koanf:"slug" yaml:"slug" json:"slug"`
	Name string `koanf:"name" yaml:"name" json:"name"`
}

// Board describes a selector-driven job-card page. Extra boards declared in
// config are appended to the named registry family.
type Board struct {
	Name         string   `koanf:"name" yaml:"name" json:"name"`
	Family       string   `koanf:"family" yaml:"family" json:"family"`
	URLs         []string `koanf:"urls" yaml:"urls" json:"urls"`
	BaseURL      string   `koanf:"base_url" yaml:"base_url" json:"base_url"`
	Card         string   `koanf:"card" yaml:"card" json:"card"`
	Title        string   `koanf:"title" yaml:"title" json:"title"`
	Company      string   `koanf:"company" yaml:"company" json:"company"`
	Location     string   `koanf:"location" yaml:"location" json:"location"`
	Stipend      string   `koanf:"stipend" yaml:"stipend" json:"stipend"`
	Duration     string   `koanf:"duration" yaml:"duration" json:"duration"`
	Start        string   `koanf:"start" yaml:"start" json:"start"`
	Skills       string   `koanf:"skills" yaml:"skills" json:"skills"`
	Link         string   `koanf:"link" yaml:"link" json:"link"`
	LocationKind string   `koanf:"location_kind" yaml:"location_kind" json:"location_kind"`
	OrgKind      string   `koanf:"org_kind" yaml:"org_kind" json:"org_kind"`
}

type Feed struct {
	Name         string `koanf:"name" yaml:"name" json:"name"`
	Family       string `koanf:"family" yaml:"family" json:"family"`
	URL          string `koanf:"url" yaml:"url" json:"url"`
	LocationKind string `koanf:"location_kind" yaml:"location_kind" json:"location_kind"`
}

type Filters struct {
	MinStipendINR       float64  `koanf:"min_stipend_inr" yaml:"min_stipend_inr" json:"min_stipend_inr"`
	HighStipend         float64  `koanf:"high_stipend" yaml:"high_stipend" json:"high_stipend"`
	ExtraInclude        []string `koanf:"extra_include" yaml:"extra_include" json:"extra_include"`
	ExtraExclude        []string `koanf:"extra_exclude" yaml:"extra_exclude" json:"extra_exclude"`
	InternshipPlatforms []string `koanf:"internship_platforms" yaml:"internship_platforms" json:"internship_platforms"`
}

type Email struct {
	Enabled          bool     `koanf:"enabled" yaml:"enabled" json:"enabled"`
	IMAPHost         string   `koanf:"imap_host" yaml:"imap_host" json:"imap_host"`
	IMAPPort         int      `koanf:"imap_port" yaml:"imap_port" json:"imap_port"`
	Username         string   `koanf:"username" yaml:"username" json:"username"`
	Mailbox          string   `koanf:"mailbox" yaml:"mailbox" json:"mailbox"`
	SearchSubjectAny []string `koanf:"search_subject_any" yaml:"search_subject_any" json:"search_subject_any"`
	MaxMessages      int      `koanf:"max_messages" yaml:"max_messages" json:"max_messages"`
	SinceDays        int      `koanf:"since_days" yaml:"since_days" json:"since_days"`
}

type Sources struct {
	Greenhouse struct {
		Companies []Company `koanf:"companies" yaml:"companies" json:"companies"`
	} `koanf:"greenhouse" yaml:"greenhouse" json:"greenhouse"`
	Lever struct {
		Companies []Company `koanf:"companies" yaml:"companies" json:"companies"`
	} `koanf:"lever" yaml:"lever" json:"lever"`
	SmartRecruiters struct {
		Companies []Company `koanf:"companies" yaml:"companies" json:"companies"`
	} `koanf:"smartrecruiters" yaml:"smartrecruiters" json:"smartrecruiters"`
	// Workday company slugs are full career-site URLs.
	Workday struct {
		Companies []Company `koanf:"companies" yaml:"companies" json:"companies"`
	} `koanf:"workday" yaml:"workday" json:"workday"`
	Search struct {
		Endpoint     string `koanf:"endpoint" yaml:"endpoint" json:"endpoint"`
		DelaySeconds int    `koanf:"delay_seconds" yaml:"delay_seconds" json:"delay_seconds"`
		MaxResults   int    `koanf:"max_results" yaml:"max_results" json:"max_results"`
	} `koanf:"search" yaml:"search" json:"search"`
	Boards []Board `koanf:"boards" yaml:"boards" json:"boards"`
	Feeds  []Feed  `koanf:"feeds" yaml:"feeds" json:"feeds"`
}

type Config struct {
	App struct {
		Port     int    `koanf:"port" yaml:"port" json:"port"`
		DataDir  string `koanf:"data_dir" yaml:"data_dir" json:"data_dir"`
		LogLevel string `koanf:"log_level" yaml:"log_level" json:"log_level"`
	} `koanf:"app" yaml:"app" json:"app"`

	Store struct {
		Backend string `koanf:"backend" yaml:"backend" json:"backend"` // file | sqlite
	} `koanf:"store" yaml:"store" json:"store"`

	Schedule struct {
		Enabled bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
		Cron    string `koanf:"cron" yaml:"cron" json:"cron"`
	} `koanf:"schedule" yaml:"schedule" json:"schedule"`

	HTTP struct {
		TimeoutSeconds int     `koanf:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
		RatePerSecond  float64 `koanf:"rate_per_second" yaml:"rate_per_second" json:"rate_per_second"`
		Burst          int     `koanf:"burst" yaml:"burst" json:"burst"`
		UserAgent      string  `koanf:"user_agent" yaml:"user_agent" json:"user_agent"`
	} `koanf:"http" yaml:"http" json:"http"`

	Run     domain.RunConfig `koanf:"run" yaml:"run" json:"run"`
	Filters Filters          `koanf:"filters" yaml:"filters" json:"filters"`
	Sources Sources          `koanf:"sources" yaml:"sources" json:"sources"`
	Email   Email            `koanf:"email" yaml:"email" json:"email"`
}

func Default() Config {
	var c Config
	c.App.Port = 38471
	c.App.DataDir = "."
	c.App.LogLevel = "info"
	c.Store.Backend = "file"
	c.Schedule.Enabled = true
	c.Schedule.Cron = "0 8 * * *"
	c.HTTP.TimeoutSeconds = 20
	c.HTTP.RatePerSecond = 1.0
	c.HTTP.Burst = 2
	c.HTTP.UserAgent = "internhunt/1.0 (+local)"
	c.Filters.MinStipendINR = 5000
	c.Filters.HighStipend = 40000
	c.Sources.Greenhouse.Companies = []Company{
		{Slug: "anthropic", Name: "Anthropic"},
		{Slug: "databricks", Name: "Databricks"},
		{Slug: "scaleai", Name: "Scale AI"},
	}
	c.Sources.Lever.Companies = []Company{
		{Slug: "palantir", Name: "Palantir"},
		{Slug: "mistral", Name: "Mistral AI"},
	}
	c.Sources.SmartRecruiters.Companies = []Company{
		{Slug: "BoschGroup", Name: "Bosch"},
	}
	c.Sources.Workday.Companies = []Company{
		{Slug: "https://nvidia.wd5.myworkdayjobs.com/NVIDIAExternalCareerSite", Name: "NVIDIA"},
	}
	c.Sources.Search.Endpoint = "https://html.duckduckgo.com/html/"
	c.Sources.Search.DelaySeconds = 3
	c.Sources.Search.MaxResults = 15
	c.Email.IMAPPort = 993
	c.Email.Mailbox = "INBOX"
	c.Email.MaxMessages = 50
	c.Email.SinceDays = 14
	return c
}
