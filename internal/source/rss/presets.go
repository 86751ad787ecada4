package rss

import (
	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
)

type Preset struct {
	Family string
	Feed   Feed
}

func Presets() []Preset {
	return []Preset{
		{Family: "remotive", Feed: Feed{
			Name:         "Remotive",
			URL:          "https://remotive.com/remote-jobs/feed/ai-ml",
			LocationKind: domain.LocationRemote,
		}},
		{Family: "weworkremotely", Feed: Feed{
			Name:         "WeWorkRemotely",
			URL:          "https://weworkremotely.com/remote-jobs.rss",
			LocationKind: domain.LocationRemote,
		}},
		{Family: "linkedin", Feed: Feed{
			Name: "LinkedIn",
			URL:  "https://www.linkedin.com/jobs/search/?keywords=AI+ML+internship&format=rss",
		}},
		{Family: "international", Feed: Feed{
			Name:         "WeWorkRemotely Internships",
			URL:          "https://weworkremotely.com/remote-jobs/search.rss?term=internship+machine+learning",
			LocationKind: domain.LocationInternational,
		}},
	}
}

func FromConfig(f config.Feed) Feed {
	return Feed{Name: f.Name, URL: f.URL, LocationKind: domain.LocationKind(f.LocationKind)}
}
