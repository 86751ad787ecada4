package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"internhunt-engine/internal/domain"
)

var ErrInvalidConfig = errors.New("invalid config")

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("%w:\n- %s", ErrInvalidConfig, strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.ExtraInclude = trimList(out.Filters.ExtraInclude)
	out.Filters.ExtraExclude = trimList(out.Filters.ExtraExclude)
	out.Filters.InternshipPlatforms = trimList(out.Filters.InternshipPlatforms)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)
	out.Run.Regions = trimList(out.Run.Regions)
	out.Run.Topics = trimList(out.Run.Topics)
	out.Run.Sources = trimList(out.Run.Sources)
	out.Store.Backend = strings.ToLower(strings.TrimSpace(out.Store.Backend))

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}
	switch out.Store.Backend {
	case "file", "sqlite":
	default:
		res.addErr("store.backend must be file or sqlite, got %q", out.Store.Backend)
	}

	if out.Schedule.Enabled {
		if _, err := cron.ParseStandard(out.Schedule.Cron); err != nil {
			res.addErr("schedule.cron is not a valid cron spec: %v", err)
		}
	}

	if out.HTTP.TimeoutSeconds <= 0 {
		res.addErr("http.timeout_seconds must be > 0")
	}
	if out.HTTP.RatePerSecond <= 0 {
		res.addErr("http.rate_per_second must be > 0")
	} else if out.HTTP.RatePerSecond > 10 {
		res.addWarn("http.rate_per_second is high (%.1f) and may get the engine blocked.", out.HTTP.RatePerSecond)
	}
	if out.HTTP.Burst <= 0 {
		res.addErr("http.burst must be > 0")
	}

	if out.Filters.MinStipendINR < 0 {
		res.addErr("filters.min_stipend_inr must be >= 0")
	}
	if out.Filters.HighStipend < 0 {
		res.addErr("filters.high_stipend must be >= 0")
	}

	if err := out.Run.Validate(); err != nil {
		res.addErr("run: %s", strings.TrimPrefix(err.Error(), domain.ErrInvalidRunConfig.Error()+": "))
	}

	for i, b := range out.Sources.Boards {
		if strings.TrimSpace(b.Name) == "" {
			res.addErr("sources.boards[%d].name is required", i)
		}
		if len(b.URLs) == 0 {
			res.addErr("sources.boards[%d].urls must have at least 1 url", i)
		}
		if strings.TrimSpace(b.Card) == "" || strings.TrimSpace(b.Title) == "" {
			res.addErr("sources.boards[%d] needs card and title selectors", i)
		}
	}
	for i, f := range out.Sources.Feeds {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
			res.addErr("sources.feeds[%d] needs name and url", i)
		}
	}

	if out.Sources.Search.DelaySeconds < 1 {
		res.addWarn("sources.search.delay_seconds below 1 is likely to be rate limited.")
	}

	// password is not required here; it lives in the keychain
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; every unseen message will be parsed.")
		}
	}

	return out, res
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
