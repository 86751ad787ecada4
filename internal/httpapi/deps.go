package httpapi

import (
	"context"
	"sync/atomic"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/events"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/metrics"
	"internhunt-engine/internal/poll"
	"internhunt-engine/internal/scrape"
	"internhunt-engine/internal/source"
	"internhunt-engine/internal/store"
)

// Passes is the pass control surface, satisfied by *poll.Controller.
type Passes interface {
	Start(cfg domain.RunConfig, opts scrape.Options) (poll.Outcome, error)
	Status() poll.Status
	Running() bool
	Reset(ctx context.Context) error
}

// Catalog lists registry families, satisfied by *source.Registry and *source.Live.
type Catalog interface {
	Families() []string
	Adapters(family string) []source.Adapter
}

type Snapshotter interface {
	Load(ctx context.Context) (store.Snapshot, error)
}

type Deps struct {
	Store   Snapshotter
	Passes  Passes
	Sources Catalog
	Hub     *events.Hub
	Metrics *metrics.Metrics
	Log     logger.Logger

	CfgVal      *atomic.Value // config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	// OnConfig runs after a saved config has been reloaded.
	OnConfig func(config.Config)

	// LogPath is the run log tailed by /logs.
	LogPath string
}

func (d Deps) config() config.Config {
	if d.CfgVal == nil {
		return config.Default()
	}
	if v, ok := d.CfgVal.Load().(config.Config); ok {
		return v
	}
	return config.Default()
}
