package poll

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/scrape"
)

const DefaultSchedule = "0 8 * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// cronLogger routes robfig/cron's logging into ours.
type cronLogger struct{ log logger.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug(msg, logger.Any("kv", kv))
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error(msg, logger.Err(err), logger.Any("kv", kv))
}

// Schedule triggers a pass on spec with whatever run config cfg returns at
// fire time. A tick that lands while a pass is running is skipped. The caller
// starts and stops the returned cron.
func (c *Controller) Schedule(spec string, cfg func() domain.RunConfig) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	cl := cronLogger{log: c.log.With(logger.String("component", "schedule"))}
	cr := cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	_, err := cr.AddFunc(spec, func() {
		out, err := c.Start(cfg(), scrape.Options{})
		if err != nil {
			c.log.Error("scheduled pass rejected", logger.Err(err))
			return
		}
		if out == AlreadyRunning {
			c.log.Info("scheduled pass skipped, one is already running")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return cr, nil
}
