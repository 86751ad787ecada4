package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/domain"
	"internhunt-engine/internal/httpapi"
	"internhunt-engine/internal/logger"
	"internhunt-engine/internal/poll"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API and the daily schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer a.close()
			if port > 0 {
				a.cfg.App.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port on 127.0.0.1 (overrides app.port)")
	return cmd
}

func serve(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := poll.New(ctx, a.runner, a.sources, a.store, a.hub, a.log)
	ctrl.LogPath = a.logPath

	var cfgVal atomic.Value // config.Config
	cfgVal.Store(a.cfg)

	handler := httpapi.NewHandler(httpapi.Deps{
		Store:       a.store,
		Passes:      ctrl,
		Sources:     a.sources,
		Hub:         a.hub,
		Metrics:     a.metrics,
		Log:         a.log,
		CfgVal:      &cfgVal,
		UserCfgPath: a.cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(a.cfgPath) },
		OnConfig:    a.reload,
		LogPath:     a.logPath,
	})

	if snap, err := a.store.Load(ctx); err == nil {
		a.metrics.SetDatasetSize(len(snap.Listings))
	}

	// Bind to a predictable local port so the desktop shell can find us.
	addr := fmt.Sprintf("127.0.0.1:%d", a.cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Schedule.Enabled {
		cr, err := ctrl.Schedule(a.cfg.Schedule.Cron, func() domain.RunConfig {
			return cfgVal.Load().(config.Config).Run
		})
		if err != nil {
			_ = ln.Close()
			return err
		}
		cr.Start()
		a.log.Info("schedule armed", logger.String("cron", a.cfg.Schedule.Cron))
		g.Go(func() error {
			<-gctx.Done()
			<-cr.Stop().Done()
			return nil
		})
	}

	g.Go(func() error {
		a.log.Info("engine listening",
			logger.String("addr", "http://"+addr),
			logger.String("data_dir", a.dataDir),
			logger.String("store", a.cfg.Store.Backend),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		// A pass sees the cancelled context and stops before its next source.
		ctrl.Wait()
		return err
	})

	return g.Wait()
}
