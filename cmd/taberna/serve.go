package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hector-302/projecto-taberna/internal/gateway"
	"github.com/Hector-302/projecto-taberna/internal/reload"
	"github.com/Hector-302/projecto-taberna/internal/schedule"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			g, err := buildGame(cfg, logger, nil)
			if err != nil {
				return err
			}
			defer g.close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			reloader := reload.NewHandler(g.orch, logger, cfg.Prompts.Path)

			gw := gateway.New(gateway.Config{
				Addr:      cfg.Server.Addr,
				AuthToken: cfg.Server.AuthToken,
				SavePath:  cfg.Session.SavePath,
			}, g.orch, g.story, reloader, logger)

			// Every turn's events also stream to the WebSocket transcript.
			g.orch.SetRenderer(gw.Hub())
			g.story.SetRenderer(gw.Hub())

			if err := gw.Start(); err != nil {
				return err
			}

			// Persona file watcher plus SIGHUP, both feeding the reloader.
			if cfg.Prompts.Path != "" {
				watcher := reload.NewWatcher(reload.WatcherConfig{Path: cfg.Prompts.Path})
				watcher.Start(ctx)
				defer watcher.Stop()
				go reloader.Run(ctx, watcher.Events())
			}

			// Autosave only makes sense for the file-backed memory store.
			if cfg.Session.Autosave != "" && cfg.Session.Store == "memory" {
				sched := schedule.NewScheduler(logger)
				if err := sched.RegisterJob(&schedule.AutosaveJob{
					Store:        g.store,
					Path:         cfg.Session.SavePath,
					Logger:       logger,
					ScheduleExpr: cfg.Session.Autosave,
				}); err != nil {
					return err
				}
				if err := sched.Start(); err != nil {
					return err
				}
				defer func() { _ = sched.Stop(context.Background()) }()
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			logger.Info("shutting down")

			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancelShutdown()
			return gw.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}
