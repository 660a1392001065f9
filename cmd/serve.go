package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/tutorloop/internal/api"
	"github.com/abhisek/tutorloop/internal/curriculum"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if cmd.Flags().Changed("optimize") {
			cfg.Optimizer.Enabled, _ = cmd.Flags().GetBool("optimize")
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := commandContext(cmd)
		defer stop()

		app, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Error("close", zap.Error(err))
			}
		}()

		if cfg.Optimizer.Enabled {
			sched := curriculum.NewAutoScheduler(app.engine, cfg.Optimizer.Interval, logger.Named("optimizer"))
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("start optimizer: %w", err)
			}
			defer sched.Stop()
		}

		srv := api.NewServer(api.Deps{
			Sessions:   app.sessions,
			Students:   app.store.Students(),
			Analyzer:   app.analyzer,
			Planner:    app.planner,
			Scheduler:  app.scheduler,
			Engagement: app.engagement,
			Engine:     app.engine,
			Curricula:  app.versions,
			Logger:     logger,
		}, cfg.Server.GinMode)
		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("optimize", false, "Run automatic curriculum optimization on the configured interval")
}

// commandContext is the command's context, canceled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
