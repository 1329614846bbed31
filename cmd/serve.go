package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/notification"
	"github.com/example/camp-scheduler/internal/reservation"
	"github.com/example/camp-scheduler/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var recordID string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuth(); err != nil {
				return err
			}
			if recordID == "" {
				recordID = cfg.RecordID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeDB, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			runner := &notification.Runner{
				Store:    store,
				Composer: &availability.Composer{API: apiClient(cfg)},
				Engine: &booking.Engine{
					Sessions: sessionFactory(cfg),
					SiteURL:  cfg.SiteURL,
				},
				Auth: reservation.AuthDetails{Email: cfg.AuthEmail, Password: cfg.AuthPassword},
			}
			s := &scheduler.Scheduler{
				Interval: cfg.PollInterval,
				Process: func(ctx context.Context) error {
					return runner.ProcessRecord(ctx, recordID)
				},
			}

			log.Info().
				Str("record", recordID).
				Dur("interval", cfg.PollInterval).
				Msg("scheduler starting")
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info().Msg("scheduler stopped")
			return nil
		},
	}

	c.Flags().StringVar(&recordID, "id", "", "record id (defaults to RECORD_ID)")
	return c
}
