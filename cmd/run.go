package cmd

import (
	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/notification"
	"github.com/example/camp-scheduler/internal/reservation"
)

func newRunCmd() *cobra.Command {
	var recordID string

	c := &cobra.Command{
		Use:   "run",
		Short: "Book every configuration of a stored record once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuth(); err != nil {
				return err
			}
			store, closeDB, err := openStore(cmd.Context(), cfg)
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
			return runner.ProcessRecord(cmd.Context(), recordID)
		},
	}

	c.Flags().StringVar(&recordID, "id", "default", "record id")
	return c
}
