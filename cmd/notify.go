package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/notification"
	"github.com/example/camp-scheduler/internal/reservation"
)

func newNotifyCmd() *cobra.Command {
	var (
		recordID string
		from     string
		subject  string
	)

	c := &cobra.Command{
		Use:   "notify",
		Short: "React to an availability-notification e-mail",
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

			record, err := store.Get(cmd.Context(), recordID)
			if err != nil {
				return err
			}
			if len(record) == 0 {
				return fmt.Errorf("record %s holds no configurations", recordID)
			}
			// The first stored configuration supplies the search and
			// checkout parameters for notification-triggered bookings.
			cfg0 := record[0]

			api := apiClient(cfg)
			sessions := sessionFactory(cfg)
			h := &notification.Handler{
				Locations: api,
				Composer:  &availability.Composer{API: api},
				Engine: &booking.Engine{
					Sessions: sessions,
					SiteURL:  cfg.SiteURL,
				},
				Sessions: sessions,
				SiteURL:  cfg.SiteURL,
				Search:   cfg0.Search,
				Details:  cfg0.ReservationDetails,
				Auth:     reservation.AuthDetails{Email: cfg.AuthEmail, Password: cfg.AuthPassword},
			}

			res := h.HandleInbound(cmd.Context(), notification.InboundMessage{From: from, Subject: subject})
			fmt.Println(res)
			if res != reservation.ResultSuccess {
				return fmt.Errorf("reservation was not completed")
			}
			return nil
		},
	}

	c.Flags().StringVar(&recordID, "id", "default", "record id supplying search and checkout parameters")
	c.Flags().StringVar(&from, "from", "", "notification sender address")
	c.Flags().StringVar(&subject, "subject", "", "notification subject line")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("subject")
	return c
}
