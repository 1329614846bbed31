package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/config"
	"github.com/example/camp-scheduler/internal/reservation"
)

func newReserveCmd() *cobra.Command {
	var (
		flags      searchFlags
		adults     int
		cardNumber string
		cardName   string
		cardMonth  int
		cardYear   int
		cardCVV    string
		retryMins  int
		retrySecs  int
	)

	c := &cobra.Command{
		Use:   "reserve",
		Short: "Search availability and book the first matching slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuth(); err != nil {
				return err
			}
			input, err := flags.input()
			if err != nil {
				return err
			}

			composer := &availability.Composer{API: apiClient(cfg)}
			engine := &booking.Engine{
				Sessions: sessionFactory(cfg),
				SiteURL:  cfg.SiteURL,
			}

			details := reservation.ReservationDetails{
				PartyInfo: reservation.PartyInfo{Adults: adults},
				CardDetails: reservation.CardDetails{
					Number:        cardNumber,
					NameOnCard:    cardName,
					SecurityCode:  cardCVV,
					ExpiringMonth: cardMonth,
					ExpiringYear:  cardYear,
				},
			}
			if retryMins > 0 || retrySecs > 0 {
				details.RetryDetails = &reservation.RetryDetails{
					RetryTimeInMins:     retryMins,
					RetryIntervalInSecs: retrySecs,
				}
			}

			res := engine.MakeReservation(cmd.Context(), booking.CreateReservation{
				Source:  composer.Compose(input, nil),
				Details: details,
				Auth:    reservation.AuthDetails{Email: cfg.AuthEmail, Password: cfg.AuthPassword},
			})
			fmt.Println(res)
			if res != reservation.ResultSuccess {
				return fmt.Errorf("reservation was not completed")
			}
			return nil
		},
	}

	flags.register(c)
	c.Flags().IntVar(&adults, "adults", 2, "party size (adults)")
	c.Flags().StringVar(&cardNumber, "card-number", "", "payment card number")
	c.Flags().StringVar(&cardName, "card-name", "", "cardholder name")
	c.Flags().IntVar(&cardMonth, "card-expiry-month", 0, "card expiry month (1-12)")
	c.Flags().IntVar(&cardYear, "card-expiry-year", 0, "card expiry year (YYYY)")
	c.Flags().StringVar(&cardCVV, "card-cvv", "", "card security code")
	c.Flags().IntVar(&retryMins, "retry-time-mins", 0, "keep retrying a contested slot for this many minutes")
	c.Flags().IntVar(&retrySecs, "retry-interval-secs", 15, "delay between contested-slot retries")

	_ = c.MarkFlagRequired("card-number")
	_ = c.MarkFlagRequired("card-name")
	_ = c.MarkFlagRequired("card-expiry-month")
	_ = c.MarkFlagRequired("card-expiry-year")
	_ = c.MarkFlagRequired("card-cvv")
	return c
}
