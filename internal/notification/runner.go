package notification

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/db"
	"github.com/example/camp-scheduler/internal/reservation"
)

// Store is the reservation-config persistence the runner reads and
// updates. Write failures never fail a run.
type Store interface {
	Get(ctx context.Context, id string) (reservation.ConfigRecord, error)
	Put(ctx context.Context, id string, record reservation.ConfigRecord) error
}

// Booker books one composed candidate. *booking.Engine satisfies it.
type Booker interface {
	MakeReservation(ctx context.Context, req booking.CreateReservation) reservation.Result
}

// Runner executes every configuration of a stored record, one at a
// time. A single configuration's failure never aborts the batch.
type Runner struct {
	Store    Store
	Composer *availability.Composer
	Engine   Booker
	Auth     reservation.AuthDetails
}

// ProcessRecord runs all configurations under the record id and writes
// back the configs that still need booking once any of them succeeded.
func (r *Runner) ProcessRecord(ctx context.Context, id string) error {
	record, err := r.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Info().Str("id", id).Msg("no configuration found")
			return nil
		}
		return err
	}

	var success, failures []string
	for _, cfg := range record {
		res := r.Engine.MakeReservation(ctx, booking.CreateReservation{
			Source:  r.Composer.Compose(cfg.Search, nil),
			Details: cfg.ReservationDetails,
			Auth:    r.Auth,
		})
		if res == reservation.ResultSuccess {
			success = append(success, cfg.ID)
		} else {
			failures = append(failures, cfg.ID)
		}
	}

	log.Info().
		Int("success", len(success)).
		Int("failures", len(failures)).
		Msg("reservation run summary")

	if len(success) == 0 {
		return nil
	}
	remaining := make(reservation.ConfigRecord, 0, len(failures))
	for _, cfg := range record {
		for _, fid := range failures {
			if cfg.ID == fid {
				remaining = append(remaining, cfg)
				break
			}
		}
	}
	if err := r.Store.Put(ctx, id, remaining); err != nil {
		// The attempt results stand regardless of this write.
		log.Error().Err(err).Str("id", id).Msg("failed to update reservation config record")
	}
	return nil
}
