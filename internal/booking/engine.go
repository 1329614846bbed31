package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/camp-scheduler/internal/browser"
	"github.com/example/camp-scheduler/internal/reservation"
)

const (
	defaultSiteURL       = "https://camping.bcparks.ca"
	defaultMaxAttempts   = 3
	defaultClaimInterval = 15 * time.Second
)

// Candidates is a pull sequence of bookable slots. *availability.Seq
// satisfies it.
type Candidates interface {
	Next(ctx context.Context) (reservation.ComposeAvailabilityOutput, bool, error)
}

// SessionFactory opens a fresh browser session. The engine opens one
// session per attempt and always closes it.
type SessionFactory func(ctx context.Context) (browser.Driver, error)

// CreateReservation is one booking request: a candidate source plus the
// checkout and login details.
type CreateReservation struct {
	Source  Candidates
	Details reservation.ReservationDetails
	Auth    reservation.AuthDetails
}

// Engine drives the whole booking flow for a single candidate slot:
// login, slot claim with bounded retry, checkout walk, and outcome
// classification. Errors never escape MakeReservation; callers only see
// SUCCESS or FAILURE.
type Engine struct {
	Sessions SessionFactory
	SiteURL  string
	// MaxAttempts bounds whole-attempt retries after an exhausted slot
	// claim. Zero means 3.
	MaxAttempts int

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// MakeReservation consumes at most one candidate from the source and
// attempts to book it, restarting from the slot claim with a fresh
// browser session when the claim retry deadline was exhausted.
func (e *Engine) MakeReservation(ctx context.Context, req CreateReservation) reservation.Result {
	cand, ok, err := req.Source.Next(ctx)
	if err == nil && !ok {
		err = reservation.ErrNoResults
	}
	if err != nil {
		return e.classify(err)
	}

	for attempt := 1; attempt <= e.maxAttempts(); attempt++ {
		err = e.attempt(ctx, cand, req)
		if err == nil {
			return reservation.ResultSuccess
		}
		if errors.Is(err, reservation.ErrRetryable) {
			log.Info().Int("attempt", attempt).Msg("could not finish reservation, will retry if there's any attempt left")
			continue
		}
		break
	}
	return e.classify(err)
}

func (e *Engine) classify(err error) reservation.Result {
	switch {
	case errors.Is(err, reservation.ErrNoResults):
		log.Info().Msg("no available dates within searched parameters, exiting")
	case errors.Is(err, reservation.ErrRetryable):
		log.Info().Msg("retry attempts exhausted")
	default:
		log.Error().Err(err).Msg("unexpected error, terminating")
	}
	return reservation.ResultFailure
}

func (e *Engine) attempt(ctx context.Context, cand reservation.ComposeAvailabilityOutput, req CreateReservation) error {
	d, err := e.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing browser session")
		}
	}()

	if err := d.Navigate(ctx, e.siteURL()); err != nil {
		return err
	}
	if err := Login(ctx, d, req.Auth); err != nil {
		return err
	}
	log.Info().
		Str("location", cand.ResourceLocationName).
		Int64("resource", cand.ResourceID).
		Msg("navigating to resource page")
	if err := d.Navigate(ctx, e.resultsURL(cand)); err != nil {
		return err
	}
	return e.ClaimAndCheckout(ctx, d, req.Details)
}

// resultsURL rebuilds the deep link the site uses for one resource's
// booking results page.
func (e *Engine) resultsURL(c reservation.ComposeAvailabilityOutput) string {
	q := url.Values{}
	q.Set("resourceLocationId", c.ResourceLocationID)
	q.Set("mapId", c.MapID)
	q.Set("searchTabGroupId", "0")
	q.Set("bookingCategoryId", "0")
	q.Set("startDate", c.Start)
	q.Set("endDate", c.End)
	q.Set("nights", c.Nights)
	q.Set("isReserving", "true")
	q.Set("equipmentId", c.EquipmentID)
	q.Set("subEquipmentId", c.SubEquipmentID)
	q.Set("partySize", "1")
	q.Set("filterData", "{}")
	q.Set("searchTime", e.now().UTC().Format("2006-01-02T15:04:05.000"))
	q.Set("SRID", strconv.FormatInt(c.ResourceID, 10))
	return strings.TrimSuffix(e.siteURL(), "/") + "/create-booking/results?" + q.Encode()
}

func (e *Engine) siteURL() string {
	if e.SiteURL != "" {
		return e.SiteURL
	}
	return defaultSiteURL
}

func (e *Engine) maxAttempts() int {
	if e.MaxAttempts > 0 {
		return e.MaxAttempts
	}
	return defaultMaxAttempts
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
