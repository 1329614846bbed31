package notification

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/booking"
	"github.com/example/camp-scheduler/internal/reservation"
)

const (
	selViewOnMap     = `[id^="view-on-map"]`
	selAvailableIcon = `[data-availability="icon-available"]`
)

// LocationsAPI is the slice of the read client the fallback flow needs.
type LocationsAPI interface {
	ResourceLocations(ctx context.Context) ([]bccamp.ResourceLocation, error)
}

// InboundMessage is an availability-notification e-mail, reduced to
// what the handler inspects.
type InboundMessage struct {
	From    string
	Subject string
}

// Handler reacts to an availability notification: the primary flow
// claims the first open slot straight off the in-browser notification
// dashboard; the fallback resolves the notification subject to a known
// location and runs the normal compose-and-book path for it.
type Handler struct {
	Locations LocationsAPI
	Composer  *availability.Composer
	Engine    *booking.Engine
	Sessions  booking.SessionFactory
	SiteURL   string

	// Search carries the pre-known equipment/date/night parameters the
	// fallback search uses; its location set is replaced per message.
	Search  reservation.ComposeAvailabilityInput
	Details reservation.ReservationDetails
	Auth    reservation.AuthDetails
}

// HandleInbound processes one notification message. The primary flow
// only runs for messages from the account owner's address; any primary
// failure falls through to the subject-matching fallback.
func (h *Handler) HandleInbound(ctx context.Context, msg InboundMessage) reservation.Result {
	if strings.EqualFold(msg.From, h.Auth.Email) {
		if err := h.primary(ctx); err == nil {
			return reservation.ResultSuccess
		} else {
			log.Error().Err(err).Msg("failed reservation from notification")
		}
	}
	return h.fallback(ctx, strings.ToLower(msg.Subject))
}

// primary drives the live notification dashboard: first map marker,
// first available icon, then the normal claim + checkout walk.
func (h *Handler) primary(ctx context.Context) (err error) {
	d, err := h.Sessions(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing browser session")
		}
	}()

	if err := d.Navigate(ctx, h.siteURL()); err != nil {
		return err
	}
	if err := d.WaitNavigation(ctx); err != nil {
		return err
	}
	if err := booking.Login(ctx, d, h.Auth); err != nil {
		return err
	}
	if err := d.WaitNavigation(ctx); err != nil {
		return err
	}
	if err := d.Click(ctx, selViewOnMap); err != nil {
		return err
	}
	if err := d.WaitNavigation(ctx); err != nil {
		return err
	}
	if err := d.Click(ctx, selAvailableIcon); err != nil {
		return err
	}
	return h.Engine.ClaimAndCheckout(ctx, d, h.Details)
}

func (h *Handler) fallback(ctx context.Context, subject string) reservation.Result {
	log.Info().Msg("falling back to secondary flow")
	locations, err := h.Locations.ResourceLocations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetching resource locations")
		return reservation.ResultFailure
	}

	var match *bccamp.ResourceLocation
	for i := range locations {
		loc := &locations[i]
		if len(loc.LocalizedValues) == 0 {
			continue
		}
		short := loc.LocalizedValues[0].ShortName
		if short != "" && strings.Contains(subject, strings.ToLower(short)) {
			match = loc
			break
		}
	}
	if match == nil {
		log.Error().Err(reservation.ErrNoMatch).Str("subject", subject).Msg("could not find any location for subject")
		return reservation.ResultFailure
	}
	log.Info().
		Str("name", match.LocalizedValues[0].ShortName).
		Int64("id", match.ResourceLocationID).
		Msg("location found")

	input := h.Search
	input.LocationIDs = []string{strconv.FormatInt(match.ResourceLocationID, 10)}
	return h.Engine.MakeReservation(ctx, booking.CreateReservation{
		Source:  h.Composer.Compose(input, nil),
		Details: h.Details,
		Auth:    h.Auth,
	})
}

func (h *Handler) siteURL() string {
	if h.SiteURL != "" {
		return h.SiteURL
	}
	return "https://camping.bcparks.ca"
}
