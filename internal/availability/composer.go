package availability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/reservation"
)

// ReadAPI is the slice of the read client the composer depends on.
type ReadAPI interface {
	Maps(ctx context.Context) ([]bccamp.ParkMap, error)
	ResourceLocations(ctx context.Context) ([]bccamp.ResourceLocation, error)
	AvailabilityCards(ctx context.Context, req bccamp.AvailabilityRequest) ([]bccamp.ResourceAvailability, error)
}

// MapResource is one bookable resource together with the map it sits on.
type MapResource struct {
	ResourceID int64
	MapID      string
}

// Lookup resolves resource ids to map ids and location ids to display
// metadata. It is built once per location set and shared read-only
// across every query of a composer run.
type Lookup struct {
	Maps      map[string][]MapResource
	Locations map[string]bccamp.ResourceLocation
}

// Composer turns a search input into a sequence of bookable candidates.
// Pace is the courtesy delay between consecutive API calls; the site
// throttles aggressively, so keep the default in production.
type Composer struct {
	API  ReadAPI
	Pace time.Duration
	Now  func() time.Time
}

func (c *Composer) pace() time.Duration {
	if c.Pace == 0 {
		return time.Second
	}
	return c.Pace
}

func (c *Composer) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// BuildLookup fetches maps and resource locations for the given
// location set: maps are kept when they belong to a requested location
// and carry at least one resource, and their (resource, map) pairs are
// grouped per location in served order.
func (c *Composer) BuildLookup(ctx context.Context, locationIDs []string) (*Lookup, error) {
	wanted := make(map[string]bool, len(locationIDs))
	for _, id := range locationIDs {
		wanted[id] = true
	}

	log.Info().Msg("requesting maps")
	maps, err := c.API.Maps(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch maps: %w", err)
	}
	byLocation := make(map[string][]MapResource)
	for _, m := range maps {
		locID := strconv.FormatInt(m.ResourceLocationID, 10)
		if m.ResourceLocationID == 0 || len(m.MapResources) == 0 || !wanted[locID] {
			continue
		}
		mapID := strconv.FormatInt(m.MapID, 10)
		for _, res := range m.MapResources {
			byLocation[locID] = append(byLocation[locID], MapResource{ResourceID: res.ResourceID, MapID: mapID})
		}
	}

	if err := sleep(ctx, c.pace()); err != nil {
		return nil, err
	}

	log.Info().Msg("requesting resource locations")
	locations, err := c.API.ResourceLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch resource locations: %w", err)
	}
	byID := make(map[string]bccamp.ResourceLocation)
	for _, loc := range locations {
		locID := strconv.FormatInt(loc.ResourceLocationID, 10)
		if wanted[locID] {
			byID[locID] = loc
		}
	}

	return &Lookup{Maps: byLocation, Locations: byID}, nil
}

type query struct {
	locationID string
	dateRange  reservation.SearchDateRange
}

// Seq is a lazy, finite, single-use sequence of bookable candidates.
// Queries run one at a time, in (location, merged-range) order, each
// preceded by the pacing delay.
type Seq struct {
	c       *Composer
	input   reservation.ComposeAvailabilityInput
	lookup  *Lookup
	queries []query
	next    int
	pending []reservation.ComposeAvailabilityOutput
	err     error
}

// Compose builds the candidate sequence for input. The lookup, when
// non-nil, is reused instead of re-fetched; pass the same one across
// repeated searches over an identical location set.
func (c *Composer) Compose(input reservation.ComposeAvailabilityInput, lookup *Lookup) *Seq {
	merged := reservation.MergeDateRanges(c.now(), input.DateRanges)
	var queries []query
	for _, locationID := range input.LocationIDs {
		for _, dr := range merged {
			queries = append(queries, query{locationID: locationID, dateRange: dr})
		}
	}
	return &Seq{c: c, input: input, lookup: lookup, queries: queries}
}

// Next returns the next candidate, or ok=false once the sequence is
// exhausted. Any API or lookup-consistency error aborts the sequence
// and is returned from every subsequent call.
func (s *Seq) Next(ctx context.Context) (reservation.ComposeAvailabilityOutput, bool, error) {
	for {
		if s.err != nil {
			return reservation.ComposeAvailabilityOutput{}, false, s.err
		}
		if len(s.pending) > 0 {
			out := s.pending[0]
			s.pending = s.pending[1:]
			return out, true, nil
		}
		if s.next >= len(s.queries) {
			return reservation.ComposeAvailabilityOutput{}, false, nil
		}
		if s.lookup == nil {
			lookup, err := s.c.BuildLookup(ctx, s.input.LocationIDs)
			if err != nil {
				s.err = err
				continue
			}
			s.lookup = lookup
		}
		q := s.queries[s.next]
		s.next++
		if err := s.run(ctx, q); err != nil {
			s.err = err
		}
	}
}

func (s *Seq) run(ctx context.Context, q query) error {
	log.Info().
		Str("location", q.locationID).
		Str("start", q.dateRange.StartDate).
		Str("end", q.dateRange.EndDate).
		Msg("querying availability")

	if err := sleep(ctx, s.c.pace()); err != nil {
		return err
	}
	entries, err := s.c.API.AvailabilityCards(ctx, bccamp.AvailabilityRequest{
		BookingCategoryID:      0,
		ResourceLocationID:     q.locationID,
		EquipmentCategoryID:    s.input.EquipmentID,
		SubEquipmentCategoryID: s.input.SubEquipmentID,
		StartDate:              q.dateRange.StartDate,
		EndDate:                q.dateRange.EndDate,
		Nights:                 s.input.Nights,
		PartySize:              1,
		PreferWeekends:         s.input.PreferWeekend,
		Seed:                   s.c.now(),
	})
	if err != nil {
		return fmt.Errorf("fetch availability for location %s: %w", q.locationID, err)
	}

	for _, entry := range entries {
		if len(entry.DateRanges) == 0 {
			continue
		}
		name, mapID, err := s.resolve(q.locationID, entry.ResourceID)
		if err != nil {
			return err
		}
		for _, dr := range entry.DateRanges {
			out := reservation.ComposeAvailabilityOutput{
				Start:                dateTimeToDate(dr.Start),
				End:                  dateTimeToDate(dr.End),
				FixedStartDay:        dr.FixedStartDay,
				FixedEndDay:          dr.FixedEndDay,
				Duration:             dr.Duration,
				ResourceLocationID:   q.locationID,
				ResourceID:           entry.ResourceID,
				ResourceLocationName: name,
				MapID:                mapID,
				Nights:               s.input.Nights,
				EquipmentID:          s.input.EquipmentID,
				SubEquipmentID:       s.input.SubEquipmentID,
			}
			if !s.requested(out) {
				continue
			}
			s.pending = append(s.pending, out)
		}
	}
	return nil
}

// resolve maps a reported resource back to its display name and map id.
// A resource the lookup does not know is a consistency defect, not a
// droppable item.
func (s *Seq) resolve(locationID string, resourceID int64) (name, mapID string, err error) {
	loc, ok := s.lookup.Locations[locationID]
	if !ok || len(loc.LocalizedValues) == 0 {
		return "", "", fmt.Errorf("lookup inconsistency: no resource location record for %s", locationID)
	}
	for _, res := range s.lookup.Maps[locationID] {
		if res.ResourceID == resourceID {
			return loc.LocalizedValues[0].ShortName, res.MapID, nil
		}
	}
	return "", "", fmt.Errorf("lookup inconsistency: resource %d not on any map of location %s", resourceID, locationID)
}

// requested keeps only candidates matching one of the caller's exact,
// unmerged stay windows.
func (s *Seq) requested(out reservation.ComposeAvailabilityOutput) bool {
	for _, dr := range s.input.DateRanges {
		if out.Start == dr.StartDate && out.End == dr.EndDate {
			return true
		}
	}
	return false
}

func dateTimeToDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
