package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/reservation"
)

type fakeAPI struct {
	maps      []bccamp.ParkMap
	locations []bccamp.ResourceLocation
	cards     map[string][]bccamp.ResourceAvailability // keyed by locationID|startDate

	mapCalls  int
	locCalls  int
	cardCalls []string
	cardErr   error
}

func (f *fakeAPI) Maps(ctx context.Context) ([]bccamp.ParkMap, error) {
	f.mapCalls++
	return f.maps, nil
}

func (f *fakeAPI) ResourceLocations(ctx context.Context) ([]bccamp.ResourceLocation, error) {
	f.locCalls++
	return f.locations, nil
}

func (f *fakeAPI) AvailabilityCards(ctx context.Context, req bccamp.AvailabilityRequest) ([]bccamp.ResourceAvailability, error) {
	key := req.ResourceLocationID + "|" + req.StartDate
	f.cardCalls = append(f.cardCalls, key)
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	return f.cards[key], nil
}

func testComposer(api ReadAPI) *Composer {
	return &Composer{
		API:  api,
		Pace: time.Nanosecond,
		Now:  func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func locationFixture() ([]bccamp.ParkMap, []bccamp.ResourceLocation) {
	maps := []bccamp.ParkMap{
		{MapID: 55, ResourceLocationID: 100, MapResources: []bccamp.MapResource{{ResourceID: 7}}},
		{MapID: 56, ResourceLocationID: 200, MapResources: []bccamp.MapResource{{ResourceID: 9}}},
		{MapID: 57, ResourceLocationID: 300, MapResources: nil}, // no resources, filtered out
	}
	locations := []bccamp.ResourceLocation{
		{ResourceLocationID: 100, LocalizedValues: []bccamp.LocalizedValue{{ShortName: "Alice Lake"}}},
		{ResourceLocationID: 200, LocalizedValues: []bccamp.LocalizedValue{{ShortName: "Golden Ears"}}},
	}
	return maps, locations
}

func drain(t *testing.T, seq *Seq) []reservation.ComposeAvailabilityOutput {
	t.Helper()
	var out []reservation.ComposeAvailabilityOutput
	for {
		item, ok, err := seq.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

func TestComposeFiltersToRequestedWindows(t *testing.T) {
	maps, locations := locationFixture()
	api := &fakeAPI{
		maps:      maps,
		locations: locations,
		cards: map[string][]bccamp.ResourceAvailability{
			// Merged query window spans July; only the exact requested
			// window may survive.
			"100|2024-07-10": {{
				ResourceID: 7,
				DateRanges: []bccamp.DateRange{
					{Start: "2024-07-10T00:00:00", End: "2024-07-12T00:00:00", Duration: "2"},
					{Start: "2024-07-15T00:00:00", End: "2024-07-17T00:00:00", Duration: "2"},
				},
			}},
		},
	}
	seq := testComposer(api).Compose(reservation.ComposeAvailabilityInput{
		LocationIDs:    []string{"100"},
		EquipmentID:    "1",
		SubEquipmentID: "2",
		DateRanges:     []reservation.SearchDateRange{{StartDate: "2024-07-10", EndDate: "2024-07-12"}},
		Nights:         "2",
	}, nil)

	got := drain(t, seq)
	if len(got) != 1 {
		t.Fatalf("candidates = %+v, want exactly one", got)
	}
	c := got[0]
	if c.Start != "2024-07-10" || c.End != "2024-07-12" {
		t.Errorf("window = %s..%s", c.Start, c.End)
	}
	if c.ResourceLocationName != "Alice Lake" || c.MapID != "55" || c.ResourceID != 7 {
		t.Errorf("enrichment = %+v", c)
	}
}

func TestComposeQueriesSequentiallyPerLocationAndRange(t *testing.T) {
	maps, locations := locationFixture()
	api := &fakeAPI{maps: maps, locations: locations}
	seq := testComposer(api).Compose(reservation.ComposeAvailabilityInput{
		LocationIDs: []string{"100", "200"},
		DateRanges: []reservation.SearchDateRange{
			{StartDate: "2024-05-01", EndDate: "2024-05-03"},
			{StartDate: "2024-09-01", EndDate: "2024-09-03"},
		},
		Nights: "2",
	}, nil)

	drain(t, seq)
	want := []string{"100|2024-05-01", "100|2024-09-01", "200|2024-05-01", "200|2024-09-01"}
	if len(api.cardCalls) != len(want) {
		t.Fatalf("calls = %v", api.cardCalls)
	}
	for i, w := range want {
		if api.cardCalls[i] != w {
			t.Fatalf("call %d = %s, want %s", i, api.cardCalls[i], w)
		}
	}
	if api.mapCalls != 1 || api.locCalls != 1 {
		t.Errorf("lookup fetched %d/%d times, want once", api.mapCalls, api.locCalls)
	}
}

func TestComposeReusesProvidedLookup(t *testing.T) {
	maps, locations := locationFixture()
	api := &fakeAPI{maps: maps, locations: locations}
	comp := testComposer(api)

	lookup, err := comp.BuildLookup(context.Background(), []string{"100"})
	if err != nil {
		t.Fatal(err)
	}
	api.mapCalls, api.locCalls = 0, 0

	input := reservation.ComposeAvailabilityInput{
		LocationIDs: []string{"100"},
		DateRanges:  []reservation.SearchDateRange{{StartDate: "2024-05-01", EndDate: "2024-05-03"}},
		Nights:      "2",
	}
	drain(t, comp.Compose(input, lookup))
	drain(t, comp.Compose(input, lookup))
	if api.mapCalls != 0 || api.locCalls != 0 {
		t.Errorf("lookup refetched %d/%d times", api.mapCalls, api.locCalls)
	}
}

func TestComposeUnknownResourceIsFatal(t *testing.T) {
	maps, locations := locationFixture()
	api := &fakeAPI{
		maps:      maps,
		locations: locations,
		cards: map[string][]bccamp.ResourceAvailability{
			"100|2024-05-01": {{
				ResourceID: 999, // not on any map of location 100
				DateRanges: []bccamp.DateRange{{Start: "2024-05-01T00:00:00", End: "2024-05-03T00:00:00"}},
			}},
		},
	}
	seq := testComposer(api).Compose(reservation.ComposeAvailabilityInput{
		LocationIDs: []string{"100"},
		DateRanges:  []reservation.SearchDateRange{{StartDate: "2024-05-01", EndDate: "2024-05-03"}},
		Nights:      "2",
	}, nil)

	_, _, err := seq.Next(context.Background())
	if err == nil {
		t.Fatal("expected lookup-consistency error")
	}
	// The sequence stays aborted.
	if _, _, err2 := seq.Next(context.Background()); err2 == nil {
		t.Fatal("expected sequence to remain aborted")
	}
}

func TestComposeAPIErrorAbortsSequence(t *testing.T) {
	maps, locations := locationFixture()
	api := &fakeAPI{maps: maps, locations: locations, cardErr: errors.New("boom")}
	seq := testComposer(api).Compose(reservation.ComposeAvailabilityInput{
		LocationIDs: []string{"100"},
		DateRanges:  []reservation.SearchDateRange{{StartDate: "2024-05-01", EndDate: "2024-05-03"}},
		Nights:      "2",
	}, nil)

	if _, _, err := seq.Next(context.Background()); err == nil {
		t.Fatal("expected propagated API error")
	}
}

func TestComposeNoFutureRangesYieldsEmpty(t *testing.T) {
	api := &fakeAPI{}
	seq := testComposer(api).Compose(reservation.ComposeAvailabilityInput{
		LocationIDs: []string{"100"},
		DateRanges:  []reservation.SearchDateRange{{StartDate: "2020-01-01", EndDate: "2020-01-03"}},
		Nights:      "2",
	}, nil)

	if got := drain(t, seq); len(got) != 0 {
		t.Fatalf("candidates = %+v, want none", got)
	}
	if api.mapCalls != 0 {
		t.Errorf("lookup fetched with no queries to run")
	}
}
