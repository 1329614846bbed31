package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/camp-scheduler/internal/availability"
	"github.com/example/camp-scheduler/internal/bccamp"
	"github.com/example/camp-scheduler/internal/browser"
	"github.com/example/camp-scheduler/internal/reservation"
)

// fakeDriver scripts the page: the login race always reports an
// authenticated session, and claim races pop outcomes from a queue
// (empty queue means success).
type fakeDriver struct {
	claimOutcomes []string
	failSelector  string
	actions       []string
	closeCalls    int
}

func (f *fakeDriver) step(op, sel string) error {
	f.actions = append(f.actions, op+" "+sel)
	if f.failSelector != "" && sel == f.failSelector {
		return errors.New("element wait timed out: " + sel)
	}
	return nil
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	return f.step("navigate", url)
}
func (f *fakeDriver) WaitNavigation(ctx context.Context) error { return f.step("waitnav", "") }
func (f *fakeDriver) WaitVisible(ctx context.Context, sel string) error {
	return f.step("wait", sel)
}
func (f *fakeDriver) Click(ctx context.Context, sel string) error { return f.step("click", sel) }
func (f *fakeDriver) ClickIfPresent(ctx context.Context, sel string) error {
	return f.step("clickif", sel)
}
func (f *fakeDriver) Type(ctx context.Context, sel, text string) error {
	return f.step("type", sel)
}
func (f *fakeDriver) Clear(ctx context.Context, sel string) error { return f.step("clear", sel) }
func (f *fakeDriver) Reload(ctx context.Context) error            { return f.step("reload", "") }
func (f *fakeDriver) Close() error {
	f.closeCalls++
	return nil
}

func (f *fakeDriver) WaitAny(ctx context.Context, sels ...string) (string, error) {
	for _, sel := range sels {
		if sel == selWelcome {
			return selWelcome, nil
		}
	}
	if len(f.claimOutcomes) == 0 {
		return selClaimSuccess, nil
	}
	out := f.claimOutcomes[0]
	f.claimOutcomes = f.claimOutcomes[1:]
	return out, nil
}

type fakeSessions struct {
	opened []*fakeDriver
	make   func() *fakeDriver
}

func (f *fakeSessions) factory(ctx context.Context) (browser.Driver, error) {
	d := &fakeDriver{}
	if f.make != nil {
		d = f.make()
	}
	f.opened = append(f.opened, d)
	return d, nil
}

type fakeSource struct {
	items []reservation.ComposeAvailabilityOutput
	err   error
	calls int
}

func (f *fakeSource) Next(ctx context.Context) (reservation.ComposeAvailabilityOutput, bool, error) {
	f.calls++
	if f.err != nil {
		return reservation.ComposeAvailabilityOutput{}, false, f.err
	}
	if len(f.items) == 0 {
		return reservation.ComposeAvailabilityOutput{}, false, nil
	}
	item := f.items[0]
	f.items = f.items[1:]
	return item, true, nil
}

func candidate() reservation.ComposeAvailabilityOutput {
	return reservation.ComposeAvailabilityOutput{
		Start:              "2025-06-01",
		End:                "2025-06-03",
		ResourceLocationID: "100",
		ResourceID:         7,
		MapID:              "55",
		Nights:             "2",
		EquipmentID:        "1",
		SubEquipmentID:     "2",
	}
}

func details() reservation.ReservationDetails {
	return reservation.ReservationDetails{
		PartyInfo: reservation.PartyInfo{Adults: 4},
		CardDetails: reservation.CardDetails{
			Number:        "4111111111111111",
			NameOnCard:    "Jane Camper",
			SecurityCode:  "123",
			ExpiringMonth: 12,
			ExpiringYear:  2026,
		},
	}
}

func testEngine(sessions *fakeSessions) *Engine {
	return &Engine{
		Sessions: sessions.factory,
		Now:      func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) },
		Sleep:    func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func TestMakeReservationSuccess(t *testing.T) {
	sessions := &fakeSessions{}
	e := testEngine(sessions)

	res := e.MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{items: []reservation.ComposeAvailabilityOutput{candidate()}},
		Details: details(),
	})
	if res != reservation.ResultSuccess {
		t.Fatalf("result = %s", res)
	}
	if len(sessions.opened) != 1 {
		t.Fatalf("opened %d sessions, want 1", len(sessions.opened))
	}
	if sessions.opened[0].closeCalls != 1 {
		t.Fatalf("close called %d times, want 1", sessions.opened[0].closeCalls)
	}
}

func TestMakeReservationConsumesOneCandidate(t *testing.T) {
	sessions := &fakeSessions{}
	src := &fakeSource{items: []reservation.ComposeAvailabilityOutput{
		candidate(), candidate(), candidate(),
	}}
	res := testEngine(sessions).MakeReservation(context.Background(), CreateReservation{
		Source:  src,
		Details: details(),
	})
	if res != reservation.ResultSuccess {
		t.Fatalf("result = %s", res)
	}
	if src.calls != 1 {
		t.Fatalf("source pulled %d times, want 1", src.calls)
	}
	if len(sessions.opened) != 1 {
		t.Fatalf("opened %d sessions, want 1", len(sessions.opened))
	}
}

func TestMakeReservationNoCandidates(t *testing.T) {
	sessions := &fakeSessions{}
	res := testEngine(sessions).MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{},
		Details: details(),
	})
	if res != reservation.ResultFailure {
		t.Fatalf("result = %s", res)
	}
	if len(sessions.opened) != 0 {
		t.Fatalf("opened %d sessions, want 0", len(sessions.opened))
	}
}

func TestMakeReservationSourceError(t *testing.T) {
	sessions := &fakeSessions{}
	res := testEngine(sessions).MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{err: errors.New("api down")},
		Details: details(),
	})
	if res != reservation.ResultFailure {
		t.Fatalf("result = %s", res)
	}
	if len(sessions.opened) != 0 {
		t.Fatalf("opened %d sessions, want 0", len(sessions.opened))
	}
}

func TestMakeReservationRetriesExhaustedClaims(t *testing.T) {
	// Every claim is rejected and retryTimeInMins is zero, so each
	// attempt raises a retryable error immediately, without sleeping.
	sessions := &fakeSessions{make: func() *fakeDriver {
		return &fakeDriver{claimOutcomes: []string{selClaimFailure}}
	}}
	var slept int
	e := testEngine(sessions)
	e.Sleep = func(ctx context.Context, d time.Duration) error {
		slept++
		return nil
	}

	det := details()
	det.RetryDetails = &reservation.RetryDetails{RetryTimeInMins: 0, RetryIntervalInSecs: 1}
	res := e.MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{items: []reservation.ComposeAvailabilityOutput{candidate()}},
		Details: det,
	})
	if res != reservation.ResultFailure {
		t.Fatalf("result = %s", res)
	}
	if slept != 0 {
		t.Errorf("slept %d times, want 0", slept)
	}
	if len(sessions.opened) != 3 {
		t.Fatalf("opened %d sessions, want 3", len(sessions.opened))
	}
	for i, d := range sessions.opened {
		if d.closeCalls != 1 {
			t.Errorf("session %d closed %d times, want 1", i, d.closeCalls)
		}
	}
}

func TestClaimRetryWithinDeadline(t *testing.T) {
	sessions := &fakeSessions{make: func() *fakeDriver {
		return &fakeDriver{claimOutcomes: []string{selClaimFailure, selClaimSuccess}}
	}}
	var slept []time.Duration
	e := testEngine(sessions)
	e.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	det := details()
	det.RetryDetails = &reservation.RetryDetails{RetryTimeInMins: 5, RetryIntervalInSecs: 2}
	res := e.MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{items: []reservation.ComposeAvailabilityOutput{candidate()}},
		Details: det,
	})
	if res != reservation.ResultSuccess {
		t.Fatalf("result = %s", res)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("sleeps = %v, want one of 2s", slept)
	}
	if len(sessions.opened) != 1 {
		t.Fatalf("opened %d sessions, want 1", len(sessions.opened))
	}
	reloaded := false
	for _, a := range sessions.opened[0].actions {
		if a == "reload " {
			reloaded = true
		}
	}
	if !reloaded {
		t.Error("page was not reloaded between claim tries")
	}
}

func TestCheckoutStepFailureIsTerminal(t *testing.T) {
	sessions := &fakeSessions{make: func() *fakeDriver {
		return &fakeDriver{failSelector: selConfirmPolicies}
	}}
	res := testEngine(sessions).MakeReservation(context.Background(), CreateReservation{
		Source:  &fakeSource{items: []reservation.ComposeAvailabilityOutput{candidate()}},
		Details: details(),
	})
	if res != reservation.ResultFailure {
		t.Fatalf("result = %s", res)
	}
	if len(sessions.opened) != 1 {
		t.Fatalf("opened %d sessions, want 1 (no retry on unexpected error)", len(sessions.opened))
	}
	if sessions.opened[0].closeCalls != 1 {
		t.Fatalf("close called %d times, want 1", sessions.opened[0].closeCalls)
	}
}

type stubAPI struct{}

func (stubAPI) Maps(ctx context.Context) ([]bccamp.ParkMap, error) {
	return []bccamp.ParkMap{
		{MapID: 55, ResourceLocationID: 100, MapResources: []bccamp.MapResource{{ResourceID: 7}}},
	}, nil
}

func (stubAPI) ResourceLocations(ctx context.Context) ([]bccamp.ResourceLocation, error) {
	return []bccamp.ResourceLocation{
		{ResourceLocationID: 100, LocalizedValues: []bccamp.LocalizedValue{{ShortName: "Alice Lake"}}},
	}, nil
}

func (stubAPI) AvailabilityCards(ctx context.Context, req bccamp.AvailabilityRequest) ([]bccamp.ResourceAvailability, error) {
	return []bccamp.ResourceAvailability{
		{ResourceID: 7, DateRanges: []bccamp.DateRange{
			{Start: "2025-06-01T00:00:00", End: "2025-06-03T00:00:00", Duration: "2"},
		}},
	}, nil
}

func TestEndToEndComposeAndBook(t *testing.T) {
	comp := &availability.Composer{
		API:  stubAPI{},
		Pace: time.Nanosecond,
		Now:  func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
	seq := comp.Compose(reservation.ComposeAvailabilityInput{
		LocationIDs:    []string{"100"},
		EquipmentID:    "1",
		SubEquipmentID: "2",
		DateRanges:     []reservation.SearchDateRange{{StartDate: "2025-06-01", EndDate: "2025-06-03"}},
		Nights:         "2",
	}, nil)

	sessions := &fakeSessions{}
	res := testEngine(sessions).MakeReservation(context.Background(), CreateReservation{
		Source:  seq,
		Details: details(),
	})
	if res != reservation.ResultSuccess {
		t.Fatalf("result = %s", res)
	}
	if len(sessions.opened) != 1 || sessions.opened[0].closeCalls != 1 {
		t.Fatalf("sessions = %+v", sessions.opened)
	}
}
