package reservation

// Result is the terminal outcome of one booking attempt. There is no
// partial/pending state: ambiguous UI outcomes are resolved to one of
// these two before the engine returns.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// SearchDateRange is a requested stay window in YYYY-MM-DD form.
// The read API treats EndDate as exclusive; MergeDateRanges normalizes
// to inclusive internally.
type SearchDateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type PartyInfo struct {
	Adults int `json:"adults"`
}

type CardDetails struct {
	Number        string `json:"number"`
	NameOnCard    string `json:"nameOnCard"`
	SecurityCode  string `json:"securityCode"`
	ExpiringMonth int    `json:"expiringMonth"`
	ExpiringYear  int    `json:"expiringYear"`
}

type RetryDetails struct {
	RetryTimeInMins     int `json:"retryTimeInMins"`
	RetryIntervalInSecs int `json:"retryIntervalInSecs"`
}

// AuthDetails are the site account credentials. They are passed through
// to the login flow and never persisted.
type AuthDetails struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ReservationDetails struct {
	PartyInfo    PartyInfo     `json:"partyInfo"`
	CardDetails  CardDetails   `json:"cardDetails"`
	RetryDetails *RetryDetails `json:"retryDetails,omitempty"`
}

// ComposeAvailabilityInput is one availability search: which locations,
// which equipment, which stay windows.
type ComposeAvailabilityInput struct {
	LocationIDs    []string          `json:"locationIds"`
	EquipmentID    string            `json:"equipmentId"`
	SubEquipmentID string            `json:"subEquipmentId"`
	DateRanges     []SearchDateRange `json:"dateRanges"`
	Nights         string            `json:"nights"`
	PreferWeekend  bool              `json:"preferWeekend"`
}

// ComposeAvailabilityOutput is one bookable candidate slot as emitted by
// the availability composer. Consumed at most once, by the booking engine.
type ComposeAvailabilityOutput struct {
	Start                string `json:"start"`
	End                  string `json:"end"`
	FixedStartDay        int    `json:"fixedStartDay"`
	FixedEndDay          int    `json:"fixedEndDay"`
	Duration             string `json:"duration"`
	ResourceLocationID   string `json:"resourceLocationId"`
	ResourceID           int64  `json:"resourceId"`
	ResourceLocationName string `json:"resourceLocationName"`
	MapID                string `json:"mapId"`
	Nights               string `json:"nights"`
	EquipmentID          string `json:"equipmentId"`
	SubEquipmentID       string `json:"subEquipmentId"`
}

// ReservationConfig is one stored search + checkout configuration.
type ReservationConfig struct {
	ID     string                   `json:"id"`
	Search ComposeAvailabilityInput `json:"search"`
	ReservationDetails
}

// ConfigRecord is the unit of persistence: an ordered list of configs
// stored and fetched together under one record id.
type ConfigRecord []ReservationConfig
