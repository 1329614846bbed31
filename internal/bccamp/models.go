package bccamp

import "time"

type LocalizedValue struct {
	CultureName string `json:"cultureName"`
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	Description string `json:"description"`
}

// MapResource ties a bookable resource to the park map it is drawn on.
type MapResource struct {
	ResourceID int64 `json:"resourceId"`
	IconType   int   `json:"iconType"`
}

type ParkMap struct {
	MapID              int64         `json:"mapId"`
	ResourceLocationID int64         `json:"resourceLocationId"`
	MapResources       []MapResource `json:"mapResources"`
}

type ResourceLocation struct {
	ResourceLocationID int64            `json:"resourceLocationId"`
	LocalizedValues    []LocalizedValue `json:"localizedValues"`
}

type SubEquipmentCategory struct {
	SubEquipmentCategoryID int64            `json:"subEquipmentCategoryId"`
	LocalizedValues        []LocalizedValue `json:"localizedValues"`
}

type EquipmentCategory struct {
	EquipmentCategoryID    int64                  `json:"equipmentCategoryId"`
	LocalizedValues        []LocalizedValue       `json:"localizedValues"`
	SubEquipmentCategories []SubEquipmentCategory `json:"subEquipmentCategories"`
}

type ResourceCategory struct {
	ResourceCategoryID int64            `json:"resourceCategoryId"`
	LocalizedValues    []LocalizedValue `json:"localizedValues"`
}

// DateRange is one open window reported for a resource. Start and End
// carry a date-time; the composer trims them to plain dates.
type DateRange struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	FixedStartDay int    `json:"fixedStartDay"`
	FixedEndDay   int    `json:"fixedEndDay"`
	Duration      string `json:"duration"`
}

type ResourceAvailability struct {
	ResourceID                       int64       `json:"resourceId"`
	DateRanges                       []DateRange `json:"dateRanges"`
	HasAdditionalAvailableDateRanges bool        `json:"hasAdditionalAvailableDateRanges"`
}

// AvailabilityRequest is the search tuple for the availability/cards
// endpoint. Optional numeric fields are serialized as the literal
// string "null" when absent, matching what the site's own frontend sends.
type AvailabilityRequest struct {
	ResourceID             *int64
	BookingCategoryID      int
	ResourceLocationID     string
	EquipmentCategoryID    string
	SubEquipmentCategoryID string
	NumEquipment           *int
	StartDate              string
	EndDate                string
	Nights                 string
	BoatLength             *int
	BoatDraft              *int
	BoatWidth              *int
	PartySize              int
	PreferWeekends         bool
	Seed                   time.Time
}
