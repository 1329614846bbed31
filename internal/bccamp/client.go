package bccamp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://camping.bcparks.ca/api/"

// Client is a thin JSON client for the booking site's public read
// endpoints. It carries no business logic; the availability composer
// owns filtering and pacing.
type Client struct {
	hc      *http.Client
	baseURL string
}

func New() *Client {
	return NewWithBaseURL(defaultBaseURL)
}

func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

func (c *Client) Maps(ctx context.Context) ([]ParkMap, error) {
	var out []ParkMap
	if err := c.getJSON(ctx, "maps", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResourceLocations(ctx context.Context) ([]ResourceLocation, error) {
	var out []ResourceLocation
	if err := c.getJSON(ctx, "resourceLocation", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Equipment(ctx context.Context) ([]EquipmentCategory, error) {
	var out []EquipmentCategory
	if err := c.getJSON(ctx, "equipment", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResourceCategories(ctx context.Context) ([]ResourceCategory, error) {
	var out []ResourceCategory
	if err := c.getJSON(ctx, "resourcecategory", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailabilityCards queries open date ranges for one (location,
// equipment, date-range) tuple. The endpoint wants the search tuple as
// query parameters on a POST with an empty JSON array body.
func (c *Client) AvailabilityCards(ctx context.Context, req AvailabilityRequest) ([]ResourceAvailability, error) {
	query := map[string]string{
		"resourceId":             optionalInt64(req.ResourceID),
		"bookingCategoryId":      strconv.Itoa(req.BookingCategoryID),
		"resourceLocationId":     req.ResourceLocationID,
		"equipmentCategoryId":    req.EquipmentCategoryID,
		"subEquipmentCategoryId": req.SubEquipmentCategoryID,
		"numEquipment":           optionalInt(req.NumEquipment),
		"startDate":              req.StartDate,
		"endDate":                req.EndDate,
		"nights":                 req.Nights,
		"filterData":             "[]",
		"boatLength":             optionalInt(req.BoatLength),
		"boatDraft":              optionalInt(req.BoatDraft),
		"boatWidth":              optionalInt(req.BoatWidth),
		"partySize":              strconv.Itoa(req.PartySize),
		"preferWeekends":         strconv.FormatBool(req.PreferWeekends),
		"seed":                   req.Seed.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	var out []ResourceAvailability
	if err := c.doJSON(ctx, http.MethodPost, "availability/cards", query, []byte("[]"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query map[string]string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, query, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, query map[string]string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36")
	req.Header.Set("accept", "application/json")
	if method == http.MethodPost {
		req.Header.Set("content-type", "application/json")
	}
	if query != nil {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().Str("endpoint", endpoint).Msg("request")
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d", method, endpoint, res.StatusCode)
	}
	log.Debug().Str("endpoint", endpoint).Msg("received response")
	return json.Unmarshal(b, out)
}

func optionalInt64(v *int64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatInt(*v, 10)
}

func optionalInt(v *int) string {
	if v == nil {
		return "null"
	}
	return strconv.Itoa(*v)
}
