package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcmexdev/mealprep-builder/internal/pkg/apperr"
)

const defaultMapboxURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Mapbox calls the Mapbox forward geocoding API.
type Mapbox struct {
	Token   string
	BaseURL string
	client  *http.Client
}

// NewMapbox returns a client for token. An empty token is allowed and makes
// every call fail as unavailable.
func NewMapbox(token string) *Mapbox {
	return &Mapbox{
		Token:   token,
		BaseURL: defaultMapboxURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type mapboxResponse struct {
	Features []struct {
		Center    []float64 `json:"center"`
		PlaceName string    `json:"place_name"`
	} `json:"features"`
}

func (c *Mapbox) Geocode(ctx context.Context, address string) (*Location, error) {
	if c.Token == "" {
		return nil, apperr.Unavailable("Geocoding unavailable")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.InvalidInput("address is required")
	}

	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&limit=1",
		c.BaseURL, url.PathEscape(address), url.QueryEscape(c.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Internal("Geocoding error", stripURL(err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("Geocoding failed", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperr.Upstream("Geocoding failed", fmt.Errorf("mapbox: status %d: %s", resp.StatusCode, body))
	}

	var data mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, apperr.Upstream("Geocoding failed", fmt.Errorf("mapbox: decode response: %w", err))
	}

	// center is [lng, lat]
	if len(data.Features) == 0 || len(data.Features[0].Center) < 2 {
		return nil, apperr.NotFound("Geocoding not found")
	}
	first := data.Features[0]
	return &Location{Lat: first.Center[1], Lng: first.Center[0], PlaceName: first.PlaceName}, nil
}

// stripURL drops the request URL, which carries the access token, from
// transport errors before they reach logs.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("mapbox: %s: %w", uerr.Op, uerr.Err)
	}
	return err
}
