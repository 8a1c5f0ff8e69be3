package geocoding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/oksasatya/places-api/internal/domain/service"
)

// Nominatim resolves addresses against an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Nominatim{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

func (n *Nominatim) ResolveAddress(ctx context.Context, address string) (service.Coordinates, error) {
	u, err := url.Parse(n.BaseURL)
	if err != nil {
		return service.Coordinates{}, fmt.Errorf("geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("q", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return service.Coordinates{}, err
	}
	// Nominatim's usage policy rejects requests without an identifying agent.
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return service.Coordinates{}, fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return service.Coordinates{}, fmt.Errorf("geocoder status: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return service.Coordinates{}, fmt.Errorf("geocoder read: %w", err)
	}
	return parseSearchResult(body)
}

func parseSearchResult(body []byte) (service.Coordinates, error) {
	if !gjson.ValidBytes(body) {
		return service.Coordinates{}, fmt.Errorf("geocoder: invalid json response")
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return service.Coordinates{}, fmt.Errorf("geocoder: unexpected response shape")
	}
	first := res.Get("0")
	if !first.Exists() {
		return service.Coordinates{}, service.ErrNoResults
	}

	lat, ok := coordinate(first.Get("lat"))
	if !ok {
		return service.Coordinates{}, service.ErrIncompleteResult
	}
	lon, ok := coordinate(first.Get("lon"))
	if !ok {
		return service.Coordinates{}, service.ErrIncompleteResult
	}
	return service.Coordinates{Lat: lat, Lon: lon}, nil
}

// coordinate accepts both "40.74" and 40.74; Nominatim sends strings.
func coordinate(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Float(), true
	case gjson.String:
		f, err := strconv.ParseFloat(r.Str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var _ service.Geocoder = (*Nominatim)(nil)
