// File path: internal/environment/maps.go
package environment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/nicodishanthj/Katral_realty/internal/config"
)

// Point is a geocoded coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is one point of interest returned by a nearby search.
type Place struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

// Locator resolves addresses and finds points of interest around them.
type Locator interface {
	Geocode(ctx context.Context, address string) (Point, bool, error)
	Nearby(ctx context.Context, at Point, radius int, placeType string) ([]Place, error)
}

// MapsLocator is the Locator backed by the Google Maps web services.
type MapsLocator struct {
	client *maps.Client
}

// NewMapsLocator builds a client from cfg. The API key is mandatory.
func NewMapsLocator(cfg config.MapsConfig) (*MapsLocator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("maps: api key required")
	}
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(base, "/")))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps: new client: %w", err)
	}
	return &MapsLocator{client: client}, nil
}

// Geocode returns the first match for address. ok is false when Maps found
// nothing.
func (m *MapsLocator) Geocode(ctx context.Context, address string) (Point, bool, error) {
	results, err := m.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return Point{}, false, fmt.Errorf("maps: geocode: %w", err)
	}
	if len(results) == 0 {
		return Point{}, false, nil
	}
	loc := results[0].Geometry.Location
	return Point{Lat: loc.Lat, Lng: loc.Lng}, true, nil
}

func (m *MapsLocator) Nearby(ctx context.Context, at Point, radius int, placeType string) ([]Place, error) {
	resp, err := m.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: at.Lat, Lng: at.Lng},
		Radius:   uint(radius),
		Type:     maps.PlaceType(placeType),
	})
	if err != nil {
		return nil, fmt.Errorf("maps: nearby %s: %w", placeType, err)
	}
	label := strings.ReplaceAll(placeType, "_", " ")
	places := make([]Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		places = append(places, Place{
			Name:    orUnknown(result.Name),
			Type:    label,
			Address: orUnknown(result.Vicinity),
		})
	}
	return places, nil
}

func orUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Desconocido"
	}
	return value
}
