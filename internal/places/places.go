// Package places queries the Google Places Nearby Search API for restaurants
// that are not part of the curated directory.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"foodmap/internal/model"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	DefaultRadius  = 1500
	MaxRadius      = 50000
)

// Client 未設定 APIKey 時 Nearby 直接回傳空列表
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nearbyResponse struct {
	Results []struct {
		PlaceID  string  `json:"place_id"`
		Name     string  `json:"name"`
		Vicinity string  `json:"vicinity"`
		Rating   float64 `json:"rating"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Photos []struct {
			PhotoReference   string   `json:"photo_reference"`
			HTMLAttributions []string `json:"html_attributions"`
		} `json:"photos"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Nearby returns restaurants around (lat, lng) within radius meters.
func (c *Client) Nearby(ctx context.Context, lat, lng float64, radius int) ([]model.NearbyPlace, error) {
	out := []model.NearbyPlace{}
	if c.APIKey == "" {
		return out, nil
	}

	q := url.Values{}
	q.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(radius))
	q.Set("type", "restaurant")
	q.Set("key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Nearby: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Nearby: unexpected status %d", resp.StatusCode)
	}

	var result nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("Nearby: %w", err)
	}

	switch result.Status {
	case "OK":
	case "ZERO_RESULTS":
		return out, nil
	default:
		return nil, fmt.Errorf("Nearby: API error: %s %s", result.Status, result.ErrorMessage)
	}

	for _, r := range result.Results {
		p := model.NearbyPlace{
			PlaceID:   r.PlaceID,
			Name:      r.Name,
			Address:   r.Vicinity,
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
			Rating:    r.Rating,
		}
		if len(r.Photos) > 0 {
			p.PhotoReference = r.Photos[0].PhotoReference
			if len(r.Photos[0].HTMLAttributions) > 0 {
				p.PhotoCredit = tagPattern.ReplaceAllString(r.Photos[0].HTMLAttributions[0], "")
			}
		}
		out = append(out, p)
	}
	return out, nil
}
