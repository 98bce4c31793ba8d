package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/cache"
	"github.com/vzahanych/weather-dashboard/internal/config"
)

// Client speaks the provider contract; every call goes through the response cache.
type Client struct {
	cache   *cache.ResponseCache
	apiKey  string
	baseURL string
	geoURL  string
}

func NewClient(cfg config.WeatherConfig, responses *cache.ResponseCache) *Client {
	return &Client{
		cache:   responses,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		geoURL:  strings.TrimSuffix(cfg.GeoURL, "/"),
	}
}

// Current fetches current weather for q ("city" or "city,CC") in metric units.
func (c *Client) Current(ctx context.Context, q string) (*CurrentPayload, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	var payload CurrentPayload
	if err := c.get(ctx, c.baseURL+"/weather", params, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Forecast fetches up to cnt 3-hour samples; truncation is up to the provider.
func (c *Client) Forecast(ctx context.Context, q string, cnt int) (*ForecastPayload, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("cnt", strconv.Itoa(cnt))

	var payload ForecastPayload
	if err := c.get(ctx, c.baseURL+"/forecast", params, q, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Geocode(ctx context.Context, name string, limit int) ([]GeoCandidate, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	var candidates []GeoCandidate
	if err := c.get(ctx, c.geoURL+"/direct", params, name, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, subject string, out interface{}) error {
	resp, err := c.cache.Get(ctx, cache.Request{
		Method: http.MethodGet,
		URL:    endpoint,
		Params: params,
	})
	if err != nil {
		return apperr.Provider(0, fmt.Sprintf("Error fetching data for %s", subject), err)
	}

	if resp.Status != http.StatusOK {
		return apperr.Provider(resp.Status,
			fmt.Sprintf("Error fetching data for %s: upstream responded %d", subject, resp.Status), nil)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperr.Unexpected(fmt.Sprintf("An unexpected error occurred decoding data for %s", subject), err)
	}

	return nil
}
