package handlers

import (
	"context"

	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/weather"
)

// WeatherService is the aggregator surface the HTTP layer depends on.
type WeatherService interface {
	ListCities() []city.City
	AddCity(ctx context.Context, query string) ([]city.City, error)
	RemoveCity(ctx context.Context, name, countryCode string) []city.City
	GetCoordinates(ctx context.Context, query string) (city.City, error)
	GetCityInfo(ctx context.Context, query string) (weather.CityInfo, error)
	GetSummary(ctx context.Context) []weather.CityInfo
	GetTimeseries(ctx context.Context, query string) ([]weather.MomentWeather, error)
	GetStats() map[string]interface{}
}
