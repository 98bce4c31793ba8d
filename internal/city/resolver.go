package city

import (
	"context"
	"strings"

	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/openweather"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Geocoder interface {
	Geocode(ctx context.Context, name string, limit int) ([]openweather.GeoCandidate, error)
}

// Resolver turns free-text queries into canonical cities.
type Resolver struct {
	geocoder Geocoder
	limit    int
	logger   *zap.Logger
	tele     *telemetry.Telemetry
}

func NewResolver(geocoder Geocoder, limit int, logger *zap.Logger, tele *telemetry.Telemetry) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		limit:    limit,
		logger:   logger,
		tele:     tele,
	}
}

// Resolve geocodes the name part of query ("name" or "name,CC") and returns the
// first candidate, in provider order, that passes the country filter and
// matches the name or one of its localized names case-insensitively.
func (r *Resolver) Resolve(ctx context.Context, query string) (City, error) {
	ctx, span := r.tele.GetTracer().Start(ctx, "resolver.Resolve")
	defer span.End()

	name, countryCode, hasCountry := ParseQuery(query)
	span.SetAttributes(attribute.String("city", name), attribute.String("country_code", countryCode))

	candidates, err := r.geocoder.Geocode(ctx, name, r.limit)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return City{}, err
	}

	for _, candidate := range candidates {
		if hasCountry && !strings.EqualFold(candidate.Country, countryCode) {
			continue
		}
		if !matchesName(candidate, name) {
			continue
		}

		span.SetAttributes(attribute.Bool("success", true))
		r.logger.Debug("City resolved",
			zap.String("query", query),
			zap.String("city", candidate.Name),
			zap.String("country_code", candidate.Country))

		return City{
			Name:        candidate.Name,
			CountryCode: candidate.Country,
			Lat:         candidate.Lat,
			Lon:         candidate.Lon,
		}, nil
	}

	span.SetAttributes(attribute.Bool("success", false))
	r.logger.Info("No geocoding candidate accepted",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))

	return City{}, apperr.NotFound("Could not find city.")
}

func matchesName(candidate openweather.GeoCandidate, name string) bool {
	if strings.EqualFold(candidate.Name, name) {
		return true
	}
	for _, local := range candidate.LocalNames {
		if strings.EqualFold(local, name) {
			return true
		}
	}
	return false
}
