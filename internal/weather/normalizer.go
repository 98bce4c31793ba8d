package weather

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/openweather"
)

const (
	currentTimeLayout = "15:04 02.01.2006"
	clockLayout       = "15:04"
	dateLayout        = "02.01.2006"
)

type Normalizer struct {
	// iconURL is a format string taking the provider icon code.
	iconURL string
}

func NewNormalizer(iconURL string) *Normalizer {
	return &Normalizer{iconURL: iconURL}
}

// Current derives the display record from a raw current-weather payload.
// queryName is the caller's city name; it is title-cased rather than taken
// from the payload.
func (n *Normalizer) Current(raw *openweather.CurrentPayload, queryName string) (CityInfo, error) {
	if raw == nil {
		return CityInfo{}, apperr.Unexpected("An unexpected error occurred: empty weather payload", nil)
	}
	if len(raw.Weather) == 0 {
		return CityInfo{}, apperr.Unexpected(
			fmt.Sprintf("An unexpected error occurred: no weather conditions for %s", queryName), nil)
	}

	shift := raw.Timezone
	condition := raw.Weather[0]

	return CityInfo{
		Name:            city.TitleCase(queryName),
		Lon:             FormatLon(raw.Coord.Lon),
		Lat:             FormatLat(raw.Coord.Lat),
		Dt:              raw.Dt,
		Temperature:     round(raw.Main.Temp, 1),
		FeelsLike:       round(raw.Main.FeelsLike, 1),
		Humidity:        raw.Main.Humidity,
		WindSpeed:       round(raw.Wind.Speed, 1),
		Main:            condition.Main,
		Description:     condition.Description,
		CurrentTime:     LocalTime(raw.Dt, shift).Format(currentTimeLayout),
		SunriseDt:       raw.Sys.Sunset,
		SunsetDt:        raw.Sys.Sunrise,
		SunriseReadable: LocalTime(raw.Sys.Sunrise, shift).Format(clockLayout),
		SunsetReadable:  LocalTime(raw.Sys.Sunset, shift).Format(clockLayout),
		IsDay:           IsDay(raw.Dt, raw.Sys.Sunrise, raw.Sys.Sunset),
		Icon:            fmt.Sprintf(n.iconURL, condition.Icon),
		CountryCode:     raw.Sys.Country,
	}, nil
}

// Forecast converts every raw sample, in the order received, to local date and
// time strings. Temperatures are passed through unrounded.
func (n *Normalizer) Forecast(raw *openweather.ForecastPayload) []MomentWeather {
	if raw == nil {
		return []MomentWeather{}
	}

	shift := raw.City.Timezone
	series := make([]MomentWeather, 0, len(raw.List))
	for _, entry := range raw.List {
		local := LocalTime(entry.Dt, shift)
		series = append(series, MomentWeather{
			Date:        local.Format(dateLayout),
			Time:        local.Format(clockLayout),
			Temperature: entry.Main.Temp,
		})
	}
	return series
}

// LocalTime renders a Unix timestamp as wall-clock time shifted by offset seconds.
func LocalTime(unix int64, offset int) time.Time {
	return time.Unix(unix, 0).UTC().Add(time.Duration(offset) * time.Second)
}

// IsDay compares unshifted epochs; the boundaries themselves count as night.
func IsDay(dt, sunrise, sunset int64) bool {
	return dt > sunrise && dt < sunset
}

func FormatLon(lon float64) string {
	return formatCoordinate(lon, "E", "W")
}

func FormatLat(lat float64) string {
	return formatCoordinate(lat, "N", "S")
}

// formatCoordinate rounds to two decimals; zero counts as non-negative.
func formatCoordinate(v float64, positive, negative string) string {
	v = round(v, 2)
	suffix := positive
	if v < 0 {
		suffix = negative
	}
	return strconv.FormatFloat(math.Abs(v), 'f', -1, 64) + "°" + suffix
}

// round rounds the exact binary value half to even, so 2.25 -> 2.2 and
// 12.45 (stored as 12.4499...) -> 12.4.
func round(v float64, places int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return r
}
