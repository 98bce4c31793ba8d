package weather

// CityInfo is the display-ready record for one city at one observation instant.
//
// SunriseDt carries the raw sunset timestamp and SunsetDt the raw sunrise
// timestamp. Existing dashboard clients read the fields that way; the readable
// strings are not swapped.
type CityInfo struct {
	Name            string  `json:"name"`
	Lon             string  `json:"lon"`
	Lat             string  `json:"lat"`
	Dt              int64   `json:"dt"`
	Temperature     float64 `json:"temperature"`
	FeelsLike       float64 `json:"feels_like"`
	Humidity        float64 `json:"humidity"`
	WindSpeed       float64 `json:"wind_speed"`
	Main            string  `json:"main"`
	Description     string  `json:"description"`
	CurrentTime     string  `json:"current_time"`
	SunriseDt       int64   `json:"sunrise_dt"`
	SunsetDt        int64   `json:"sunset_dt"`
	SunriseReadable string  `json:"sunrise_readable"`
	SunsetReadable  string  `json:"sunset_readable"`
	IsDay           bool    `json:"is_day"`
	Icon            string  `json:"icon"`
	CountryCode     string  `json:"country_code"`
}

// MomentWeather is one 3-hour forecast sample in the city's local time.
type MomentWeather struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
}
