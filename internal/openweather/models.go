package openweather

// CurrentPayload is the subset of the current-weather response the dashboard uses.
type CurrentPayload struct {
	Coord   Coord       `json:"coord"`
	Weather []Condition `json:"weather"`
	Main    MainStats   `json:"main"`
	Wind    Wind        `json:"wind"`
	Dt      int64       `json:"dt"`
	Sys     Sys         `json:"sys"`
	// Timezone is the shift in seconds from UTC.
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type MainStats struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
}

type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type ForecastPayload struct {
	City ForecastCity    `json:"city"`
	List []ForecastEntry `json:"list"`
}

type ForecastCity struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone int    `json:"timezone"`
}

type ForecastEntry struct {
	Dt   int64        `json:"dt"`
	Main ForecastMain `json:"main"`
}

type ForecastMain struct {
	Temp float64 `json:"temp"`
}

// GeoCandidate is one entry of the direct geocoding response.
type GeoCandidate struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`
}
