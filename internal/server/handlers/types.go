package handlers

import "github.com/vzahanych/weather-dashboard/internal/city"

// CityParam is the :city path segment of the weather routes.
type CityParam struct {
	City string `uri:"city" json:"city" binding:"required" validate:"required,max=100,cityquery"`
}

// CityKeyParam is the :city path segment of the delete route, always "name,CC".
type CityKeyParam struct {
	City string `uri:"city" json:"city" binding:"required" validate:"required,max=100,citykey"`
}

// CitiesResponse wraps the tracked-city list.
type CitiesResponse struct {
	Cities []city.City `json:"cities"`
}

type ErrorResponse struct {
	Error   string `json:"error" validate:"required,min=1,max=500"`
	Code    string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details string `json:"details,omitempty" validate:"omitempty,max=1000"`
}

type HealthResponse struct {
	Status    string                 `json:"status" validate:"required,oneof=ok alive ready unavailable"`
	Uptime    string                 `json:"uptime" validate:"required"`
	Timestamp string                 `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
