package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/apperr"
	"github.com/vzahanych/weather-dashboard/internal/city"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap/zaptest"
)

type fakeService struct {
	cities      []city.City
	addErr      error
	infoErr     error
	seriesErr   error
	removedName string
	removedCC   string
	lastQuery   string
	summary     []weather.CityInfo
	series      []weather.MomentWeather
	coordinates city.City
}

func (f *fakeService) ListCities() []city.City { return f.cities }

func (f *fakeService) AddCity(ctx context.Context, query string) ([]city.City, error) {
	f.lastQuery = query
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.cities = append(f.cities, city.City{Name: query})
	return f.cities, nil
}

func (f *fakeService) RemoveCity(ctx context.Context, name, countryCode string) []city.City {
	f.removedName, f.removedCC = name, countryCode
	return f.cities
}

func (f *fakeService) GetCoordinates(ctx context.Context, query string) (city.City, error) {
	f.lastQuery = query
	return f.coordinates, f.addErr
}

func (f *fakeService) GetCityInfo(ctx context.Context, query string) (weather.CityInfo, error) {
	f.lastQuery = query
	if f.infoErr != nil {
		return weather.CityInfo{}, f.infoErr
	}
	return weather.CityInfo{Name: "Prague", CountryCode: "CZ"}, nil
}

func (f *fakeService) GetSummary(ctx context.Context) []weather.CityInfo { return f.summary }

func (f *fakeService) GetTimeseries(ctx context.Context, query string) ([]weather.MomentWeather, error) {
	f.lastQuery = query
	return f.series, f.seriesErr
}

func (f *fakeService) GetStats() map[string]interface{} {
	return map[string]interface{}{"tracked_cities": len(f.cities)}
}

func newRouter(t *testing.T, svc WeatherService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	cities := NewCitiesHandler(svc, logger)
	forecasts := NewWeatherHandler(svc, logger)
	health := NewHealthHandler(svc, logger)

	r := gin.New()
	r.GET("/api/info/get-all-cities", cities.List)
	r.POST("/api/weather/city/:city", cities.Add)
	r.POST("/api/weather/delete/:city", cities.Remove)
	r.GET("/api/weather/coordinates/:city", cities.Coordinates)
	r.GET("/api/weather/city/:city", forecasts.CityInfo)
	r.GET("/api/weather/summary", forecasts.Summary)
	r.GET("/api/weather/timeseries/:city", forecasts.Timeseries)
	r.GET("/health/ready", health.Readiness)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListCities(t *testing.T) {
	svc := &fakeService{cities: []city.City{{Name: "Prague", CountryCode: "CZ", Lon: 14.42, Lat: 50.09}}}
	w := do(newRouter(t, svc), http.MethodGet, "/api/info/get-all-cities")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"cities":[{"name":"Prague","country_code":"CZ","lon":14.42,"lat":50.09}]}`,
		w.Body.String())
}

func TestListCities_EmptyIsArray(t *testing.T) {
	svc := &fakeService{cities: []city.City{}}
	w := do(newRouter(t, svc), http.MethodGet, "/api/info/get-all-cities")
	assert.JSONEq(t, `{"cities":[]}`, w.Body.String())
}

func TestAddCity(t *testing.T) {
	svc := &fakeService{}
	w := do(newRouter(t, svc), http.MethodPost, "/api/weather/city/Saint%20Petersburg,RU")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Saint Petersburg,RU", svc.lastQuery)
}

func TestAddCity_NotFound(t *testing.T) {
	svc := &fakeService{addErr: apperr.NotFound("Could not find city.")}
	w := do(newRouter(t, svc), http.MethodPost, "/api/weather/city/Atlantis")

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "Could not find city.", body.Error)
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestAddCity_InvalidParam(t *testing.T) {
	svc := &fakeService{}
	w := do(newRouter(t, svc), http.MethodPost, "/api/weather/city/%20,CZ")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidParams, decodeError(t, w).Code)
	assert.Empty(t, svc.lastQuery)
}

func TestRemoveCity(t *testing.T) {
	svc := &fakeService{cities: []city.City{}}
	w := do(newRouter(t, svc), http.MethodPost, "/api/weather/delete/prague,CZ")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prague", svc.removedName)
	assert.Equal(t, "CZ", svc.removedCC)
	assert.JSONEq(t, `{"cities":[]}`, w.Body.String())
}

func TestRemoveCity_RequiresCountry(t *testing.T) {
	svc := &fakeService{}
	w := do(newRouter(t, svc), http.MethodPost, "/api/weather/delete/Prague")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, codeInvalidParams, decodeError(t, w).Code)
	assert.Empty(t, svc.removedName)
}

func TestCityInfo(t *testing.T) {
	svc := &fakeService{}
	w := do(newRouter(t, svc), http.MethodGet, "/api/weather/city/prague,CZ")

	require.Equal(t, http.StatusOK, w.Code)
	var info weather.CityInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "Prague", info.Name)
	assert.Equal(t, "prague,CZ", svc.lastQuery)
}

func TestCityInfo_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperr.NotFound("Could not find city."), http.StatusBadRequest, "NOT_FOUND"},
		{"provider status", apperr.Provider(http.StatusNotFound, "Error fetching data for X", nil), http.StatusNotFound, "PROVIDER_ERROR"},
		{"provider transport", apperr.Provider(0, "Error fetching data for X", errors.New("dial tcp")), http.StatusBadGateway, "PROVIDER_ERROR"},
		{"unexpected", apperr.Unexpected("Malformed weather payload", nil), http.StatusInternalServerError, "UNEXPECTED_ERROR"},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, "UNEXPECTED_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{infoErr: tc.err}
			w := do(newRouter(t, svc), http.MethodGet, "/api/weather/city/X")

			assert.Equal(t, tc.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tc.code, body.Code)
			assert.Empty(t, body.Details)
		})
	}
}

func TestSummary(t *testing.T) {
	svc := &fakeService{summary: []weather.CityInfo{{Name: "Taipei"}, {Name: "Sydney"}}}
	w := do(newRouter(t, svc), http.MethodGet, "/api/weather/summary")

	require.Equal(t, http.StatusOK, w.Code)
	var got []weather.CityInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Taipei", got[0].Name)
}

func TestTimeseries(t *testing.T) {
	svc := &fakeService{series: []weather.MomentWeather{{Date: "15.11.2023", Time: "00:13", Temperature: 4.27}}}
	w := do(newRouter(t, svc), http.MethodGet, "/api/weather/timeseries/Prague")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"date":"15.11.2023","time":"00:13","temperature":4.27}]`, w.Body.String())
}

func TestTimeseries_ProviderError(t *testing.T) {
	svc := &fakeService{seriesErr: apperr.Provider(http.StatusNotFound, "Error fetching data for Atlantis", nil)}
	w := do(newRouter(t, svc), http.MethodGet, "/api/weather/timeseries/Atlantis")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCoordinates(t *testing.T) {
	svc := &fakeService{coordinates: city.City{Name: "Sydney", CountryCode: "AU", Lon: 151.21, Lat: -33.87}}
	w := do(newRouter(t, svc), http.MethodGet, "/api/weather/coordinates/Sydney")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Sydney","country_code":"AU","lon":151.21,"lat":-33.87}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	svc := &fakeService{cities: []city.City{{Name: "Prague"}}}
	w := do(newRouter(t, svc), http.MethodGet, "/health/ready")

	require.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.EqualValues(t, 1, body.Details["tracked_cities"])
}
