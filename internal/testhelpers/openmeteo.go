package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// ForecastPath is the route served by FakeOpenMeteo.
const ForecastPath = "/v1/forecast"

// Hour is one hourly timestep in a fake forecast body.
type Hour struct {
	Time        string
	Temperature float64
	Humidity    float64
	WindSpeed   float64
}

// ForecastBody builds an Open-Meteo shaped response from hours.
func ForecastBody(hours ...Hour) map[string]interface{} {
	times := make([]string, 0, len(hours))
	temps := make([]float64, 0, len(hours))
	hums := make([]float64, 0, len(hours))
	winds := make([]float64, 0, len(hours))
	for _, h := range hours {
		times = append(times, h.Time)
		temps = append(temps, h.Temperature)
		hums = append(hums, h.Humidity)
		winds = append(winds, h.WindSpeed)
	}
	return map[string]interface{}{
		"latitude":  52.52,
		"longitude": 13.419998,
		"timezone":  "GMT",
		"hourly": map[string]interface{}{
			"time":                 times,
			"temperature_2m":       temps,
			"relative_humidity_2m": hums,
			"wind_speed_10m":       winds,
		},
	}
}

// FakeOpenMeteo is an httptest server answering GET /v1/forecast with a
// canned status and JSON body. It records every request's query and headers.
type FakeOpenMeteo struct {
	Server *httptest.Server

	mu      sync.Mutex
	status  int
	body    interface{}
	queries []url.Values
	headers []http.Header
}

// NewFakeOpenMeteo starts the server and closes it when t finishes.
// A nil body is written as an empty response.
func NewFakeOpenMeteo(t *testing.T, status int, body interface{}) *FakeOpenMeteo {
	t.Helper()
	f := &FakeOpenMeteo{status: status, body: body}

	router := mux.NewRouter()
	router.HandleFunc(ForecastPath, f.serveForecast).Methods(http.MethodGet)
	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the forecast endpoint of the fake.
func (f *FakeOpenMeteo) URL() string {
	return f.Server.URL + ForecastPath
}

// Requests returns the number of requests served.
func (f *FakeOpenMeteo) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// LastQuery returns the query string of the most recent request.
func (f *FakeOpenMeteo) LastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

// LastHeader returns the headers of the most recent request.
func (f *FakeOpenMeteo) LastHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.headers) == 0 {
		return nil
	}
	return f.headers[len(f.headers)-1]
}

func (f *FakeOpenMeteo) serveForecast(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	f.headers = append(f.headers, r.Header.Clone())
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch b := body.(type) {
	case nil:
	case string:
		_, _ = w.Write([]byte(b))
	default:
		_ = json.NewEncoder(w).Encode(b)
	}
}
