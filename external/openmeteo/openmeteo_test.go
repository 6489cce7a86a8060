package openmeteo_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/floodwatch-blr/flood-api/external/openmeteo"
)

var frozenNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

const rainBody = `{
	"daily": {"rain_sum": [12.5]},
	"hourly": {"rain": [0.0, 1.2, 4.5, 0.3]}
}`

func TestRain(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rain", r.URL.Query().Get("hourly"))
		assert.Equal(t, "rain_sum", r.URL.Query().Get("daily"))
		assert.Equal(t, "2024-06-20", r.URL.Query().Get("start_date"))
		_, _ = w.Write([]byte(rainBody))
	}))
	defer ts.Close()

	c := openmeteo.New(ts.URL, "http://127.0.0.1:1", clockwork.NewFakeClockAt(frozenNow))
	total, maxHour, err := c.Rain(12.97, 77.59, "2024-06-20")
	assert.Nil(t, err, "wrong Rain")
	assert.Equal(t, 12.5, total)
	assert.Equal(t, 4.5, maxHour)
}

func TestRainSelectsArchiveForPastDates(t *testing.T) {
	forecastHit := false
	archiveHit := false

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		forecastHit = true
		_, _ = w.Write([]byte(rainBody))
	}))
	defer forecast.Close()

	archive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		archiveHit = true
		_, _ = w.Write([]byte(rainBody))
	}))
	defer archive.Close()

	c := openmeteo.New(forecast.URL, archive.URL, clockwork.NewFakeClockAt(frozenNow))

	_, _, err := c.Rain(12.97, 77.59, "2024-06-01")
	assert.Nil(t, err)
	assert.True(t, archiveHit, "past date must hit the archive endpoint")
	assert.False(t, forecastHit)

	archiveHit = false
	_, _, err = c.Rain(12.97, 77.59, "2024-06-15")
	assert.Nil(t, err)
	assert.True(t, forecastHit, "today must hit the forecast endpoint")
	assert.False(t, archiveHit)
}

func TestRainMissingDailyData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"rain": [1.0]}}`))
	}))
	defer ts.Close()

	c := openmeteo.New(ts.URL, ts.URL, clockwork.NewFakeClockAt(frozenNow))
	_, _, err := c.Rain(12.97, 77.59, "2024-06-20")
	assert.NotNil(t, err, "missing daily block must be an error")
}

func TestRainNullRainSumIsZero(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {"rain_sum": [null]}, "hourly": {"rain": []}}`))
	}))
	defer ts.Close()

	c := openmeteo.New(ts.URL, ts.URL, clockwork.NewFakeClockAt(frozenNow))
	total, maxHour, err := c.Rain(12.97, 77.59, "2024-06-20")
	assert.Nil(t, err)
	assert.Equal(t, 0.0, total)
	assert.Equal(t, 0.0, maxHour)
}

func TestRainHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := openmeteo.New(ts.URL, ts.URL, clockwork.NewFakeClockAt(frozenNow))
	_, _, err := c.Rain(12.97, 77.59, "2024-06-20")
	assert.NotNil(t, err)
}

func TestRainMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	c := openmeteo.New(ts.URL, ts.URL, clockwork.NewFakeClockAt(frozenNow))
	_, _, err := c.Rain(12.97, 77.59, "2024-06-20")
	assert.NotNil(t, err)
}
