package prediction_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	"github.com/floodwatch-blr/flood-api/dataset"
	"github.com/floodwatch-blr/flood-api/prediction"
	"github.com/floodwatch-blr/flood-api/schema"
)

const wardCSV = `ward_name,latitude,longitude,area_km2,primary_drain_km,secondary_drain_km,tertiary_drain_km,total_drain_km,drainage_index
Koramangala,12.93,77.61,7.4,4.0,6.5,10.2,20.7,50
Ulsoor,12.98,77.62,3.2,2.0,3.1,5.0,10.1,30
HSR Layout,12.91,77.64,8.1,5.5,8.0,12.3,25.8,70
Kengeri,12.90,77.48,10.5,1.2,2.0,3.5,6.7,10
Hoodi,12.99,77.71,6.0,6.0,9.5,15.0,30.5,100
`

// The fake clock pins "today" to 2024-06-15.
var testNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

type rainFunc func(lat, lon float64, date string) (float64, float64, error)

type stubProvider struct {
	fn    rainFunc
	calls int
}

func (s *stubProvider) Rain(lat, lon float64, date string) (float64, float64, error) {
	s.calls++
	return s.fn(lat, lon, date)
}

func fixedRain(total, peak float64) rainFunc {
	return func(_, _ float64, _ string) (float64, float64, error) {
		return total, peak, nil
	}
}

func failingRain(reason string) rainFunc {
	return func(_, _ float64, _ string) (float64, float64, error) {
		return 0, 0, errors.New(reason)
	}
}

func byDate(m map[string]rainFunc) rainFunc {
	return func(lat, lon float64, date string) (float64, float64, error) {
		fn, ok := m[date]
		if !ok {
			return 0, 0, fmt.Errorf("no stub data for date %s", date)
		}
		return fn(lat, lon, date)
	}
}

func newTestPredictor(t *testing.T, meteo, forecast *stubProvider) *prediction.Predictor {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wards.csv")
	require.NoError(t, os.WriteFile(path, []byte(wardCSV), 0644))

	return prediction.New(
		dataset.NewCSVStore(path),
		meteo,
		forecast,
		clockwork.NewFakeClockAt(testNow),
		tally.NoopScope,
		12.9716, 77.5946,
	)
}

func TestPredictInvalidDateMakesNoWeatherCalls(t *testing.T) {
	meteo := &stubProvider{fn: fixedRain(1, 1)}
	forecast := &stubProvider{fn: fixedRain(1, 1)}
	p := newTestPredictor(t, meteo, forecast)

	_, err := p.Predict("Koramangala", "2024-13-40")
	assert.Equal(t, prediction.ErrInvalidDate, err)
	assert.Equal(t, 0, meteo.calls)
	assert.Equal(t, 0, forecast.calls)
}

func TestPredictUnknownWard(t *testing.T) {
	meteo := &stubProvider{fn: fixedRain(1, 1)}
	forecast := &stubProvider{fn: fixedRain(1, 1)}
	p := newTestPredictor(t, meteo, forecast)

	_, err := p.Predict("Atlantis", "2024-06-10")
	assert.Equal(t, dataset.ErrWardNotFound, err)
	assert.Equal(t, 0, meteo.calls, "ward resolution happens before any fetch")
}

func TestPredictHistoricalPathUsesOpenMeteoOnly(t *testing.T) {
	meteo := &stubProvider{fn: byDate(map[string]rainFunc{
		"2024-06-10": fixedRain(10, 4),
		"2024-06-09": fixedRain(3, 1),
	})}
	forecast := &stubProvider{fn: fixedRain(99, 99)}
	p := newTestPredictor(t, meteo, forecast)

	pred, err := p.Predict("Koramangala", "2024-06-10")
	require.NoError(t, err)

	assert.Equal(t, 0, forecast.calls, "historical path must not query the forecast provider")
	assert.Equal(t, schema.SourceOpenMeteoHistorical, pred.DataSource)
	assert.Equal(t, 10.0, pred.TotalRain24h)
	assert.Equal(t, 4.0, pred.MaxHourlyRain)
	assert.Equal(t, 3.0, pred.PreviousDayRain)
	assert.Equal(t, 0.5, pred.VulnerabilityScore)
	assert.True(t, pred.DrainageAvailable)
	assert.Contains(t, pred.DrainageMetrics, "total_drain_km")
	assert.True(t, pred.FloodProbability >= 0 && pred.FloodProbability <= 1)
}

func TestPredictForecastMergeTakesWorstCase(t *testing.T) {
	meteo := &stubProvider{fn: byDate(map[string]rainFunc{
		"2024-06-20": fixedRain(5, 2),
		"2024-06-19": fixedRain(1, 0.5),
	})}
	forecast := &stubProvider{fn: fixedRain(8, 1.5)}
	p := newTestPredictor(t, meteo, forecast)

	pred, err := p.Predict("Koramangala", "2024-06-20")
	require.NoError(t, err)

	assert.Equal(t, schema.SourceCombinedForecast, pred.DataSource)
	assert.Equal(t, 8.0, pred.TotalRain24h, "total must be the max of both providers")
	assert.Equal(t, 2.0, pred.MaxHourlyRain, "peak must be the max of both providers")
	assert.Equal(t, 1.0, pred.PreviousDayRain)
}

func TestPredictForecastDegradesToSurvivingProvider(t *testing.T) {
	meteo := &stubProvider{fn: failingRain("open-meteo down")}
	forecast := &stubProvider{fn: fixedRain(8, 1.5)}
	p := newTestPredictor(t, meteo, forecast)

	pred, err := p.Predict("Koramangala", "2024-06-20")
	require.NoError(t, err)
	assert.Equal(t, schema.SourceOpenWeatherForecast, pred.DataSource)
	assert.Equal(t, 8.0, pred.TotalRain24h)
	assert.Equal(t, 0.0, pred.PreviousDayRain, "previous day errors degrade to zero")

	meteo = &stubProvider{fn: byDate(map[string]rainFunc{
		"2024-06-20": fixedRain(5, 2),
		"2024-06-19": fixedRain(1, 0.5),
	})}
	forecast = &stubProvider{fn: failingRain("openweather down")}
	p = newTestPredictor(t, meteo, forecast)

	pred, err = p.Predict("Koramangala", "2024-06-20")
	require.NoError(t, err)
	assert.Equal(t, schema.SourceOpenMeteoForecast, pred.DataSource)
	assert.Equal(t, 5.0, pred.TotalRain24h)
}

func TestPredictBothProvidersFail(t *testing.T) {
	meteo := &stubProvider{fn: failingRain("open-meteo down")}
	forecast := &stubProvider{fn: failingRain("openweather down")}
	p := newTestPredictor(t, meteo, forecast)

	_, err := p.Predict("Koramangala", "2024-06-20")
	require.Error(t, err)

	unavailable, ok := err.(*prediction.WeatherUnavailableError)
	require.True(t, ok, "expected WeatherUnavailableError, got %T", err)
	assert.Len(t, unavailable.Reasons, 2)
	assert.Contains(t, unavailable.Error(), "open-meteo down")
	assert.Contains(t, unavailable.Error(), "openweather down")
}

func TestPredictHistoricalProviderFailure(t *testing.T) {
	meteo := &stubProvider{fn: failingRain("open-meteo down")}
	forecast := &stubProvider{fn: fixedRain(8, 1.5)}
	p := newTestPredictor(t, meteo, forecast)

	_, err := p.Predict("Koramangala", "2024-06-10")
	require.Error(t, err)

	_, ok := err.(*prediction.WeatherUnavailableError)
	assert.True(t, ok, "historical path failure must be a weather availability error")
	assert.Equal(t, 0, forecast.calls)
}

func TestPredictBatchCoversEveryWard(t *testing.T) {
	meteo := &stubProvider{fn: byDate(map[string]rainFunc{
		"2024-06-10": fixedRain(10, 4),
		"2024-06-09": fixedRain(3, 1),
	})}
	forecast := &stubProvider{fn: fixedRain(99, 99)}
	p := newTestPredictor(t, meteo, forecast)

	batch, err := p.PredictBatch("2024-06-10")
	require.NoError(t, err)

	assert.False(t, batch.SyntheticWeather)
	assert.Equal(t, schema.SourceOpenMeteoHistorical, batch.DataSource)
	assert.Len(t, batch.WardProbabilities, 5)
	// One shared sample, fetched once per date (target + previous day).
	assert.Equal(t, 2, meteo.calls)

	for _, wp := range batch.WardProbabilities {
		assert.True(t, wp.FloodProbability >= 0 && wp.FloodProbability <= 1)
		assert.Equal(t, schema.RiskLevelFromProbability(wp.FloodProbability), wp.RiskLevel)
	}
}

func TestPredictBatchSyntheticFallback(t *testing.T) {
	meteo := &stubProvider{fn: failingRain("open-meteo down")}
	forecast := &stubProvider{fn: failingRain("openweather down")}
	p := newTestPredictor(t, meteo, forecast)

	batch, err := p.PredictBatch("2024-06-20")
	require.NoError(t, err, "batch mode never fails on a provider outage")

	assert.True(t, batch.SyntheticWeather, "substitute weather must be flagged")
	assert.Equal(t, schema.SourceSyntheticFallback, batch.DataSource)
	assert.Len(t, batch.WardProbabilities, 5)

	// Synthetic fallback is deterministic.
	again, err := p.PredictBatch("2024-06-20")
	require.NoError(t, err)
	assert.Equal(t, batch.WardProbabilities, again.WardProbabilities)
}

func TestPredictDeterministic(t *testing.T) {
	meteo := &stubProvider{fn: byDate(map[string]rainFunc{
		"2024-06-10": fixedRain(10, 4),
		"2024-06-09": fixedRain(3, 1),
	})}
	forecast := &stubProvider{fn: fixedRain(99, 99)}
	p := newTestPredictor(t, meteo, forecast)

	first, err := p.Predict("Koramangala", "2024-06-10")
	require.NoError(t, err)
	second, err := p.Predict("Koramangala", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
