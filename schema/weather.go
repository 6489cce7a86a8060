package schema

// Data source labels reported on predictions.
const (
	SourceOpenMeteoHistorical = "Open-Meteo (historical)"
	SourceOpenMeteoForecast   = "Open-Meteo (forecast only)"
	SourceOpenWeatherForecast = "OpenWeatherMap (forecast only)"
	SourceCombinedForecast    = "Open-Meteo + OpenWeatherMap"
	SourceSyntheticFallback   = "synthetic fallback"
)

// RainSample is a reconciled rainfall observation for one location and
// date. Synthetic marks substitute values used when every provider is
// down; consumers must be able to tell those apart from real data.
type RainSample struct {
	TotalRainMM     float64
	MaxHourlyRainMM float64
	Source          string
	Synthetic       bool
}
