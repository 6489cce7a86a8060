package schema

// Risk tiers.
const (
	RiskLevelLow      = "LOW"
	RiskLevelModerate = "MODERATE"
	RiskLevelHigh     = "HIGH"
)

// Fixed probability thresholds between risk tiers.
const (
	RiskThresholdModerate = 0.4
	RiskThresholdHigh     = 0.7
)

// RiskLevelFromProbability maps a flood probability to its discrete tier.
func RiskLevelFromProbability(p float64) string {
	switch {
	case p > RiskThresholdHigh:
		return RiskLevelHigh
	case p > RiskThresholdModerate:
		return RiskLevelModerate
	default:
		return RiskLevelLow
	}
}

// FloodPredictionRequest is the body of /predict and /predict/batch.
// The batch endpoint ignores WardName.
type FloodPredictionRequest struct {
	WardName string `json:"ward_name" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

// FloodPrediction is the detailed single ward prediction.
type FloodPrediction struct {
	WardName           string             `json:"ward_name"`
	Date               string             `json:"date"`
	Latitude           float64            `json:"latitude"`
	Longitude          float64            `json:"longitude"`
	TotalRain24h       float64            `json:"total_rain_24h"`
	MaxHourlyRain      float64            `json:"max_hourly_rain"`
	PreviousDayRain    float64            `json:"previous_day_rain"`
	FloodProbability   float64            `json:"flood_probability"`
	RiskLevel          string             `json:"risk_level"`
	DataSource         string             `json:"data_source"`
	VulnerabilityScore float64            `json:"vulnerability_score"`
	DrainageMetrics    map[string]float64 `json:"drainage_metrics,omitempty"`
	DrainageAvailable  bool               `json:"drainage_available"`
}

// WardProbability is one entry of a batch prediction.
type WardProbability struct {
	WardName         string  `json:"ward_name"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FloodProbability float64 `json:"flood_probability"`
	RiskLevel        string  `json:"risk_level"`
}

// BatchPrediction covers every ward with one shared weather sample.
type BatchPrediction struct {
	Date              string            `json:"date"`
	DataSource        string            `json:"data_source"`
	SyntheticWeather  bool              `json:"synthetic_weather"`
	WardProbabilities []WardProbability `json:"ward_probabilities"`
}
