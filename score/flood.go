package score

import "math"

// Model weights. Peak hourly intensity dominates the rainfall terms:
// short intense bursts overwhelm storm drains faster than the same volume
// spread over a day.
const (
	EffectivePeakWeight  = 3.0
	EffectiveTotalWeight = 0.3

	dailyRiskCap   = 0.4
	dailyRiskScale = 20.0

	peakRiskCap   = 0.5
	peakRiskScale = 10.0

	priorRiskCap   = 0.2
	priorRiskScale = 15.0

	vulnerabilityWeight = 0.3
	drainageWeight      = 0.4

	sigmoidScale  = 4.0
	sigmoidOffset = 2.0
)

// EffectiveRainfall combines peak intensity and daily accumulation into
// the scorer's primary rainfall input. Never negative.
func EffectiveRainfall(totalRain24h, maxHourlyRain float64) float64 {
	e := maxHourlyRain*EffectivePeakWeight + totalRain24h*EffectiveTotalWeight
	if e < 0 {
		return 0
	}
	return e
}

// Input carries everything a scoring strategy needs for one ward and date.
type Input struct {
	EffectiveRain float64
	TotalRain24h  float64
	MaxHourlyRain float64
	PrevDayRain   float64
	Vulnerability float64
	DrainageIndex float64
	MaxDrainage   float64
}

// Strategy converts a scoring input into a calibrated flood probability.
type Strategy interface {
	Probability(in Input) float64
}

// SaturatingStrategy is the reference model: four saturating risk factors,
// a drainage protection term, a sigmoid mapping and tail calibration.
type SaturatingStrategy struct{}

func (SaturatingStrategy) Probability(in Input) float64 {
	var risk float64

	if in.TotalRain24h > 0 {
		risk += math.Min(dailyRiskCap, in.TotalRain24h/dailyRiskScale)
	}
	if in.MaxHourlyRain > 0 {
		risk += math.Min(peakRiskCap, in.MaxHourlyRain/peakRiskScale)
	}
	if in.PrevDayRain > 0 {
		risk += math.Min(priorRiskCap, in.PrevDayRain/priorRiskScale)
	}
	risk += in.Vulnerability * vulnerabilityWeight

	if in.MaxDrainage > 0 {
		risk -= in.DrainageIndex / in.MaxDrainage * drainageWeight
	}

	return calibrate(sigmoid(clamp01(risk)*sigmoidScale - sigmoidOffset))
}

// LogisticStrategy serves datasets without drainage columns: the
// drainage protection term is identically zero and the model reduces to
// a logistic transform of the rainfall and vulnerability terms.
type LogisticStrategy struct{}

func (LogisticStrategy) Probability(in Input) float64 {
	in.DrainageIndex = 0
	in.MaxDrainage = 0
	return SaturatingStrategy{}.Probability(in)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// calibrate reins in the tails: probabilities above 0.9 are compressed
// into a tighter band and very low ones inflated slightly, so the model
// never claims near-certainty in either direction.
func calibrate(p float64) float64 {
	switch {
	case p > 0.9:
		p = 0.8 + (p-0.9)*0.2
	case p < 0.1:
		p = p * 1.5
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
