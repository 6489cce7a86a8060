package prediction

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/floodwatch-blr/flood-api/dataset"
	"github.com/floodwatch-blr/flood-api/external/openmeteo"
	"github.com/floodwatch-blr/flood-api/external/openweather"
	"github.com/floodwatch-blr/flood-api/schema"
	"github.com/floodwatch-blr/flood-api/score"
)

var log = logrus.WithField("prefix", "prediction")

const (
	dateLayout = "2006-01-02"

	// Forecast totals differing by more than this many millimetres get
	// flagged in the logs; the merge itself stays conservative.
	forecastDivergenceMM = 2.0

	// Deterministic monsoon-season substitutes for batch mode when
	// every provider is down. Always flagged as synthetic.
	syntheticTotalRainMM = 7.5
	syntheticMaxHourlyMM = 2.5
)

// Predictor sequences the ward store, the weather providers and the
// scorer into flood predictions.
type Predictor struct {
	store    dataset.WardStore
	meteo    openmeteo.Client
	forecast openweather.Client
	clock    clockwork.Clock
	scope    tally.Scope

	// Shared reference coordinate for batch mode, one weather sample
	// for the whole city.
	cityLat float64
	cityLon float64
}

// New builds a predictor.
func New(
	store dataset.WardStore,
	meteo openmeteo.Client,
	forecast openweather.Client,
	clock clockwork.Clock,
	scope tally.Scope,
	cityLat, cityLon float64) *Predictor {
	return &Predictor{
		store:    store,
		meteo:    meteo,
		forecast: forecast,
		clock:    clock,
		scope:    scope,
		cityLat:  cityLat,
		cityLon:  cityLon,
	}
}

// Predict runs the detailed single ward path: resolve the ward, fetch
// per-ward weather, score.
func (p *Predictor) Predict(wardName, date string) (*schema.FloodPrediction, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	snap, err := p.store.List()
	if err != nil {
		return nil, err
	}

	rec, err := snap.Find(wardName)
	if err != nil {
		return nil, err
	}

	sample, err := p.fetchRain(rec.Latitude, rec.Longitude, date)
	if err != nil {
		return nil, err
	}

	prevRain := p.previousDayRain(rec.Latitude, rec.Longitude, date)

	probability, level := p.scoreWard(snap, rec, sample, prevRain)

	pred := &schema.FloodPrediction{
		WardName:           wardName,
		Date:               date,
		Latitude:           rec.Latitude,
		Longitude:          rec.Longitude,
		TotalRain24h:       sample.TotalRainMM,
		MaxHourlyRain:      sample.MaxHourlyRainMM,
		PreviousDayRain:    prevRain,
		FloodProbability:   probability,
		RiskLevel:          level,
		DataSource:         sample.Source,
		VulnerabilityScore: snap.Vulnerability(rec),
	}

	if metrics := snap.DrainageMetrics(rec); metrics != nil {
		pred.DrainageMetrics = metrics
		pred.DrainageAvailable = true
	}

	return pred, nil
}

// PredictBatch scores every ward against one shared weather sample taken
// at the city reference coordinate. A total provider outage degrades to
// a clearly flagged synthetic sample instead of failing the batch.
func (p *Predictor) PredictBatch(date string) (*schema.BatchPrediction, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	snap, err := p.store.List()
	if err != nil {
		return nil, err
	}

	sample, err := p.fetchRain(p.cityLat, p.cityLon, date)
	if err != nil {
		log.WithField("error", err).Warn("all weather providers failed, using synthetic fallback sample")
		p.scope.Counter("synthetic_fallbacks").Inc(1)
		sample = &schema.RainSample{
			TotalRainMM:     syntheticTotalRainMM,
			MaxHourlyRainMM: syntheticMaxHourlyMM,
			Source:          schema.SourceSyntheticFallback,
			Synthetic:       true,
		}
	}

	prevRain := p.previousDayRain(p.cityLat, p.cityLon, date)

	batch := &schema.BatchPrediction{
		Date:              date,
		DataSource:        sample.Source,
		SyntheticWeather:  sample.Synthetic,
		WardProbabilities: make([]schema.WardProbability, 0, len(snap.Records)),
	}

	for i := range snap.Records {
		rec := &snap.Records[i]
		if snap.Variant == dataset.DrainageVariant && rec.DrainageIndex == nil {
			log.WithField("ward", rec.WardName).Warn("skipping ward without drainage index")
			continue
		}

		probability, level := p.scoreWard(snap, rec, sample, prevRain)
		batch.WardProbabilities = append(batch.WardProbabilities, schema.WardProbability{
			WardName:         rec.WardName,
			Latitude:         rec.Latitude,
			Longitude:        rec.Longitude,
			FloodProbability: probability,
			RiskLevel:        level,
		})
	}

	log.WithField("wards", len(batch.WardProbabilities)).Debug("batch prediction done")

	return batch, nil
}

// fetchRain classifies the date and reconciles the providers. Dates up
// to today use Open-Meteo alone; future dates query both providers and
// merge the worst case of whatever survives.
func (p *Predictor) fetchRain(lat, lon float64, date string) (*schema.RainSample, error) {
	today := p.clock.Now().Format(dateLayout)

	if date <= today {
		total, maxHourly, err := p.meteo.Rain(lat, lon, date)
		if err != nil {
			p.scope.Counter("provider_failures").Inc(1)
			return nil, newWeatherUnavailableError(err)
		}
		return &schema.RainSample{
			TotalRainMM:     total,
			MaxHourlyRainMM: maxHourly,
			Source:          schema.SourceOpenMeteoHistorical,
		}, nil
	}

	meteoTotal, meteoPeak, meteoErr := p.meteo.Rain(lat, lon, date)
	owmTotal, owmPeak, owmErr := p.forecast.Rain(lat, lon, date)

	switch {
	case meteoErr != nil && owmErr != nil:
		p.scope.Counter("provider_failures").Inc(2)
		return nil, newWeatherUnavailableError(meteoErr, owmErr)

	case meteoErr != nil:
		p.scope.Counter("provider_failures").Inc(1)
		log.WithField("error", meteoErr).Warn("using OpenWeatherMap only due to Open-Meteo error")
		return &schema.RainSample{
			TotalRainMM:     owmTotal,
			MaxHourlyRainMM: owmPeak,
			Source:          schema.SourceOpenWeatherForecast,
		}, nil

	case owmErr != nil:
		p.scope.Counter("provider_failures").Inc(1)
		log.WithField("error", owmErr).Warn("using Open-Meteo only due to OpenWeatherMap error")
		return &schema.RainSample{
			TotalRainMM:     meteoTotal,
			MaxHourlyRainMM: meteoPeak,
			Source:          schema.SourceOpenMeteoForecast,
		}, nil

	default:
		if math.Abs(meteoTotal-owmTotal) > forecastDivergenceMM {
			log.WithFields(logrus.Fields{
				"open_meteo":  meteoTotal,
				"openweather": owmTotal,
			}).Warn("forecast totals diverge")
		}
		return &schema.RainSample{
			TotalRainMM:     math.Max(meteoTotal, owmTotal),
			MaxHourlyRainMM: math.Max(meteoPeak, owmPeak),
			Source:          schema.SourceCombinedForecast,
		}, nil
	}
}

// previousDayRain is an enrichment, not a required input: provider
// errors degrade to zero and are only logged.
func (p *Predictor) previousDayRain(lat, lon float64, date string) float64 {
	target, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}

	prev := target.AddDate(0, 0, -1).Format(dateLayout)
	total, _, err := p.meteo.Rain(lat, lon, prev)
	if err != nil {
		log.WithField("error", err).Warn("could not fetch previous day rain, defaulting to 0")
		return 0
	}

	return total
}

func (p *Predictor) scoreWard(snap *dataset.Snapshot, rec *schema.WardRecord, sample *schema.RainSample, prevRain float64) (float64, string) {
	in := score.Input{
		EffectiveRain: score.EffectiveRainfall(sample.TotalRainMM, sample.MaxHourlyRainMM),
		TotalRain24h:  sample.TotalRainMM,
		MaxHourlyRain: sample.MaxHourlyRainMM,
		PrevDayRain:   prevRain,
		Vulnerability: snap.Vulnerability(rec),
	}

	var strategy score.Strategy = score.LogisticStrategy{}
	if snap.Variant == dataset.DrainageVariant && rec.DrainageIndex != nil {
		in.DrainageIndex = *rec.DrainageIndex
		in.MaxDrainage = snap.MaxDrainage
		strategy = score.SaturatingStrategy{}
	}

	probability := strategy.Probability(in)
	level := schema.RiskLevelFromProbability(probability)

	p.scope.Tagged(map[string]string{"risk_level": level}).Counter("predictions").Inc(1)

	return probability, level
}
