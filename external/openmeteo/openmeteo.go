package openmeteo

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"

	dateLayout = "2006-01-02"
	timezone   = "Asia/Kolkata"

	requestTimeout = 15 * time.Second
)

var (
	errNoDailyRain = fmt.Errorf("no rainfall data available from Open-Meteo API")
)

// Client fetches total daily and peak hourly rainfall for one coordinate
// and date from Open-Meteo. Past dates hit the archive endpoint, today
// and future dates the forecast endpoint.
type Client interface {
	Rain(lat, lon float64, date string) (totalMM, maxHourlyMM float64, err error)
}

type client struct {
	forecastURL string
	archiveURL  string
	httpClient  *http.Client
	clock       clockwork.Clock
}

type rainResponse struct {
	Daily *struct {
		RainSum []*float64 `json:"rain_sum"`
	} `json:"daily"`
	Hourly *struct {
		Rain []float64 `json:"rain"`
	} `json:"hourly"`
}

// New builds an Open-Meteo client. Empty URLs select the public
// endpoints.
func New(forecastURL, archiveURL string, clock clockwork.Clock) Client {
	if forecastURL == "" {
		forecastURL = defaultForecastURL
	}
	if archiveURL == "" {
		archiveURL = defaultArchiveURL
	}

	return &client{
		forecastURL: forecastURL,
		archiveURL:  archiveURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		clock: clock,
	}
}

func (c *client) Rain(lat, lon float64, date string) (float64, float64, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}

	base := c.forecastURL
	if date < c.clock.Now().Format(dateLayout) {
		base = c.archiveURL
	}

	query := fmt.Sprintf(
		"%s?latitude=%f&longitude=%f&hourly=rain&daily=rain_sum&timezone=%s&start_date=%s&end_date=%s",
		base, lat, lon, url.QueryEscape(timezone), date, date,
	)

	resp, err := c.httpClient.Get(query)
	if err != nil {
		return 0, 0, fmt.Errorf("network error: unable to connect to Open-Meteo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("Open-Meteo API returned status %d", resp.StatusCode)
	}

	d, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("read Open-Meteo response: %w", err)
	}

	var r rainResponse
	if err := json.Unmarshal(d, &r); err != nil {
		return 0, 0, fmt.Errorf("malformed Open-Meteo response: %w", err)
	}

	if r.Daily == nil || len(r.Daily.RainSum) == 0 {
		return 0, 0, errNoDailyRain
	}

	totalRain := 0.0
	if r.Daily.RainSum[0] != nil {
		totalRain = *r.Daily.RainSum[0]
	}

	// A missing hourly series degrades the peak to zero instead of
	// failing the whole fetch.
	maxHour := 0.0
	if r.Hourly != nil {
		for _, h := range r.Hourly.Rain {
			if h > maxHour {
				maxHour = h
			}
		}
	}

	return totalRain, maxHour, nil
}
