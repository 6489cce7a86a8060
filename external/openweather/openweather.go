package openweather

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

const (
	defaultURL = "https://api.openweathermap.org/data/2.5/forecast"

	dateLayout     = "2006-01-02"
	requestTimeout = 15 * time.Second
)

// Forecast buckets are grouped by local calendar date in Bengaluru.
var ist = time.FixedZone("IST", 5*3600+30*60)

var (
	errEmptyToken     = fmt.Errorf("empty OpenWeatherMap API key")
	errNoForecastList = fmt.Errorf("no forecast data available from OpenWeatherMap API")
)

// Client fetches the 5 day / 3 hour forecast from OpenWeatherMap and
// collapses the buckets of one calendar date into a daily total and a
// peak bucket value.
type Client interface {
	Rain(lat, lon float64, date string) (totalMM, maxHourlyMM float64, err error)
}

type client struct {
	token      string
	url        string
	httpClient *http.Client
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Rain struct {
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

// New builds an OpenWeatherMap client. An empty url selects the public
// endpoint. The token comes from configuration, never from source.
func New(token string, url string) Client {
	u := defaultURL
	if url != "" {
		u = url
	}

	return &client{
		token: token,
		url:   u,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (c *client) Rain(lat, lon float64, date string) (float64, float64, error) {
	if c.token == "" {
		return 0, 0, errEmptyToken
	}

	query := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=metric", c.url, lat, lon, c.token)
	resp, err := c.httpClient.Get(query)
	if err != nil {
		return 0, 0, fmt.Errorf("network error: unable to connect to OpenWeatherMap API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("OpenWeatherMap API returned status %d", resp.StatusCode)
	}

	d, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("read OpenWeatherMap response: %w", err)
	}

	var r forecastResponse
	if err := json.Unmarshal(d, &r); err != nil {
		return 0, 0, fmt.Errorf("malformed OpenWeatherMap response: %w", err)
	}

	if len(r.List) == 0 {
		return 0, 0, errNoForecastList
	}

	var totalRain, maxBucket float64
	found := false

	for _, entry := range r.List {
		if time.Unix(entry.Dt, 0).In(ist).Format(dateLayout) != date {
			continue
		}
		// A bucket on the date with no rain block still counts as
		// "data present, zero rainfall".
		found = true
		if entry.Rain.ThreeHour == nil {
			continue
		}
		totalRain += *entry.Rain.ThreeHour
		if *entry.Rain.ThreeHour > maxBucket {
			maxBucket = *entry.Rain.ThreeHour
		}
	}

	if !found {
		return 0, 0, fmt.Errorf("no forecast data available for date %s", date)
	}

	return totalRain, maxBucket, nil
}
