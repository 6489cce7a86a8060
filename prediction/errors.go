package prediction

import (
	"fmt"
	"strings"
)

// ErrInvalidDate rejects a request before any weather call is made.
var ErrInvalidDate = fmt.Errorf("invalid date format, use YYYY-MM-DD")

// WeatherUnavailableError reports that every queried weather provider
// failed for the requested date. It keeps each provider's reason so the
// API layer can surface all of them.
type WeatherUnavailableError struct {
	Reasons []error
}

func (e *WeatherUnavailableError) Error() string {
	reasons := make([]string, len(e.Reasons))
	for i, err := range e.Reasons {
		reasons[i] = err.Error()
	}
	return fmt.Sprintf("weather data unavailable: %s", strings.Join(reasons, ", "))
}

func newWeatherUnavailableError(reasons ...error) *WeatherUnavailableError {
	return &WeatherUnavailableError{
		Reasons: reasons,
	}
}
