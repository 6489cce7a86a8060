package api

import (
	"fmt"

	"github.com/floodwatch-blr/flood-api/dataset"
	"github.com/floodwatch-blr/flood-api/prediction"
)

var (
	errorMessageMap = map[int64]string{
		999: "internal server error",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: prediction.ErrInvalidDate.Error(),
		1101: dataset.ErrWardNotFound.Error(),
		1102: "weather data unavailable",
	}

	errorInternalServer     = errorJSON(999)
	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorInvalidDate  = errorJSON(1100)
	errorWardNotFound = errorJSON(1101)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// errorJSON converts an error code to a standardized error object
func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// errorWeatherUnavailable carries the underlying provider reasons so the
// caller can see which providers failed and why.
func errorWeatherUnavailable(err *prediction.WeatherUnavailableError) ErrorResponse {
	return ErrorResponse{
		Code:    1102,
		Message: fmt.Sprintf("%s. Please try again later.", err.Error()),
	}
}
