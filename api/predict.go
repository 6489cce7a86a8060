package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floodwatch-blr/flood-api/dataset"
	"github.com/floodwatch-blr/flood-api/prediction"
	"github.com/floodwatch-blr/flood-api/schema"
)

func (s *Server) predict(c *gin.Context) {
	var req schema.FloodPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	pred, err := s.predictor.Predict(req.WardName, req.Date)
	if err != nil {
		s.abortPredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, pred)
}

func (s *Server) predictBatch(c *gin.Context) {
	// The batch endpoint takes the same body as /predict but only the
	// date matters; every ward is scored.
	var req schema.FloodPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	batch, err := s.predictor.PredictBatch(req.Date)
	if err != nil {
		s.abortPredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

func (s *Server) abortPredictionError(c *gin.Context, err error) {
	var unavailable *prediction.WeatherUnavailableError

	switch {
	case errors.Is(err, prediction.ErrInvalidDate):
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidDate, err)
	case errors.Is(err, dataset.ErrWardNotFound):
		abortWithEncoding(c, http.StatusNotFound, errorWardNotFound, err)
	case errors.As(err, &unavailable):
		abortWithEncoding(c, http.StatusServiceUnavailable, errorWeatherUnavailable(unavailable), err)
	default:
		log.Error(err)
		abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
	}
}
