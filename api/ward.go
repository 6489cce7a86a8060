package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/floodwatch-blr/flood-api/schema"
)

func (s *Server) listWards(c *gin.Context) {
	snap, err := s.store.List()
	if shouldInterupt(err, c) {
		return
	}

	wards := make([]schema.WardInfo, 0, len(snap.Records))
	for i := range snap.Records {
		rec := &snap.Records[i]

		info := schema.WardInfo{
			WardName:           rec.WardName,
			Latitude:           rec.Latitude,
			Longitude:          rec.Longitude,
			AreaKm2:            rec.AreaKm2,
			VulnerabilityScore: snap.Vulnerability(rec),
		}
		if rec.DrainageIndex != nil {
			info.DrainageIndex = *rec.DrainageIndex
		}
		if rec.FloodCount != nil {
			info.FloodCount = *rec.FloodCount
		}

		wards = append(wards, info)
	}

	sort.Slice(wards, func(i, j int) bool {
		return wards[i].WardName < wards[j].WardName
	})

	c.JSON(http.StatusOK, wards)
}
