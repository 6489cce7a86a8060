package consts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floodwatch-blr/flood-api/consts"
)

func TestMapWardNameExact(t *testing.T) {
	mapping := map[string]string{
		"Koramangala":     "Koramangala",
		"Bagalagunte":     "Bagalakunte",
		"HSR Layout":      "HSR Layout",
		"Shanthi Nagar":   "Shanthi Nagar",
		"Hoysala Nagar":   "Hoysala Nagar",
		"Konena Agrahara": "Konena Agrahara",
	}

	for boundary, drainage := range mapping {
		assert.Equal(t, drainage, consts.MapWardName(boundary), "wrong mapping")
	}
}

func TestMapWardNameCaseInsensitive(t *testing.T) {
	assert.Equal(t, "Bagalakunte", consts.MapWardName("bagalagunte"))
	assert.Equal(t, "Koramangala", consts.MapWardName("KORAMANGALA"))
}

func TestMapWardNamePartial(t *testing.T) {
	assert.Equal(t, "Koramangala", consts.MapWardName("Koramangala Ward"))
	assert.Equal(t, "HSR Layout", consts.MapWardName("hsr"))
}

func TestMapWardNameUnknownPassthrough(t *testing.T) {
	assert.Equal(t, "Electronic City", consts.MapWardName("Electronic City"))
}
