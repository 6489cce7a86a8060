package schema

// WardRecord is one usable row of the ward dataset. Rows missing
// coordinates or a vulnerability source field never make it this far.
type WardRecord struct {
	WardName  string
	Latitude  float64
	Longitude float64
	AreaKm2   float64

	// Vulnerability source fields. Which one is present depends on the
	// dataset variant: drainage analysis datasets carry drainage_index,
	// older flood history datasets carry flood_count.
	DrainageIndex *float64
	FloodCount    *float64

	PrimaryDrainKm   *float64
	SecondaryDrainKm *float64
	TertiaryDrainKm  *float64
	TotalDrainKm     *float64
}

// WardInfo is a single entry of the ward listing.
type WardInfo struct {
	WardName           string  `json:"ward_name"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	AreaKm2            float64 `json:"area_km2"`
	DrainageIndex      float64 `json:"drainage_index,omitempty"`
	FloodCount         float64 `json:"flood_count,omitempty"`
	VulnerabilityScore float64 `json:"vulnerability_score"`
}
