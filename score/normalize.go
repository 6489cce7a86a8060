package score

// MinMaxScale normalizes v into [0,1] over a dataset column range.
// Constant columns fall back to the given value instead of dividing by
// zero.
func MinMaxScale(v, min, max, fallback float64) float64 {
	if max <= min {
		return fallback
	}
	return clamp01((v - min) / (max - min))
}

// VulnerabilityFromDrainage ranks a ward's drainage index against the
// dataset quartiles. Wards at or below p25 are the most vulnerable (1.0),
// at or above p75 the least (0.0), linear in between. A dataset with no
// drainage variation yields 0.5 for every ward.
func VulnerabilityFromDrainage(idx, p25, p75, min, max float64) float64 {
	if max <= min {
		return 0.5
	}

	var normalized float64
	switch {
	case idx <= p25:
		normalized = 0.0
	case idx >= p75:
		normalized = 1.0
	default:
		normalized = (idx - p25) / (p75 - p25)
	}

	return 1.0 - normalized
}

// VulnerabilityFromFloodCount is the ratio strategy for datasets that
// record historical flood counts instead of a drainage index.
func VulnerabilityFromFloodCount(count, maxCount float64) float64 {
	if maxCount <= 0 {
		return 0
	}
	return clamp01(count / maxCount)
}
