package consts

import (
	"sort"
	"strings"
)

// WardBoundaryToDrainage reconciles ward names between the boundary
// GeoJSON used by the front-end map and the drainage analysis dataset.
var WardBoundaryToDrainage map[string]string

// boundaryNames holds the mapping keys in sorted order so that partial
// matching is deterministic.
var boundaryNames []string

func init() {
	WardBoundaryToDrainage = make(map[string]string)

	WardBoundaryToDrainage["Benniganahalli"] = "Benniganahalli"
	WardBoundaryToDrainage["Byatarayanapura"] = "Byatarayanapura"
	WardBoundaryToDrainage["Domlur"] = "Domlur"
	WardBoundaryToDrainage["Gottigere"] = "Gottigere"
	WardBoundaryToDrainage["Herohalli"] = "Herohalli"
	WardBoundaryToDrainage["Hoysala Nagar"] = "Hoysala Nagar"
	WardBoundaryToDrainage["Jogupalya"] = "Jogupalya"
	WardBoundaryToDrainage["Kammanahalli"] = "Kammanahalli"
	WardBoundaryToDrainage["Kengeri"] = "Kengeri"
	WardBoundaryToDrainage["Konena Agrahara"] = "Konena Agrahara"
	WardBoundaryToDrainage["Koramangala"] = "Koramangala"
	WardBoundaryToDrainage["Kuvempu Nagar"] = "Kuvempu Nagar"
	WardBoundaryToDrainage["Marenahalli"] = "Marenahalli"
	WardBoundaryToDrainage["Peenya Industrial Area"] = "Peenya Industrial Area"
	WardBoundaryToDrainage["Shanthi Nagar"] = "Shanthi Nagar"
	WardBoundaryToDrainage["Ulsoor"] = "Ulsoor"

	// Names that differ between the two datasets.
	WardBoundaryToDrainage["Bagalagunte"] = "Bagalakunte"
	WardBoundaryToDrainage["HSR Layout"] = "HSR Layout"
	WardBoundaryToDrainage["Garudacharpalya"] = "Garudacharpalya"
	WardBoundaryToDrainage["HAL Airport"] = "HAL Airport"
	WardBoundaryToDrainage["Anjanapur"] = "Anjanapur"
	WardBoundaryToDrainage["Vishwanathnagenahalli"] = "Vishwanathnagenahalli"
	WardBoundaryToDrainage["Hoodi"] = "Hoodi"

	boundaryNames = make([]string, 0, len(WardBoundaryToDrainage))
	for name := range WardBoundaryToDrainage {
		boundaryNames = append(boundaryNames, name)
	}
	sort.Strings(boundaryNames)
}

// MapWardName converts a boundary ward name into its drainage dataset
// form. Matching order: exact, case-insensitive, then partial containment
// in either direction over the sorted mapping keys. Unknown names pass
// through unchanged so the caller can still try the raw name.
func MapWardName(name string) string {
	if drainage, ok := WardBoundaryToDrainage[name]; ok {
		return drainage
	}

	for _, boundary := range boundaryNames {
		if strings.EqualFold(boundary, name) {
			return WardBoundaryToDrainage[boundary]
		}
	}

	lower := strings.ToLower(name)
	for _, boundary := range boundaryNames {
		b := strings.ToLower(boundary)
		if strings.Contains(lower, b) || strings.Contains(b, lower) {
			return WardBoundaryToDrainage[boundary]
		}
	}

	return name
}
