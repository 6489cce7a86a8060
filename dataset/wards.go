package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/floodwatch-blr/flood-api/consts"
	"github.com/floodwatch-blr/flood-api/schema"
	"github.com/floodwatch-blr/flood-api/score"
)

var log = logrus.WithField("prefix", "dataset")

var (
	ErrWardNotFound   = fmt.Errorf("ward not found in dataset")
	ErrEmptyDataset   = fmt.Errorf("no usable rows in ward dataset")
	ErrMissingColumns = fmt.Errorf("ward dataset misses required columns")
)

// Variant tells which vulnerability source the loaded dataset carries.
type Variant int

const (
	DrainageVariant Variant = iota
	FloodCountVariant
)

// Column names of the drainage detail fields, as they appear both in the
// CSV header and in the drainage_metrics response map.
var drainColumns = []string{
	"primary_drain_km",
	"secondary_drain_km",
	"tertiary_drain_km",
	"total_drain_km",
	"drainage_index",
}

type colRange struct {
	min float64
	max float64
}

// Snapshot is one immutable load of the ward table together with the
// dataset-wide statistics normalization runs against. Quartiles are
// computed over the whole filtered dataset once per load so vulnerability
// scores stay comparable across wards.
type Snapshot struct {
	Records []schema.WardRecord
	Variant Variant

	MinDrainage   float64
	MaxDrainage   float64
	DrainageP25   float64
	DrainageP75   float64
	MaxFloodCount float64

	colRanges map[string]colRange
}

// WardStore loads ward rows from the backing tabular resource.
type WardStore interface {
	List() (*Snapshot, error)
}

type csvStore struct {
	path string
}

// NewCSVStore returns a store backed by a CSV file at the given path.
func NewCSVStore(path string) WardStore {
	return &csvStore{path: path}
}

// List reads the dataset fresh on every call. The table is small and may
// be regenerated underneath a running server, so freshness wins over
// caching here.
func (s *csvStore) List() (*Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ward dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ward dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyDataset
	}

	col := make(map[string]int)
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := col["ward_name"]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := col["latitude"]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := col["longitude"]; !ok {
		return nil, ErrMissingColumns
	}

	variant := DrainageVariant
	vulnSource := "drainage_index"
	if _, ok := col["drainage_index"]; !ok {
		if _, ok := col["flood_count"]; !ok {
			return nil, ErrMissingColumns
		}
		variant = FloodCountVariant
		vulnSource = "flood_count"
	}

	snapshot := &Snapshot{
		Variant:   variant,
		colRanges: make(map[string]colRange),
	}

	for _, row := range rows[1:] {
		name := cell(row, col, "ward_name")
		lat, latOK := cellFloat(row, col, "latitude")
		lon, lonOK := cellFloat(row, col, "longitude")
		vuln, vulnOK := cellFloat(row, col, vulnSource)

		// The invariant of the dataset: coordinates and the
		// vulnerability source must be present; anything else is an
		// unusable row.
		if name == "" || !latOK || !lonOK || !vulnOK {
			log.WithField("ward", name).Debug("dropping incomplete dataset row")
			continue
		}

		rec := schema.WardRecord{
			WardName:  name,
			Latitude:  lat,
			Longitude: lon,
		}
		if area, ok := cellFloat(row, col, "area_km2"); ok {
			rec.AreaKm2 = area
		}

		switch variant {
		case FloodCountVariant:
			v := vuln
			rec.FloodCount = &v
		default:
			v := vuln
			rec.DrainageIndex = &v
			if d, ok := cellFloat(row, col, "primary_drain_km"); ok {
				rec.PrimaryDrainKm = &d
			}
			if d, ok := cellFloat(row, col, "secondary_drain_km"); ok {
				rec.SecondaryDrainKm = &d
			}
			if d, ok := cellFloat(row, col, "tertiary_drain_km"); ok {
				rec.TertiaryDrainKm = &d
			}
			if d, ok := cellFloat(row, col, "total_drain_km"); ok {
				rec.TotalDrainKm = &d
			}
		}

		snapshot.Records = append(snapshot.Records, rec)
	}

	if len(snapshot.Records) == 0 {
		return nil, ErrEmptyDataset
	}

	snapshot.computeStats()

	return snapshot, nil
}

func (s *Snapshot) computeStats() {
	switch s.Variant {
	case FloodCountVariant:
		for i := range s.Records {
			if c := s.Records[i].FloodCount; c != nil && *c > s.MaxFloodCount {
				s.MaxFloodCount = *c
			}
		}
	default:
		values := make([]float64, 0, len(s.Records))
		for i := range s.Records {
			values = append(values, *s.Records[i].DrainageIndex)
		}
		sort.Float64s(values)

		s.MinDrainage = values[0]
		s.MaxDrainage = values[len(values)-1]
		s.DrainageP25 = stat.Quantile(0.25, stat.Empirical, values, nil)
		s.DrainageP75 = stat.Quantile(0.75, stat.Empirical, values, nil)

		for _, column := range drainColumns {
			s.computeColRange(column)
		}
	}
}

func (s *Snapshot) computeColRange(column string) {
	seen := false
	r := colRange{}
	for i := range s.Records {
		v, ok := recordColumn(&s.Records[i], column)
		if !ok {
			continue
		}
		if !seen || v < r.min {
			r.min = v
		}
		if !seen || v > r.max {
			r.max = v
		}
		seen = true
	}
	if seen {
		s.colRanges[column] = r
	}
}

// Find resolves a ward name against the snapshot. Resolution order: the
// boundary-to-drainage name mapping first, then case-insensitive exact
// match, then case-insensitive substring containment in either direction
// (first match in dataset order), finally the same containment search for
// the unmapped name.
func (s *Snapshot) Find(name string) (*schema.WardRecord, error) {
	mapped := consts.MapWardName(name)

	if rec := s.findExact(mapped); rec != nil {
		return rec, nil
	}
	if rec := s.findContains(mapped); rec != nil {
		return rec, nil
	}
	if !strings.EqualFold(mapped, name) {
		if rec := s.findContains(name); rec != nil {
			return rec, nil
		}
	}

	return nil, ErrWardNotFound
}

func (s *Snapshot) findExact(name string) *schema.WardRecord {
	for i := range s.Records {
		if strings.EqualFold(s.Records[i].WardName, name) {
			return &s.Records[i]
		}
	}
	return nil
}

func (s *Snapshot) findContains(name string) *schema.WardRecord {
	lower := strings.ToLower(name)
	for i := range s.Records {
		ward := strings.ToLower(s.Records[i].WardName)
		if strings.Contains(ward, lower) || strings.Contains(lower, ward) {
			return &s.Records[i]
		}
	}
	return nil
}

// Vulnerability derives the 0-1 susceptibility score for a record using
// the strategy matching the dataset variant.
func (s *Snapshot) Vulnerability(rec *schema.WardRecord) float64 {
	switch s.Variant {
	case FloodCountVariant:
		if rec.FloodCount == nil {
			return 0
		}
		return score.VulnerabilityFromFloodCount(*rec.FloodCount, s.MaxFloodCount)
	default:
		if rec.DrainageIndex == nil {
			return 0.5
		}
		return score.VulnerabilityFromDrainage(*rec.DrainageIndex, s.DrainageP25, s.DrainageP75, s.MinDrainage, s.MaxDrainage)
	}
}

// DrainageMetrics min-max scales every drainage detail column the record
// carries over the snapshot's column ranges. Returns nil for datasets
// without drainage columns.
func (s *Snapshot) DrainageMetrics(rec *schema.WardRecord) map[string]float64 {
	if s.Variant != DrainageVariant {
		return nil
	}

	metrics := make(map[string]float64)
	for _, column := range drainColumns {
		v, ok := recordColumn(rec, column)
		if !ok {
			continue
		}
		r, ok := s.colRanges[column]
		if !ok {
			continue
		}

		// A drainage index with no variation still says "average
		// capacity"; a constant drain length column says nothing.
		fallback := 0.0
		if column == "drainage_index" {
			fallback = 0.5
		}
		metrics[column] = score.MinMaxScale(v, r.min, r.max, fallback)
	}

	return metrics
}

func recordColumn(rec *schema.WardRecord, column string) (float64, bool) {
	var p *float64
	switch column {
	case "primary_drain_km":
		p = rec.PrimaryDrainKm
	case "secondary_drain_km":
		p = rec.SecondaryDrainKm
	case "tertiary_drain_km":
		p = rec.TertiaryDrainKm
	case "total_drain_km":
		p = rec.TotalDrainKm
	case "drainage_index":
		p = rec.DrainageIndex
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellFloat(row []string, col map[string]int, name string) (float64, bool) {
	raw := cell(row, col, name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
