package report

import (
	"sort"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/scoring"
)

// TableRow is one dimension line of the comparison table.
type TableRow struct {
	Dimension string  `json:"dimension"`
	Before    float64 `json:"before"`
	After     float64 `json:"after"`
	Delta     float64 `json:"delta"`
}

// Data is the numeric content of one company's comparison report. Rendering
// collaborators (PDF layout, radar drawing) consume it as-is and compute
// nothing themselves.
type Data struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Country     string `json:"country"`

	Rank       int `json:"rank"`
	CohortSize int `json:"cohort_size"`

	OverallBefore  float64 `json:"overall_maturity_before"`
	OverallAfter   float64 `json:"overall_maturity_after"`
	MaturityGrowth float64 `json:"maturity_growth"`

	Table []TableRow `json:"table"`

	// Radar series are closed polygons: the first dimension repeats at the
	// end so the plot collaborator can draw without wrap-around logic.
	RadarAxes   []string  `json:"radar_axes"`
	RadarBefore []float64 `json:"radar_before"`
	RadarAfter  []float64 `json:"radar_after"`
}

// Build assembles the report data for one merged entity. Pure transform, no
// side effects; rank and cohort size come from the caller (see Rankings).
func Build(e cohort.MergedEntity, rank, cohortSize int) Data {
	d := Data{
		CompanyID:      e.CompanyID,
		CompanyName:    e.CompanyName,
		Sector:         e.Sector,
		Country:        e.Country,
		Rank:           rank,
		CohortSize:     cohortSize,
		OverallBefore:  e.OverallBefore,
		OverallAfter:   e.OverallAfter,
		MaturityGrowth: e.MaturityGrowth,
		Table:          make([]TableRow, scoring.NumDimensions),
		RadarAxes:      make([]string, scoring.NumDimensions+1),
		RadarBefore:    make([]float64, scoring.NumDimensions+1),
		RadarAfter:     make([]float64, scoring.NumDimensions+1),
	}

	for i, name := range scoring.Dimensions {
		d.Table[i] = TableRow{
			Dimension: name,
			Before:    e.Before[i],
			After:     e.After[i],
			Delta:     e.Deltas[i],
		}
		d.RadarAxes[i] = name
		d.RadarBefore[i] = e.Before[i]
		d.RadarAfter[i] = e.After[i]
	}
	d.RadarAxes[scoring.NumDimensions] = scoring.Dimensions[0]
	d.RadarBefore[scoring.NumDimensions] = e.Before[0]
	d.RadarAfter[scoring.NumDimensions] = e.After[0]

	return d
}

// Rankings maps each Company_ID to its cohort rank by after-maturity,
// 1 = highest. Ties break by Company_ID ascending.
func Rankings(merged []cohort.MergedEntity) map[string]int {
	cp := append([]cohort.MergedEntity(nil), merged...)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].OverallAfter != cp[j].OverallAfter {
			return cp[i].OverallAfter > cp[j].OverallAfter
		}
		return cp[i].CompanyID < cp[j].CompanyID
	})

	ranks := make(map[string]int, len(cp))
	for i, e := range cp {
		ranks[e.CompanyID] = i + 1
	}
	return ranks
}
