package cohort

import (
	"sort"

	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/scoring"
)

// MergedEntity is one organization's before/after pair with derived growth
// fields. Identity fields are taken from the after-record; both panels carry
// the same values for matched companies.
type MergedEntity struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Sector      string `json:"sector"`
	Country     string `json:"country"`

	Before        scoring.DimensionSet `json:"dimensions_before"`
	After         scoring.DimensionSet `json:"dimensions_after"`
	OverallBefore float64              `json:"overall_maturity_before"`
	OverallAfter  float64              `json:"overall_maturity_after"`

	Deltas         scoring.DimensionSet `json:"dimension_deltas"`
	MaturityGrowth float64              `json:"maturity_growth"`
}

// Merge inner-joins two panels on Company_ID and computes per-dimension
// deltas and overall maturity growth. Companies present in only one panel are
// dropped without error: ingestion mismatches are excluded, not fatal. The
// result is ordered by Company_ID.
func Merge(before, after *panel.Panel) []MergedEntity {
	beforeIdx := before.ByCompanyID()

	merged := make([]MergedEntity, 0, len(after.Orgs))
	for _, a := range after.Orgs {
		j, ok := beforeIdx[a.CompanyID]
		if !ok {
			continue
		}
		b := before.Orgs[j]

		var deltas scoring.DimensionSet
		for d := range deltas {
			deltas[d] = a.Dimensions[d] - b.Dimensions[d]
		}

		merged = append(merged, MergedEntity{
			CompanyID:      a.CompanyID,
			CompanyName:    a.CompanyName,
			Sector:         a.Sector,
			Country:        a.Country,
			Before:         b.Dimensions,
			After:          a.Dimensions,
			OverallBefore:  b.OverallMaturity,
			OverallAfter:   a.OverallMaturity,
			Deltas:         deltas,
			MaturityGrowth: scoring.Round2(a.OverallMaturity - b.OverallMaturity),
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CompanyID < merged[j].CompanyID
	})
	return merged
}
