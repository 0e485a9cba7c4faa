package cohort

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/scoring"
)

// ErrInsufficientSample signals too few paired entities for a significance
// test. The rest of the pipeline continues without a significance figure.
var ErrInsufficientSample = errors.New("insufficient sample for paired test")

// SignificanceResult holds the paired t-test outcome for the before/after
// overall maturity pairs.
type SignificanceResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Pairs     int     `json:"pairs"`
}

// PairedTTest runs a one-sample t-test on the per-company maturity
// differences (after minus before). Each company is measured twice, so an
// unpaired two-sample test would understate significance.
func PairedTTest(merged []MergedEntity) (SignificanceResult, error) {
	n := len(merged)
	if n < 2 {
		return SignificanceResult{}, fmt.Errorf("%w: %d pairs, need at least 2", ErrInsufficientSample, n)
	}

	diffs := make([]float64, n)
	for i, e := range merged {
		diffs[i] = e.OverallAfter - e.OverallBefore
	}

	mean := stat.Mean(diffs, nil)
	sd := stat.StdDev(diffs, nil)

	if sd == 0 {
		// Zero variance: identical differences everywhere. Zero mean means
		// no effect at all, otherwise the effect is exact.
		if mean == 0 {
			return SignificanceResult{Statistic: 0, PValue: 1, Pairs: n}, nil
		}
		return SignificanceResult{Statistic: math.Inf(sign(mean)), PValue: 0, Pairs: n}, nil
	}

	t := mean / (sd / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 2 * dist.CDF(-math.Abs(t))

	return SignificanceResult{Statistic: t, PValue: p, Pairs: n}, nil
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// Summary carries the cohort-level key performance indicators.
type Summary struct {
	Companies  int     `json:"companies"`
	MeanBefore float64 `json:"mean_maturity_before"`
	MeanAfter  float64 `json:"mean_maturity_after"`
	MeanGrowth float64 `json:"mean_growth"`
}

// Summarize computes the cohort KPIs over the merged entities.
func Summarize(merged []MergedEntity) Summary {
	if len(merged) == 0 {
		return Summary{}
	}
	var before, after, growth float64
	for _, e := range merged {
		before += e.OverallBefore
		after += e.OverallAfter
		growth += e.MaturityGrowth
	}
	n := float64(len(merged))
	return Summary{
		Companies:  len(merged),
		MeanBefore: scoring.Round2(before / n),
		MeanAfter:  scoring.Round2(after / n),
		MeanGrowth: scoring.Round2(growth / n),
	}
}

// SectorGrowth is the mean maturity growth for one sector.
type SectorGrowth struct {
	Sector     string  `json:"sector"`
	Companies  int     `json:"companies"`
	MeanGrowth float64 `json:"mean_growth"`
}

// SectorGrowthMeans groups merged entities by sector (case-sensitive exact
// match) and averages their maturity growth. Output is ordered by sector
// name.
func SectorGrowthMeans(merged []MergedEntity) []SectorGrowth {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range merged {
		sums[e.Sector] += e.MaturityGrowth
		counts[e.Sector]++
	}

	out := make([]SectorGrowth, 0, len(sums))
	for sector, sum := range sums {
		out = append(out, SectorGrowth{
			Sector:     sector,
			Companies:  counts[sector],
			MeanGrowth: scoring.Round2(sum / float64(counts[sector])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out
}

// TopPerformers returns the n entities with the highest after-maturity,
// best first. Ties break by Company_ID ascending.
func TopPerformers(merged []MergedEntity, n int) []MergedEntity {
	return rankSlice(merged, n, true)
}

// BottomPerformers returns the n entities with the lowest after-maturity,
// worst first. Ties break by Company_ID ascending.
func BottomPerformers(merged []MergedEntity, n int) []MergedEntity {
	return rankSlice(merged, n, false)
}

func rankSlice(merged []MergedEntity, n int, desc bool) []MergedEntity {
	cp := append([]MergedEntity(nil), merged...)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].OverallAfter != cp[j].OverallAfter {
			if desc {
				return cp[i].OverallAfter > cp[j].OverallAfter
			}
			return cp[i].OverallAfter < cp[j].OverallAfter
		}
		return cp[i].CompanyID < cp[j].CompanyID
	})
	if n > len(cp) {
		n = len(cp)
	}
	return cp[:n]
}

// CorrelationMatrix holds the Pearson correlations between the after-snapshot
// numeric columns (six dimensions plus the composite).
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlations computes the after-snapshot correlation matrix from a panel.
func Correlations(after *panel.Panel) CorrelationMatrix {
	cols := make([]string, 0, scoring.NumDimensions+1)
	for _, d := range scoring.Dimensions {
		cols = append(cols, "D_"+d)
	}
	cols = append(cols, "Overall_Maturity")

	series := make([][]float64, len(cols))
	for i := range series {
		series[i] = make([]float64, len(after.Orgs))
	}
	for r, org := range after.Orgs {
		for d, v := range org.Dimensions {
			series[d][r] = v
		}
		series[scoring.NumDimensions][r] = org.OverallMaturity
	}

	values := make([][]float64, len(cols))
	for i := range cols {
		values[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				values[i][j] = 1
				continue
			}
			values[i][j] = stat.Correlation(series[i], series[j], nil)
		}
	}
	return CorrelationMatrix{Columns: cols, Values: values}
}
