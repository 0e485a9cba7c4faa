package predict

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/scoring"
)

var (
	// ErrUnderdeterminedFit signals too few rows to estimate the model.
	ErrUnderdeterminedFit = errors.New("underdetermined fit")

	// ErrDimensionCount signals a prediction input that does not supply
	// exactly one value per dimension.
	ErrDimensionCount = errors.New("prediction input must supply exactly one value per dimension")
)

// Model is an immutable ordinary-least-squares fit of the composite maturity
// score on the six dimension scores. It is derived once from a panel and held
// read-only for prediction and ranking queries.
//
// The intercept is estimated rather than forced to zero. The generating
// formula has no intercept, so the estimate absorbs rounding noise; this is
// an intentional approximation, not a bug.
type Model struct {
	Intercept    float64                        `json:"intercept"`
	Coefficients [scoring.NumDimensions]float64 `json:"coefficients"`
	TrainedOn    int                            `json:"trained_on"`
}

// Fit estimates the model from a panel via least squares. The panel must
// contain at least NumDimensions+1 rows, one more than the parameter count of
// the dimension terms.
func Fit(p *panel.Panel) (*Model, error) {
	n := len(p.Orgs)
	if n < scoring.NumDimensions+1 {
		return nil, fmt.Errorf("%w: %d rows, need at least %d", ErrUnderdeterminedFit, n, scoring.NumDimensions+1)
	}

	cols := scoring.NumDimensions + 1 // intercept column first
	x := mat.NewDense(n, cols, nil)
	y := mat.NewDense(n, 1, nil)
	for i, org := range p.Orgs {
		x.Set(i, 0, 1)
		for d, v := range org.Dimensions {
			x.Set(i, d+1, v)
		}
		y.Set(i, 0, org.OverallMaturity)
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}

	m := &Model{Intercept: beta.At(0, 0), TrainedOn: n}
	for d := 0; d < scoring.NumDimensions; d++ {
		m.Coefficients[d] = beta.At(d+1, 0)
	}
	return m, nil
}

// Predict evaluates the model on six dimension values in canonical order.
// Values outside [0, 100] are not rejected: bounding input is a caller
// policy, the model itself is agnostic to the physical range.
func (m *Model) Predict(values []float64) (float64, error) {
	if len(values) != scoring.NumDimensions {
		return 0, fmt.Errorf("%w: got %d values", ErrDimensionCount, len(values))
	}
	pred := m.Intercept
	for d, v := range values {
		pred += m.Coefficients[d] * v
	}
	return pred, nil
}

// Order selects the direction of an impact ranking.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// Impact pairs a dimension with its fitted coefficient.
type Impact struct {
	Dimension   string  `json:"dimension"`
	Coefficient float64 `json:"coefficient"`
}

// RankImpact returns one entry per dimension sorted by coefficient magnitude
// in the requested order. Ties keep canonical declaration order.
func (m *Model) RankImpact(order Order) []Impact {
	impacts := make([]Impact, scoring.NumDimensions)
	for d, name := range scoring.Dimensions {
		impacts[d] = Impact{Dimension: name, Coefficient: m.Coefficients[d]}
	}
	sort.SliceStable(impacts, func(i, j int) bool {
		a, b := math.Abs(impacts[i].Coefficient), math.Abs(impacts[j].Coefficient)
		if order == Ascending {
			return a < b
		}
		return a > b
	})
	return impacts
}
