package scoring

import (
	"errors"
	"fmt"
	"math"
)

// weightTolerance is the allowed deviation of the weight sum from 1.0.
const weightTolerance = 1e-6

var (
	// ErrInvalidWeights signals a weight configuration that does not cover
	// the six dimensions exactly or does not sum to 1.0.
	ErrInvalidWeights = errors.New("invalid weight configuration")

	// ErrOutOfRange signals a dimension value outside [0, 100].
	ErrOutOfRange = errors.New("dimension value out of range")
)

// WeightConfig maps each dimension name to its strategic weight. The mapping
// is versioned so that recalibrations of the framework stay distinguishable
// in exported artifacts.
type WeightConfig struct {
	Version string             `json:"version" yaml:"version"`
	Weights map[string]float64 `json:"weights" yaml:"weights"`
}

// DefaultWeights returns the EDIH DMA strategic weighting.
func DefaultWeights() WeightConfig {
	return WeightConfig{
		Version: "dma-2024.1",
		Weights: map[string]float64{
			"Strategy":       0.25,
			"Infrastructure": 0.15,
			"Human_Centric":  0.10,
			"Data_Mgmt":      0.20,
			"Automation_AI":  0.20,
			"Green_Digital":  0.10,
		},
	}
}

// Sum returns the total of all weights.
func (w WeightConfig) Sum() float64 {
	var s float64
	for _, v := range w.Weights {
		s += v
	}
	return s
}

// Validate checks that the config names each of the six dimensions exactly
// once, that no weight is negative, and that the weights sum to 1.0 within
// tolerance.
func (w WeightConfig) Validate() error {
	if len(w.Weights) != NumDimensions {
		return fmt.Errorf("%w: %d weights, expected %d", ErrInvalidWeights, len(w.Weights), NumDimensions)
	}
	for _, name := range Dimensions {
		v, ok := w.Weights[name]
		if !ok {
			return fmt.Errorf("%w: missing dimension %s", ErrInvalidWeights, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: negative weight for %s: %f", ErrInvalidWeights, name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.8f, must sum to 1.0", ErrInvalidWeights, w.Sum())
	}
	return nil
}

// Vector returns the weights in canonical dimension order.
func (w WeightConfig) Vector() ([NumDimensions]float64, error) {
	var vec [NumDimensions]float64
	if err := w.Validate(); err != nil {
		return vec, err
	}
	for i, name := range Dimensions {
		vec[i] = w.Weights[name]
	}
	return vec, nil
}

// Composite computes the weighted composite maturity score for one dimension
// set, rounded to two decimals. It is a pure function: range enforcement on
// the dimension values happens at ingestion, not here.
func Composite(dims DimensionSet, w WeightConfig) (float64, error) {
	vec, err := w.Vector()
	if err != nil {
		return 0, err
	}
	var total float64
	for i, v := range dims {
		total += v * vec[i]
	}
	return Round2(total), nil
}

// Round2 rounds to two decimal places, the precision of every published
// maturity score.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
