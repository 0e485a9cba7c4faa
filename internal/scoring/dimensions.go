package scoring

import "fmt"

// NumDimensions is the number of assessment dimensions in the DMA framework.
const NumDimensions = 6

// Dimensions lists the six assessment dimensions in canonical order. Every
// DimensionSet, weight vector and model coefficient follows this order.
var Dimensions = [NumDimensions]string{
	"Strategy",
	"Infrastructure",
	"Human_Centric",
	"Data_Mgmt",
	"Automation_AI",
	"Green_Digital",
}

// DimensionSet holds the six dimension scores for one company, one snapshot,
// in canonical order. Valid values lie in [0, 100].
type DimensionSet [NumDimensions]float64

// Validate checks that every dimension value lies in [0, 100].
func (d DimensionSet) Validate() error {
	for i, v := range d {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%g", ErrOutOfRange, Dimensions[i], v)
		}
	}
	return nil
}

// DimensionIndex returns the canonical position of a dimension name, or -1 if
// the name is not part of the framework.
func DimensionIndex(name string) int {
	for i, d := range Dimensions {
		if d == name {
			return i
		}
	}
	return -1
}
