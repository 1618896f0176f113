package downsample

import (
	"math"
	"sort"

	"github.com/K-sudo-sudo/CaloCem/pkg/derivative"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// CurvatureFloor is added to every curvature value so that no index ends up
// with zero selection probability.
const CurvatureFloor = 1e-15

// Curvature returns |d²y/dx²| + CurvatureFloor for a smoothed curve.
// Both derivatives are taken with non-uniform central differences.
func Curvature(x, ySmooth []float64) ([]float64, error) {
	first, err := derivative.Gradient(ySmooth, x)
	if err != nil {
		return nil, errors.Wrap(err, "first derivative")
	}
	second, err := derivative.Gradient(first, x)
	if err != nil {
		return nil, errors.Wrap(err, "second derivative")
	}
	for i, v := range second {
		second[i] = math.Abs(v) + CurvatureFloor
	}
	return second, nil
}

// Density turns a strictly positive curvature profile into a probability
// density over indices. The normalized curvature is blended with a uniform
// floor of baselineWeight/targetCount and normalized again, so the result
// sums to 1.
func Density(curvature []float64, baselineWeight float64, targetCount int) []float64 {
	density := make([]float64, len(curvature))
	copy(density, curvature)
	if len(density) == 0 {
		return density
	}

	floats.Scale(1/floats.Sum(density), density)
	floats.AddConst(baselineWeight/float64(targetCount), density)
	floats.Scale(1/floats.Sum(density), density)
	return density
}

// SampleIndices draws targetCount evenly spaced quantiles in [0, 1) through
// the cumulative distribution of density. Every quantile q maps to the
// smallest index whose CDF value is at least q. The result is strictly
// increasing, lies in [0, len(density)-1] and has at most targetCount
// elements: quantiles landing on the same index collapse into one.
func SampleIndices(density []float64, targetCount int) []int {
	n := len(density)
	if n == 0 || targetCount <= 0 {
		return nil
	}

	cdf := make([]float64, n)
	floats.CumSum(cdf, density)

	indices := make([]int, 0, min(targetCount, n))
	last := -1
	for i := range targetCount {
		q := float64(i) / float64(targetCount)
		idx := sort.SearchFloat64s(cdf, q)
		if idx > n-1 {
			idx = n - 1
		}
		// quantiles are increasing, so duplicates are always adjacent
		if idx != last {
			indices = append(indices, idx)
			last = idx
		}
	}
	return indices
}
