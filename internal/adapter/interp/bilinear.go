package interp

import (
	"fmt"
	"math"
	"sort"
)

// BilinearWeights returns the corner weights (W00, W10, W01, W11) of a
// (temperature, log g) cell for the normalized coordinates t, u in [0, 1]:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
func BilinearWeights(t, u float64) [4]float64 {
	// Clamp to [0, 1] to handle edge cases with floating point precision.
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))
	return [4]float64{
		(1 - t) * (1 - u),
		t * (1 - u),
		(1 - t) * u,
		t * u,
	}
}

// Bracket locates v on a strictly increasing axis and returns the indices of
// the enclosing nodes plus the normalized position between them. An exact
// node hit returns lo == hi.
func Bracket(axis []float64, v float64) (lo, hi int, t float64, err error) {
	n := len(axis)
	if n == 0 {
		return 0, 0, 0, fmt.Errorf("empty axis")
	}
	if v < axis[0] || v > axis[n-1] {
		return 0, 0, 0, fmt.Errorf("value %.6f is outside axis range [%.6f, %.6f]", v, axis[0], axis[n-1])
	}

	i := sort.SearchFloat64s(axis, v)
	if axis[i] == v {
		return i, i, 0, nil
	}
	lo, hi = i-1, i
	return lo, hi, (v - axis[lo]) / (axis[hi] - axis[lo]), nil
}
