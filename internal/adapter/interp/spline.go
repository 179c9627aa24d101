// Package interp provides the interpolation primitives used by the catalog
// and the reddening laws.
package interp

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Spline is a cubic spline passing exactly through every node, with
// not-a-knot end conditions. Outside the node range it continues the end
// polynomial pieces instead of holding the end values constant.
type Spline struct {
	xs  []float64
	fit interp.NotAKnotCubic

	// Lagrange forms of the first and last cubic pieces, used for extrapolation.
	head, tail cubicPiece
}

// NewSpline fits a zero-smoothing cubic spline through (xs, ys).
// xs must be strictly increasing and hold at least four nodes.
func NewSpline(xs, ys []float64) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("spline needs matching node arrays, got %d x and %d y", len(xs), len(ys))
	}
	if len(xs) < 4 {
		return nil, fmt.Errorf("spline needs at least 4 nodes, got %d", len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("spline nodes must be strictly increasing (index %d)", i)
		}
	}

	s := &Spline{xs: append([]float64(nil), xs...)}
	if err := s.fit.Fit(s.xs, ys); err != nil {
		return nil, fmt.Errorf("failed to fit spline: %w", err)
	}

	n := len(xs)
	s.head = s.sample(xs[0], xs[1])
	s.tail = s.sample(xs[n-2], xs[n-1])
	return s, nil
}

// sample captures the cubic piece on [a, b] by evaluating it at four points.
// A cubic is fixed by four samples, so the Lagrange form reproduces it exactly
// (to rounding) anywhere on the real line.
func (s *Spline) sample(a, b float64) cubicPiece {
	var p cubicPiece
	h := (b - a) / 3
	for k := 0; k < 4; k++ {
		p.x[k] = a + float64(k)*h
		p.y[k] = s.fit.Predict(p.x[k])
	}
	p.x[3] = b
	p.y[3] = s.fit.Predict(b)
	return p
}

// Predict evaluates the spline at x.
func (s *Spline) Predict(x float64) float64 {
	switch {
	case x < s.xs[0]:
		return s.head.eval(x)
	case x > s.xs[len(s.xs)-1]:
		return s.tail.eval(x)
	default:
		return s.fit.Predict(x)
	}
}

// Nodes returns a copy of the spline's x nodes.
func (s *Spline) Nodes() []float64 {
	return append([]float64(nil), s.xs...)
}

type cubicPiece struct {
	x, y [4]float64
}

func (p cubicPiece) eval(x float64) float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		term := p.y[i]
		for j := 0; j < 4; j++ {
			if j != i {
				term *= (x - p.x[j]) / (p.x[i] - p.x[j])
			}
		}
		sum += term
	}
	return sum
}

// Linear is a piecewise-linear lookup over tabulated samples that refuses to
// extrapolate.
type Linear struct {
	xs  []float64
	fit interp.PiecewiseLinear
}

// NewLinear builds a piecewise-linear interpolant through (xs, ys).
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("linear interpolant needs matching arrays, got %d x and %d y", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("linear interpolant needs at least 2 samples, got %d", len(xs))
	}
	l := &Linear{xs: xs}
	if err := l.fit.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("failed to fit linear interpolant: %w", err)
	}
	return l, nil
}

// Range returns the first and last sample positions.
func (l *Linear) Range() (float64, float64) {
	return l.xs[0], l.xs[len(l.xs)-1]
}

// InterpolateAt evaluates the interpolant, failing outside the sampled range.
func (l *Linear) InterpolateAt(x float64) (float64, error) {
	lo, hi := l.Range()
	if x < lo || x > hi {
		return 0, fmt.Errorf("x coordinate %.6f is outside sampled range [%.6f, %.6f]", x, lo, hi)
	}
	return l.fit.Predict(x), nil
}
