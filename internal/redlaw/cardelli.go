package redlaw

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/sed-api/internal/domain"
)

const (
	cardelliMinWavenumber = 0.3 // 1/micron
	cardelliMaxWavenumber = 8.0 // 1/micron

	// ksWavenumber is the Ks band in inverse microns.
	ksWavenumber = 0.46

	cardelliGridMin  = 0.5 // microns
	cardelliGridMax  = 3.0
	cardelliGridStep = 0.001
)

// Optical/NIR polynomial coefficients of y = x - 1.82, orders 0 through 7.
var (
	cardelliOpticalA = [8]float64{1, 0.17699, -0.50447, -0.02427, 0.72085, 0.01979, -0.77530, 0.32999}
	cardelliOpticalB = [8]float64{0, 1.41338, 2.28305, 1.07233, -5.38434, -0.62251, 5.30260, -2.09002}
)

// CardelliCoefficients returns the auxiliary functions a(x) and b(x) of the
// Cardelli, Clayton & Mathis (1989) law at wavenumber x (1/micron), so that
// A(lambda)/Av = a + b/Rv. x must lie in [0.3, 8.0].
func CardelliCoefficients(x float64) (a, b float64, err error) {
	if !(x >= cardelliMinWavenumber && x <= cardelliMaxWavenumber) {
		return 0, 0, &domain.DomainError{
			Law:      Cardelli89.String(),
			Quantity: "wavenumber",
			Value:    x,
			Min:      cardelliMinWavenumber,
			Max:      cardelliMaxWavenumber,
		}
	}

	switch {
	case x <= 1.1:
		// Infrared.
		p := math.Pow(x, 1.61)
		a = 0.574 * p
		b = -0.527 * p
	case x <= 3.3:
		// Optical and near infrared.
		y := x - 1.82
		a = horner(cardelliOpticalA[:], y)
		b = horner(cardelliOpticalB[:], y)
	default:
		// Ultraviolet, with the far-UV curvature beyond x = 5.9.
		a = 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341)
		b = -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263)
		if x >= 5.9 {
			d := x - 5.9
			a += -0.04473*d*d - 0.009779*d*d*d
			b += 0.2130*d*d + 0.1207*d*d*d
		}
	}
	return a, b, nil
}

// horner evaluates sum(c[i] * y^i).
func horner(c []float64, y float64) float64 {
	var v float64
	for i := len(c) - 1; i >= 0; i-- {
		v = v*y + c[i]
	}
	return v
}

// CardelliLaw is the Cardelli et al. (1989) law for a fixed Rv, normalized
// to A_Ks.
type CardelliLaw struct {
	rv     float64
	ksWave float64 // microns
	akAv   float64 // A_Ks/Av at ksWave.
	curve  *Curve
}

// NewCardelli89 builds the Cardelli law for the given total-to-selective
// extinction ratio.
func NewCardelli89(rv float64) (*CardelliLaw, error) {
	if math.IsNaN(rv) || math.IsInf(rv, 0) || rv <= 0 {
		return nil, &domain.ConfigurationError{Name: Cardelli89.String(), Reason: fmt.Sprintf("Rv must be positive and finite, got %v", rv)}
	}

	grid := denseGrid(cardelliGridMin, cardelliGridMax, cardelliGridStep)

	// Normalize at the grid wavenumber nearest the Ks band.
	dist := make([]float64, len(grid))
	for i, w := range grid {
		dist[i] = math.Abs(1/w - ksWavenumber)
	}
	ksWave := grid[floats.MinIdx(dist)]

	law := &CardelliLaw{rv: rv, ksWave: ksWave}
	akAv, err := law.aOverAv(ksWave)
	if err != nil {
		return nil, err
	}
	// Extreme Rv values overflow a + b/Rv.
	if math.IsNaN(akAv) || math.IsInf(akAv, 0) || akAv == 0 {
		return nil, &domain.ConfigurationError{Name: Cardelli89.String(), Reason: fmt.Sprintf("Rv %v gives no usable Ks normalization", rv)}
	}
	law.akAv = akAv

	law.curve = unitCurve(Cardelli89.String(), grid, func(w float64) float64 {
		// Every grid point lies inside the wavenumber domain.
		v, _ := law.Evaluate(w)
		return v
	})
	for _, v := range law.curve.Extinction {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &domain.ConfigurationError{Name: Cardelli89.String(), Reason: fmt.Sprintf("Rv %v gives a non-finite extinction curve", rv)}
		}
	}
	return law, nil
}

// aOverAv returns A(lambda)/Av at a wavelength in microns.
func (l *CardelliLaw) aOverAv(wavelength float64) (float64, error) {
	lo, hi := l.Domain()
	if !(wavelength >= lo && wavelength <= hi) {
		return 0, &domain.DomainError{
			Law:      Cardelli89.String(),
			Quantity: "wavelength",
			Value:    wavelength,
			Min:      lo,
			Max:      hi,
		}
	}
	// The reciprocal of an in-domain wavelength can round just past the
	// wavenumber limits.
	x := math.Min(math.Max(1/wavelength, cardelliMinWavenumber), cardelliMaxWavenumber)
	a, b, err := CardelliCoefficients(x)
	if err != nil {
		return 0, err
	}
	return a + b/l.rv, nil
}

// Rv returns the total-to-selective extinction ratio.
func (l *CardelliLaw) Rv() float64 { return l.rv }

// Name returns the law identifier.
func (l *CardelliLaw) Name() string { return Cardelli89.String() }

// Reference returns the literature reference.
func (l *CardelliLaw) Reference() string { return "Cardelli+ 1989" }

// Domain returns the valid wavelength range in microns, 1/8.0 to 1/0.3.
func (l *CardelliLaw) Domain() (float64, float64) {
	return 1 / cardelliMaxWavenumber, 1 / cardelliMinWavenumber
}

// KsWavelength returns the grid wavelength nearest the Ks wavenumber.
func (l *CardelliLaw) KsWavelength() float64 { return l.ksWave }

// Evaluate returns A_lambda/A_Ks at a wavelength in microns.
func (l *CardelliLaw) Evaluate(wavelength float64) (float64, error) {
	ratio, err := l.aOverAv(wavelength)
	if err != nil {
		return 0, err
	}
	return ratio / l.akAv, nil
}

// Extinction returns A_lambda in magnitudes for the given A_Ks.
func (l *CardelliLaw) Extinction(wavelength, aks float64) (float64, error) {
	v, err := l.Evaluate(wavelength)
	if err != nil {
		return 0, err
	}
	return aks * v, nil
}

// Curve returns the unit extinction curve over 0.5-3.0 microns. The grid is
// narrower than Domain: Evaluate covers 0.125-3.33 microns, so Curve().At
// fails with a DomainError outside 5000-29990 Angstrom even where Evaluate
// succeeds.
func (l *CardelliLaw) Curve() *Curve { return l.curve.Clone() }

// Scale returns the extinction curve for the given A_Ks, on the same grid as
// Curve.
func (l *CardelliLaw) Scale(aks float64) *Curve { return l.curve.Scale(aks) }
