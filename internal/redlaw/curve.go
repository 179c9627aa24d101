package redlaw

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"go.ngs.io/sed-api/internal/adapter/interp"
	"go.ngs.io/sed-api/internal/domain"
)

// Curve is an extinction curve tabulated on a dense wavelength grid.
type Curve struct {
	Law        string    `json:"law"`
	AKs        float64   `json:"aks"`
	Wavelength []float64 `json:"wavelength_angstrom"` // Ascending.
	Extinction []float64 `json:"extinction_mag"`      // A_lambda for the curve's AKs.
}

// Clone returns a deep copy.
func (c *Curve) Clone() *Curve {
	return &Curve{
		Law:        c.Law,
		AKs:        c.AKs,
		Wavelength: append([]float64(nil), c.Wavelength...),
		Extinction: append([]float64(nil), c.Extinction...),
	}
}

// Scale returns a new curve with every extinction value multiplied by k.
// Scaling a unit curve by A_Ks yields the curve for that A_Ks.
func (c *Curve) Scale(k float64) *Curve {
	out := &Curve{
		Law:        c.Law,
		AKs:        c.AKs * k,
		Wavelength: append([]float64(nil), c.Wavelength...),
		Extinction: make([]float64, len(c.Extinction)),
	}
	vecmath.ScaleBlock(out.Extinction, c.Extinction, k)
	return out
}

// At linearly interpolates the curve at a wavelength in Angstrom.
func (c *Curve) At(wavelength float64) (float64, error) {
	lin, err := interp.NewLinear(c.Wavelength, c.Extinction)
	if err != nil {
		return 0, err
	}
	v, err := lin.InterpolateAt(wavelength)
	if err != nil {
		lo, hi := lin.Range()
		return 0, &domain.DomainError{Law: c.Law, Quantity: "wavelength (angstrom)", Value: wavelength, Min: lo, Max: hi}
	}
	return v, nil
}

// Throughput returns the fraction of flux transmitted at each grid
// wavelength, 10^(-0.4 A_lambda).
func (c *Curve) Throughput() []float64 {
	out := make([]float64, len(c.Extinction))
	for i, a := range c.Extinction {
		out[i] = math.Pow(10, -0.4*a)
	}
	return out
}
