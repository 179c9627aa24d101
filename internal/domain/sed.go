// Package domain holds the stellar atmosphere and extinction model types.
package domain

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SED is a spectral energy distribution sampled on an ascending wavelength grid.
type SED struct {
	Family     Family    // Model family that produced the spectrum.
	Wavelength []float64 // Angstrom, strictly increasing.
	Flux       []float64 // erg/s/cm^2/A, same length as Wavelength.
}

// Validate checks the sampling invariants of the SED.
func (s *SED) Validate() error {
	if len(s.Wavelength) == 0 {
		return fmt.Errorf("SED has no samples")
	}
	if len(s.Wavelength) != len(s.Flux) {
		return fmt.Errorf("SED has %d wavelengths but %d fluxes", len(s.Wavelength), len(s.Flux))
	}
	for i := 1; i < len(s.Wavelength); i++ {
		if s.Wavelength[i] <= s.Wavelength[i-1] {
			return fmt.Errorf("SED wavelengths must be strictly increasing (index %d)", i)
		}
	}
	return nil
}

// IsZeroFlux reports whether every flux sample is exactly zero. Grid catalogs
// use an all-zero spectrum to signal a missing grid point.
func IsZeroFlux(flux []float64) bool {
	return floats.Norm(flux, 1) == 0
}
