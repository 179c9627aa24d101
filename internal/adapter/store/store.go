// Package store defines the storage contracts the use cases depend on.
package store

// GridCatalog looks up tabulated model spectra.
type GridCatalog interface {
	// Lookup returns the spectrum of a library at (temperature, metallicity,
	// gravity). An all-zero flux means the library has no such grid point.
	Lookup(libraryID string, temperature, metallicity, gravity float64) (wavelength, flux []float64, err error)
}
