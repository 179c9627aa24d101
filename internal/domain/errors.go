package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to one of these, so callers
// can branch with errors.Is without caring about the concrete type.
var (
	// ErrModelNotFound indicates no tabulated model exists for the requested parameters.
	ErrModelNotFound = errors.New("atmosphere model not found")

	// ErrDomain indicates an evaluation outside a reddening law's valid domain.
	ErrDomain = errors.New("outside valid domain")

	// ErrConfiguration indicates an unknown model/law name or a missing required parameter.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidQuery indicates malformed request parameters: a NaN, Inf or
	// non-positive temperature, or a non-finite metallicity, gravity or A_Ks.
	ErrInvalidQuery = errors.New("invalid query")
)

// ModelNotFoundError reports a (family, temperature, metallicity, gravity)
// combination with no corresponding grid point.
type ModelNotFoundError struct {
	Family      Family
	Temperature float64
	Metallicity float64
	Gravity     float64
	Reason      string // Optional detail, e.g. "metallicity not in grid".
}

func (e *ModelNotFoundError) Error() string {
	msg := fmt.Sprintf("could not find %s atmosphere model for temperature=%.0f metallicity=%.1f log g=%.1f",
		e.Family, e.Temperature, e.Metallicity, e.Gravity)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ModelNotFoundError) Unwrap() error {
	return ErrModelNotFound
}

// DomainError reports a reddening-law evaluation outside its valid range.
type DomainError struct {
	Law      string
	Quantity string // "wavelength" (microns) or "wavenumber" (1/microns).
	Value    float64
	Min      float64
	Max      float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s %.6g outside valid range [%.6g, %.6g]", e.Law, e.Quantity, e.Value, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// ConfigurationError reports an unrecognised name or a missing parameter.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %q: %s", e.Name, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
