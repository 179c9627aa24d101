package usecase

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"go.ngs.io/sed-api/internal/adapter/store"
	"go.ngs.io/sed-api/internal/domain"
	"go.ngs.io/sed-api/internal/logging"
)

// Merged-grid boundaries.
const (
	mergedCoolLimitK = 4000.0
	mergedHotLimitK  = 7000.0
	mergedDwarfLogG  = 4.0
)

// MergedFamily is the request name of the merged atmosphere grid.
const MergedFamily = "merged"

// GridAdapter serves one model family from a grid catalog.
type GridAdapter struct {
	spec    domain.GridSpec
	catalog store.GridCatalog
}

// NewGridAdapter creates an adapter for family backed by catalog.
func NewGridAdapter(family domain.Family, catalog store.GridCatalog) *GridAdapter {
	return &GridAdapter{
		spec:    domain.GridSpecs[family],
		catalog: catalog,
	}
}

// Spec returns the documented domain of the adapter's family.
func (a *GridAdapter) Spec() domain.GridSpec {
	return a.spec
}

// Fetch validates q against the family's domain, looks it up and turns the
// catalog's all-zero sentinel into a ModelNotFoundError.
func (a *GridAdapter) Fetch(q domain.AtmosphereQuery) (*domain.SED, error) {
	if err := a.spec.Validate(q); err != nil {
		return nil, err
	}

	wave, flux, err := a.catalog.Lookup(a.spec.LibraryID, q.Temperature, q.Metallicity, q.Gravity)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s model: %w", a.spec.Name, err)
	}
	if domain.IsZeroFlux(flux) {
		return nil, &domain.ModelNotFoundError{
			Family:      a.spec.Family,
			Temperature: q.Temperature,
			Metallicity: q.Metallicity,
			Gravity:     q.Gravity,
		}
	}

	sed := &domain.SED{Family: a.spec.Family, Wavelength: wave, Flux: flux}
	if err := sed.Validate(); err != nil {
		return nil, fmt.Errorf("%s catalog returned a malformed spectrum: %w", a.spec.Name, err)
	}
	return sed, nil
}

// AtmosphereRequest is a named-family atmosphere request.
type AtmosphereRequest struct {
	Family      string // A family name, library id, or "merged".
	Temperature float64
	Metallicity float64
	Gravity     float64
}

// AtmosphereResponse carries one model spectrum.
type AtmosphereResponse struct {
	Family      string    `json:"family"`
	LibraryID   string    `json:"library_id"`
	Temperature float64   `json:"temperature"`
	Metallicity float64   `json:"metallicity"`
	Gravity     float64   `json:"gravity"`
	Wavelength  []float64 `json:"wavelength_angstrom"`
	Flux        []float64 `json:"flux"`
}

// AtmosphereUseCase resolves atmosphere requests across every family.
type AtmosphereUseCase struct {
	adapters map[domain.Family]*GridAdapter
}

// NewAtmosphereUseCase creates one adapter per family over catalog.
func NewAtmosphereUseCase(catalog store.GridCatalog) *AtmosphereUseCase {
	uc := &AtmosphereUseCase{adapters: make(map[domain.Family]*GridAdapter)}
	for _, f := range domain.AllFamilies() {
		uc.adapters[f] = NewGridAdapter(f, catalog)
	}
	return uc
}

// Kurucz returns a Kurucz (1993) ATLAS9 spectrum. Valid for 3000-50000 K,
// log g 0.0-5.0 and the 19 tabulated [Fe/H] values from +1.0 to -5.0.
func (uc *AtmosphereUseCase) Kurucz(q domain.AtmosphereQuery) (*domain.SED, error) {
	return uc.Fetch(domain.Kurucz1993, q)
}

// Castelli returns a Castelli & Kurucz (2004) spectrum. Valid for log g
// 3.5-6.0 and [Fe/H] in {0, -0.5, -1.0, -1.5, -2.0, -2.5}.
func (uc *AtmosphereUseCase) Castelli(q domain.AtmosphereQuery) (*domain.SED, error) {
	return uc.Fetch(domain.CastelliKurucz2004, q)
}

// NextGen returns a NextGen spectrum; the catalog decides the valid range.
func (uc *AtmosphereUseCase) NextGen(q domain.AtmosphereQuery) (*domain.SED, error) {
	return uc.Fetch(domain.NextGen, q)
}

// AMESDusty returns an AMES-Dusty spectrum; the catalog decides the valid range.
func (uc *AtmosphereUseCase) AMESDusty(q domain.AtmosphereQuery) (*domain.SED, error) {
	return uc.Fetch(domain.AMESDusty, q)
}

// Phoenix returns a PHOENIX BT-Settl spectrum; the catalog decides the valid range.
func (uc *AtmosphereUseCase) Phoenix(q domain.AtmosphereQuery) (*domain.SED, error) {
	return uc.Fetch(domain.Phoenix, q)
}

// Fetch returns a spectrum from the named family.
func (uc *AtmosphereUseCase) Fetch(family domain.Family, q domain.AtmosphereQuery) (*domain.SED, error) {
	a, ok := uc.adapters[family]
	if !ok {
		return nil, &domain.ConfigurationError{Name: family.String(), Reason: "no adapter for family"}
	}
	return a.Fetch(q)
}

// SelectFamily is the merged-grid decision table, evaluated in order:
// below 4000 K PHOENIX; up to 7000 K PHOENIX for log g < 4.0 and NextGen
// otherwise; CastelliKurucz2004 from 7000 K up. Grids are never blended,
// so spectra jump at the 4000 K and 7000 K boundaries.
func SelectFamily(temperature, gravity float64) (domain.Family, error) {
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) || temperature <= 0 {
		return 0, fmt.Errorf("%w: temperature must be positive and finite, got %v", domain.ErrInvalidQuery, temperature)
	}
	switch {
	case temperature < mergedCoolLimitK:
		return domain.Phoenix, nil
	case temperature < mergedHotLimitK && gravity < mergedDwarfLogG:
		return domain.Phoenix, nil
	case temperature < mergedHotLimitK:
		return domain.NextGen, nil
	default:
		return domain.CastelliKurucz2004, nil
	}
}

// Merged returns a spectrum from whichever family SelectFamily picks.
func (uc *AtmosphereUseCase) Merged(q domain.AtmosphereQuery) (*domain.SED, error) {
	if err := q.Check(); err != nil {
		return nil, err
	}
	family, err := SelectFamily(q.Temperature, q.Gravity)
	if err != nil {
		return nil, err
	}
	logging.Debug("merged atmosphere resolved",
		zap.String("family", family.String()),
		zap.Float64("temperature", q.Temperature),
		zap.Float64("gravity", q.Gravity))
	return uc.Fetch(family, q)
}

// Families returns the documented domain of every family.
func (uc *AtmosphereUseCase) Families() []domain.GridSpec {
	specs := make([]domain.GridSpec, 0, len(uc.adapters))
	for _, f := range domain.AllFamilies() {
		if a, ok := uc.adapters[f]; ok {
			specs = append(specs, a.Spec())
		}
	}
	return specs
}

// Execute resolves a request by family name.
func (uc *AtmosphereUseCase) Execute(req AtmosphereRequest) (*AtmosphereResponse, error) {
	q := domain.AtmosphereQuery{
		Metallicity: req.Metallicity,
		Temperature: req.Temperature,
		Gravity:     req.Gravity,
	}

	var sed *domain.SED
	var err error
	if strings.EqualFold(strings.TrimSpace(req.Family), MergedFamily) {
		sed, err = uc.Merged(q)
	} else {
		family, perr := domain.ParseFamily(req.Family)
		if perr != nil {
			return nil, perr
		}
		sed, err = uc.Fetch(family, q)
	}
	if err != nil {
		return nil, err
	}

	return &AtmosphereResponse{
		Family:      sed.Family.String(),
		LibraryID:   domain.GridSpecs[sed.Family].LibraryID,
		Temperature: req.Temperature,
		Metallicity: req.Metallicity,
		Gravity:     req.Gravity,
		Wavelength:  sed.Wavelength,
		Flux:        sed.Flux,
	}, nil
}
