package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Family identifies a stellar atmosphere model grid.
type Family int

const (
	// Kurucz1993 is the ATLAS9 grid of Kurucz (1993).
	Kurucz1993 Family = iota
	// CastelliKurucz2004 is the ATLAS9 grid of Castelli & Kurucz (2004).
	CastelliKurucz2004
	// NextGen is the NextGen grid of Hauschildt et al. (1999).
	NextGen
	// AMESDusty is the AMES-Dusty grid of Allard et al. (2000).
	AMESDusty
	// Phoenix is the PHOENIX BT-Settl grid of Allard et al. (2011).
	Phoenix
)

var familyNames = map[Family]string{
	Kurucz1993:         "Kurucz1993",
	CastelliKurucz2004: "CastelliKurucz2004",
	NextGen:            "NextGen",
	AMESDusty:          "AMESDusty",
	Phoenix:            "Phoenix",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily resolves a case-insensitive family name. Library identifiers
// ("k93models", "ck04models", ...) are accepted as aliases.
func ParseFamily(name string) (Family, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for f, n := range familyNames {
		if strings.ToLower(n) == needle || strings.ToLower(GridSpecs[f].LibraryID) == needle {
			return f, nil
		}
	}
	return 0, &ConfigurationError{Name: name, Reason: "unrecognized atmosphere model family"}
}

// AllFamilies returns every supported family in declaration order.
func AllFamilies() []Family {
	return []Family{Kurucz1993, CastelliKurucz2004, NextGen, AMESDusty, Phoenix}
}

// AtmosphereQuery is a caller-supplied grid request. Values need not sit on
// grid nodes; the catalog interpolates between them.
type AtmosphereQuery struct {
	Metallicity float64 // [Fe/H] or [M/H] depending on the family.
	Temperature float64 // Kelvin.
	Gravity     float64 // log g (cgs).
}

// Check rejects non-finite parameters and non-positive temperatures.
func (q AtmosphereQuery) Check() error {
	if math.IsNaN(q.Temperature) || math.IsInf(q.Temperature, 0) || q.Temperature <= 0 {
		return fmt.Errorf("%w: temperature must be positive and finite, got %v", ErrInvalidQuery, q.Temperature)
	}
	if math.IsNaN(q.Metallicity) || math.IsInf(q.Metallicity, 0) {
		return fmt.Errorf("%w: metallicity must be finite, got %v", ErrInvalidQuery, q.Metallicity)
	}
	if math.IsNaN(q.Gravity) || math.IsInf(q.Gravity, 0) {
		return fmt.Errorf("%w: gravity must be finite, got %v", ErrInvalidQuery, q.Gravity)
	}
	return nil
}

// TempStep is one row of a temperature grid-step table.
type TempStep struct {
	MinK  float64 `json:"min_k"`
	MaxK  float64 `json:"max_k"`
	StepK float64 `json:"step_k"`
}

// GridSpec describes the documented physical domain of a model family.
// A zero range (Min == Max == 0) or an empty metallicity set means the
// family leaves that axis to the catalog.
type GridSpec struct {
	Family        Family     `json:"-"`
	Name          string     `json:"name"`
	LibraryID     string     `json:"library_id"`
	Reference     string     `json:"reference"`
	MetallicityIs string     `json:"metallicity_scale"` // "[Fe/H]" or "[M/H]".
	TempMinK      float64    `json:"temp_min_k,omitempty"`
	TempMaxK      float64    `json:"temp_max_k,omitempty"`
	TempSteps     []TempStep `json:"temp_steps,omitempty"`
	Metallicities []float64  `json:"metallicities,omitempty"`
	GravityMin    float64    `json:"gravity_min,omitempty"`
	GravityMax    float64    `json:"gravity_max,omitempty"`
	GravityStep   float64    `json:"gravity_step,omitempty"`
}

// metallicityTolerance absorbs float formatting noise such as -0.30000000000000004.
const metallicityTolerance = 1e-6

// Validate rejects queries outside the documented domain of the family.
func (g GridSpec) Validate(q AtmosphereQuery) error {
	if err := q.Check(); err != nil {
		return err
	}
	notFound := func(reason string) error {
		return &ModelNotFoundError{
			Family:      g.Family,
			Temperature: q.Temperature,
			Metallicity: q.Metallicity,
			Gravity:     q.Gravity,
			Reason:      reason,
		}
	}

	if g.TempMaxK > 0 && (q.Temperature < g.TempMinK || q.Temperature > g.TempMaxK) {
		return notFound(fmt.Sprintf("temperature outside %.0f-%.0f K", g.TempMinK, g.TempMaxK))
	}
	if g.GravityMax > g.GravityMin && (q.Gravity < g.GravityMin || q.Gravity > g.GravityMax) {
		return notFound(fmt.Sprintf("log g outside %.1f-%.1f", g.GravityMin, g.GravityMax))
	}
	if len(g.Metallicities) > 0 && !g.hasMetallicity(q.Metallicity) {
		return notFound(fmt.Sprintf("metallicity not in grid %v", g.Metallicities))
	}
	return nil
}

func (g GridSpec) hasMetallicity(m float64) bool {
	// Metallicities are stored descending.
	i := sort.Search(len(g.Metallicities), func(i int) bool {
		return g.Metallicities[i] <= m+metallicityTolerance
	})
	return i < len(g.Metallicities) && math.Abs(g.Metallicities[i]-m) <= metallicityTolerance
}

// TempStepAt returns the documented grid spacing at a temperature, or 0 when
// the family does not publish a step table for it.
func (g GridSpec) TempStepAt(temperature float64) float64 {
	for _, s := range g.TempSteps {
		if temperature >= s.MinK && temperature < s.MaxK {
			return s.StepK
		}
	}
	if n := len(g.TempSteps); n > 0 && temperature == g.TempSteps[n-1].MaxK {
		return g.TempSteps[n-1].StepK
	}
	return 0
}

// GridSpecs lists the documented validity table of every family.
var GridSpecs = map[Family]GridSpec{
	Kurucz1993: {
		Family:        Kurucz1993,
		Name:          "Kurucz1993",
		LibraryID:     "k93models",
		Reference:     "Kurucz 1993",
		MetallicityIs: "[Fe/H]",
		TempMinK:      3000,
		TempMaxK:      50000,
		TempSteps: []TempStep{
			{MinK: 3000, MaxK: 10000, StepK: 250},
			{MinK: 10000, MaxK: 13000, StepK: 500},
			{MinK: 13000, MaxK: 35000, StepK: 1000},
			{MinK: 35000, MaxK: 50000, StepK: 2500},
		},
		Metallicities: []float64{
			1.0, 0.5, 0.3, 0.2, 0.1, 0.0, -0.1, -0.2, -0.3, -0.5,
			-1.0, -1.5, -2.0, -2.5, -3.0, -3.5, -4.0, -4.5, -5.0,
		},
		GravityMin:  0.0,
		GravityMax:  5.0,
		GravityStep: 0.5,
	},
	CastelliKurucz2004: {
		Family:        CastelliKurucz2004,
		Name:          "CastelliKurucz2004",
		LibraryID:     "ck04models",
		Reference:     "Castelli & Kurucz 2004",
		MetallicityIs: "[Fe/H]",
		// The published step table stops at 10000 K, but the merged grid
		// routes every star above 7000 K here, so the hard limit follows
		// the full ck04models coverage.
		TempMinK: 2600,
		TempMaxK: 50000,
		TempSteps: []TempStep{
			{MinK: 2600, MaxK: 4000, StepK: 100},
			{MinK: 4000, MaxK: 10000, StepK: 200},
		},
		Metallicities: []float64{0.0, -0.5, -1.0, -1.5, -2.0, -2.5},
		GravityMin:    3.5,
		GravityMax:    6.0,
		GravityStep:   0.5,
	},
	NextGen: {
		Family:        NextGen,
		Name:          "NextGen",
		LibraryID:     "nextgen",
		Reference:     "Hauschildt+ 1999",
		MetallicityIs: "[M/H]",
	},
	AMESDusty: {
		Family:        AMESDusty,
		Name:          "AMESDusty",
		LibraryID:     "AMESdusty",
		Reference:     "Allard+ 2000",
		MetallicityIs: "[M/H]",
	},
	Phoenix: {
		Family:        Phoenix,
		Name:          "Phoenix",
		LibraryID:     "phoenix",
		Reference:     "Allard+ 2011 (BT-Settl)",
		MetallicityIs: "[M/H]",
	},
}
