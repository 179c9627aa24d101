package domain

import (
	"errors"
	"math"
	"testing"
)

func TestParseFamily(t *testing.T) {
	tests := []struct {
		name string
		want Family
	}{
		{"Kurucz1993", Kurucz1993},
		{"  castellikurucz2004 ", CastelliKurucz2004},
		{"ck04models", CastelliKurucz2004},
		{"k93models", Kurucz1993},
		{"AMESdusty", AMESDusty},
		{"NEXTGEN", NextGen},
		{"phoenix", Phoenix},
	}
	for _, tt := range tests {
		got, err := ParseFamily(tt.name)
		if err != nil {
			t.Fatalf("ParseFamily(%q) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseFamily(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	_, err := ParseFamily("bosz")
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestGridSpecValidate(t *testing.T) {
	k93 := GridSpecs[Kurucz1993]
	ck04 := GridSpecs[CastelliKurucz2004]

	tests := []struct {
		name    string
		spec    GridSpec
		q       AtmosphereQuery
		wantErr error
	}{
		{"in domain", k93, AtmosphereQuery{Metallicity: -0.3, Temperature: 5750, Gravity: 4.5}, nil},
		{"float noise metallicity", k93, AtmosphereQuery{Metallicity: -0.1 - 0.2, Temperature: 5750, Gravity: 4.5}, nil},
		{"too cool", k93, AtmosphereQuery{Temperature: 2999, Gravity: 4.5}, ErrModelNotFound},
		{"too hot", k93, AtmosphereQuery{Temperature: 50001, Gravity: 4.5}, ErrModelNotFound},
		{"gravity too high", k93, AtmosphereQuery{Temperature: 5750, Gravity: 5.5}, ErrModelNotFound},
		{"metallicity off grid", k93, AtmosphereQuery{Metallicity: 0.4, Temperature: 5750, Gravity: 4.5}, ErrModelNotFound},
		{"ck04 low gravity", ck04, AtmosphereQuery{Temperature: 8000, Gravity: 3.0}, ErrModelNotFound},
		{"ck04 hot", ck04, AtmosphereQuery{Temperature: 30000, Gravity: 4.0}, nil},
		{"catalog decides", GridSpecs[Phoenix], AtmosphereQuery{Metallicity: 0.7, Temperature: 1200, Gravity: 6.0}, nil},
		{"zero temperature", GridSpecs[Phoenix], AtmosphereQuery{Temperature: 0, Gravity: 4.0}, ErrInvalidQuery},
		{"nan gravity", GridSpecs[Phoenix], AtmosphereQuery{Temperature: 3000, Gravity: math.NaN()}, ErrInvalidQuery},
		{"inf metallicity", GridSpecs[Phoenix], AtmosphereQuery{Metallicity: math.Inf(-1), Temperature: 3000, Gravity: 4.0}, ErrInvalidQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate(tt.q)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelNotFoundErrorCarriesParameters(t *testing.T) {
	err := GridSpecs[Kurucz1993].Validate(AtmosphereQuery{Temperature: 60000, Gravity: 4.5})

	var mnf *ModelNotFoundError
	if !errors.As(err, &mnf) {
		t.Fatalf("expected *ModelNotFoundError, got %T", err)
	}
	if mnf.Family != Kurucz1993 || mnf.Temperature != 60000 || mnf.Gravity != 4.5 {
		t.Errorf("unexpected error fields: %+v", mnf)
	}
	if mnf.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestTempStepAt(t *testing.T) {
	k93 := GridSpecs[Kurucz1993]
	tests := []struct {
		temp, step float64
	}{
		{3000, 250},
		{9999, 250},
		{10000, 500},
		{20000, 1000},
		{50000, 2500},
		{60000, 0},
	}
	for _, tt := range tests {
		if got := k93.TempStepAt(tt.temp); got != tt.step {
			t.Errorf("TempStepAt(%v) = %v, want %v", tt.temp, got, tt.step)
		}
	}
	if got := GridSpecs[NextGen].TempStepAt(3000); got != 0 {
		t.Errorf("NextGen publishes no steps, got %v", got)
	}
}

func TestSEDValidate(t *testing.T) {
	good := &SED{Wavelength: []float64{1, 2, 3}, Flux: []float64{1, 1, 1}}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []*SED{
		{},
		{Wavelength: []float64{1, 2}, Flux: []float64{1}},
		{Wavelength: []float64{1, 1}, Flux: []float64{1, 1}},
		{Wavelength: []float64{2, 1}, Flux: []float64{1, 1}},
	}
	for i, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestIsZeroFlux(t *testing.T) {
	if !IsZeroFlux([]float64{0, 0, 0}) {
		t.Error("all-zero flux not detected")
	}
	if IsZeroFlux([]float64{0, 1e-30, 0}) {
		t.Error("tiny flux reported as zero")
	}
}

func TestErrorKinds(t *testing.T) {
	errs := map[error]error{
		&ModelNotFoundError{Family: Phoenix}:       ErrModelNotFound,
		&DomainError{Law: "Nishiyama09"}:           ErrDomain,
		&ConfigurationError{Name: "Fitzpatrick99"}: ErrConfiguration,
	}
	for err, kind := range errs {
		if !errors.Is(err, kind) {
			t.Errorf("%v does not unwrap to %v", err, kind)
		}
	}
}
