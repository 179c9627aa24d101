package redlaw

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/sed-api/internal/domain"
)

func tabulatedLaws() []*TabulatedLaw {
	return []*TabulatedLaw{NewNishiyama09(), NewRomanZuniga07(), NewRiekeLebofsky85(), NewWesterlund1()}
}

func allLaws(t *testing.T) []Law {
	t.Helper()
	c, err := NewCardelli89(3.1)
	require.NoError(t, err)
	laws := []Law{c}
	for _, l := range tabulatedLaws() {
		laws = append(laws, l)
	}
	return laws
}

func TestKsAnchor(t *testing.T) {
	tests := []struct {
		law Law
		ks  float64
	}{
		{NewNishiyama09(), 2.14},
		{NewWesterlund1(), 2.14},
		{NewRomanZuniga07(), 2.164},
		{NewRiekeLebofsky85(), 2.12},
	}
	for _, tt := range tests {
		t.Run(tt.law.Name(), func(t *testing.T) {
			assert.Equal(t, tt.ks, tt.law.KsWavelength())
			v, err := tt.law.Evaluate(tt.ks)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, v, 1e-6)
		})
	}
}

func TestCardelliKsAnchor(t *testing.T) {
	for _, rv := range []float64{2.5, 3.1, 5.0} {
		law, err := NewCardelli89(rv)
		require.NoError(t, err)

		ks := law.KsWavelength()
		assert.InDelta(t, 1/ksWavenumber, ks, 0.001)

		v, err := law.Evaluate(ks)
		require.NoError(t, err)
		assert.Equal(t, 1.0, v, "Rv=%v", rv)
	}
}

func TestRiekeLebofskyRenormalized(t *testing.T) {
	law := NewRiekeLebofsky85()
	wave, ratio := law.Nodes()
	require.Len(t, ratio, len(riekeLebofsky85Table.ratio))

	// V band was 1.00 in A/Av, so it becomes 1/0.112 in A/A_K.
	for i, w := range wave {
		if w == 0.551 {
			assert.InDelta(t, 1/0.112, ratio[i], 1e-12)
		}
	}
}

func TestLinearity(t *testing.T) {
	for _, law := range allLaws(t) {
		t.Run(law.Name(), func(t *testing.T) {
			lo, hi := law.Domain()
			for _, w := range []float64{lo, (lo + hi) / 2, law.KsWavelength(), hi} {
				unit, err := law.Evaluate(w)
				require.NoError(t, err)

				scaled, err := law.Extinction(w, 2.0)
				require.NoError(t, err)
				assert.Equal(t, 2.0*unit, scaled, "w=%v", w)

				zero, err := law.Extinction(w, 0)
				require.NoError(t, err)
				assert.Zero(t, zero)
			}

			unit := law.Curve()
			doubled := law.Scale(2.0)
			require.Len(t, doubled.Extinction, len(unit.Extinction))
			assert.Equal(t, 2.0, doubled.AKs)
			for i := range unit.Extinction {
				if doubled.Extinction[i] != 2.0*unit.Extinction[i] {
					t.Fatalf("index %d: got %v want %v", i, doubled.Extinction[i], 2.0*unit.Extinction[i])
				}
			}

			for i, v := range law.Scale(0).Extinction {
				if v != 0 {
					t.Fatalf("Scale(0) index %d = %v", i, v)
				}
			}
		})
	}
}

func TestCurveIsNotShared(t *testing.T) {
	law := NewNishiyama09()
	c := law.Curve()
	c.Extinction[0] = -1
	assert.NotEqual(t, -1.0, law.Curve().Extinction[0])
}

func TestDenseGrids(t *testing.T) {
	tests := []struct {
		law         Law
		first, last float64
		n           int
	}{
		{NewNishiyama09(), 5000, 79990, 7500},
		{NewRomanZuniga07(), 10000, 79900, 700},
		{NewRiekeLebofsky85(), 3650, 129990, 12635},
	}
	for _, tt := range tests {
		t.Run(tt.law.Name(), func(t *testing.T) {
			c := tt.law.Curve()
			require.Len(t, c.Wavelength, tt.n)
			assert.InDelta(t, tt.first, c.Wavelength[0], 1e-6)
			assert.InDelta(t, tt.last, c.Wavelength[len(c.Wavelength)-1], 1e-6)
			assert.Equal(t, 1.0, c.AKs)
		})
	}
}

func TestEvaluateOutsideDomain(t *testing.T) {
	for _, law := range allLaws(t) {
		lo, hi := law.Domain()
		for _, w := range []float64{lo * 0.9, hi * 1.1, math.NaN()} {
			_, err := law.Evaluate(w)
			require.Error(t, err, "%s at %v", law.Name(), w)
			assert.True(t, errors.Is(err, domain.ErrDomain))

			var de *domain.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, law.Name(), de.Law)
		}
	}
}

func TestCardelliDomain(t *testing.T) {
	law, err := NewCardelli89(3.1)
	require.NoError(t, err)

	_, err = law.Evaluate(20)
	assert.ErrorIs(t, err, domain.ErrDomain)

	_, err = law.Evaluate(0.1)
	assert.ErrorIs(t, err, domain.ErrDomain)

	// Both wavenumber limits are inclusive.
	_, err = law.Evaluate(1 / 0.3)
	assert.NoError(t, err)
	_, err = law.Evaluate(1 / 8.0)
	assert.NoError(t, err)
}

func TestCardelliUltravioletBranch(t *testing.T) {
	x := 4.0
	wantA := 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341)
	wantB := -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263)

	a, b, err := CardelliCoefficients(x)
	require.NoError(t, err)
	assert.Equal(t, wantA, a)
	assert.Equal(t, wantB, b)

	rv := 3.1
	law, err := NewCardelli89(rv)
	require.NoError(t, err)

	ka, kb, err := CardelliCoefficients(1 / law.KsWavelength())
	require.NoError(t, err)

	got, err := law.Evaluate(0.25)
	require.NoError(t, err)
	assert.InDelta(t, (wantA+wantB/rv)/(ka+kb/rv), got, 1e-12)
}

func TestCardelliBranches(t *testing.T) {
	// Infrared.
	a, b, err := CardelliCoefficients(1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.574, a, 1e-12)
	assert.InDelta(t, -0.527, b, 1e-12)

	// Optical at y = 0 reduces to the constant terms.
	a, b, err = CardelliCoefficients(1.82)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a, 1e-12)
	assert.InDelta(t, 0.0, b, 1e-12)

	// Far-UV corrections switch on at 5.9.
	x := 7.0
	d := x - 5.9
	wantA := 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341) - 0.04473*d*d - 0.009779*d*d*d
	wantB := -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263) + 0.2130*d*d + 0.1207*d*d*d
	a, b, err = CardelliCoefficients(x)
	require.NoError(t, err)
	assert.InDelta(t, wantA, a, 1e-12)
	assert.InDelta(t, wantB, b, 1e-12)
}

func TestCardelliRequiresRv(t *testing.T) {
	_, err := New(Cardelli89, Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	for _, rv := range []float64{0, -3.1, math.Inf(1), math.NaN()} {
		_, err := NewCardelli89(rv)
		assert.ErrorIs(t, err, domain.ErrConfiguration, "Rv=%v", rv)
	}

	rv := 3.1
	law, err := New(Cardelli89, Params{Rv: &rv})
	require.NoError(t, err)
	assert.Equal(t, 3.1, law.(*CardelliLaw).Rv())
}

func TestNewByName(t *testing.T) {
	for _, k := range Kinds() {
		rv := 3.1
		law, err := NewByName(k.String(), Params{Rv: &rv})
		require.NoError(t, err)
		assert.Equal(t, k.String(), law.Name())
	}

	law, err := NewByName("  nishiyama09 ", Params{})
	require.NoError(t, err)
	assert.Equal(t, "Nishiyama09", law.Name())

	_, err = NewByName("Fitzpatrick99", Params{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCurveRoundTripThroughJSON(t *testing.T) {
	for _, law := range tabulatedLaws() {
		t.Run(law.Name(), func(t *testing.T) {
			raw, err := json.Marshal(law.Curve())
			require.NoError(t, err)

			var c Curve
			require.NoError(t, json.Unmarshal(raw, &c))
			assert.Equal(t, law.Name(), c.Law)

			last := c.Wavelength[len(c.Wavelength)-1]
			wave, ratio := law.Nodes()
			for i, w := range wave {
				angstrom := w * micronsToAngstrom
				if angstrom > last {
					// Beyond the last dense sample.
					continue
				}
				got, err := c.At(angstrom)
				require.NoError(t, err)
				assert.InDelta(t, ratio[i], got, 1e-3, "node %v", w)
			}
		})
	}
}

func TestCurveAtOutsideRange(t *testing.T) {
	c := NewRomanZuniga07().Curve()
	_, err := c.At(5000)
	assert.ErrorIs(t, err, domain.ErrDomain)
}

func TestThroughput(t *testing.T) {
	c := &Curve{Law: "test", AKs: 1, Wavelength: []float64{1, 2, 3}, Extinction: []float64{0, 2.5, 5}}
	got := c.Throughput()
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 0.1, got[1], 1e-12)
	assert.InDelta(t, 0.01, got[2], 1e-12)
}

func TestCardelliRejectsOverflowingRv(t *testing.T) {
	for _, rv := range []float64{1e-320, math.SmallestNonzeroFloat64} {
		_, err := NewCardelli89(rv)
		assert.ErrorIs(t, err, domain.ErrConfiguration, "Rv=%v", rv)
	}
}

func TestCardelliCurveNarrowerThanDomain(t *testing.T) {
	law, err := NewCardelli89(3.1)
	require.NoError(t, err)

	// 0.3 microns is inside the wavenumber domain but below the curve grid.
	_, err = law.Evaluate(0.3)
	require.NoError(t, err)

	c := law.Curve()
	assert.InDelta(t, 5000, c.Wavelength[0], 1e-6)
	assert.InDelta(t, 29990, c.Wavelength[len(c.Wavelength)-1], 1e-6)
	_, err = c.At(3000)
	assert.ErrorIs(t, err, domain.ErrDomain)
}
