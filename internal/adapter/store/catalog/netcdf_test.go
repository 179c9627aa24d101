package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/sed-api/internal/adapter/store/csv"
	"go.ngs.io/sed-api/internal/domain"
)

var fixtureWave = []float64{3000, 4000, 5000}

// constantFlux returns a spectrum whose every sample equals v.
func constantFlux(v float64) []float64 {
	return []float64{v, v, v}
}

// writeLibrary creates <root>/<id> with one grid file per temperature, every
// file holding gravities 4.0 and 4.5, flux = T/1000 + g.
func writeLibrary(t *testing.T, root, id string, temps []float64) {
	t.Helper()
	dir := filepath.Join(root, id)
	models := filepath.Join(dir, "models")
	require.NoError(t, mkdirAll(models))

	gravities := []float64{4.0, 4.5}
	for _, temp := range temps {
		fluxes := map[float64][]float64{}
		for _, g := range gravities {
			fluxes[g] = constantFlux(temp/1000 + g)
		}
		path := filepath.Join(models, "lib_"+formatTemp(temp)+".nc")
		require.NoError(t, WriteGridFile(path, fixtureWave, gravities, fluxes))
	}
	_, err := MakePhoenixCatalog(models, filepath.Join(dir, IndexFile), "models/")
	require.NoError(t, err)
}

func TestLookupExactNode(t *testing.T) {
	root := t.TempDir()
	writeLibrary(t, root, "phoenix", []float64{5000, 5200})

	s := NewStore(root)
	wave, flux, err := s.Lookup("phoenix", 5200, 0, 4.5)
	require.NoError(t, err)
	assert.Equal(t, fixtureWave, wave)
	for _, f := range flux {
		assert.InDelta(t, 5.2+4.5, f, 1e-12)
	}
}

func TestLookupBlendsBilinearly(t *testing.T) {
	root := t.TempDir()
	writeLibrary(t, root, "phoenix", []float64{5000, 5200})

	s := NewStore(root)
	_, flux, err := s.Lookup("phoenix", 5100, 0, 4.25)
	require.NoError(t, err)
	// The fixture flux is linear in both axes, so bilinear blending is exact.
	for _, f := range flux {
		assert.InDelta(t, 5.1+4.25, f, 1e-12)
	}
}

func TestLookupOutsideGridIsZero(t *testing.T) {
	root := t.TempDir()
	writeLibrary(t, root, "phoenix", []float64{5000, 5200})

	s := NewStore(root)
	for _, q := range [][2]float64{{4000, 4.5}, {5100, 5.0}, {6000, 3.0}} {
		wave, flux, err := s.Lookup("phoenix", q[0], 0, q[1])
		require.NoError(t, err)
		assert.Len(t, wave, len(fixtureWave))
		assert.True(t, domain.IsZeroFlux(flux), "T=%v g=%v", q[0], q[1])
	}
}

func TestLookupMissingCornerIsZero(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ck04models")
	require.NoError(t, mkdirAll(dir))

	// 5000/4.0, 5000/4.5 and 5200/4.0 exist; 5200/4.5 does not.
	require.NoError(t, WriteGridFile(filepath.Join(dir, "a.nc"), fixtureWave, []float64{4.0, 4.5},
		map[float64][]float64{4.0: constantFlux(1), 4.5: constantFlux(2)}))
	require.NoError(t, WriteGridFile(filepath.Join(dir, "b.nc"), fixtureWave, []float64{4.0},
		map[float64][]float64{4.0: constantFlux(3)}))
	require.NoError(t, csv.WriteIndex(filepath.Join(dir, IndexFile), []csv.Row{
		{Index: "5000,0.0,4.0", Filename: "a.nc[g4.0]"},
		{Index: "5000,0.0,4.5", Filename: "a.nc[g4.5]"},
		{Index: "5200,0.0,4.0", Filename: "b.nc[g4.0]"},
	}))

	s := NewStore(root)
	_, flux, err := s.Lookup("ck04models", 5100, 0, 4.25)
	require.NoError(t, err)
	assert.True(t, domain.IsZeroFlux(flux))

	// Along an edge only the present corners are needed.
	_, flux, err = s.Lookup("ck04models", 5100, 0, 4.0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, flux[0], 1e-12)
}

func TestLookupNearestMetallicity(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "k93models")
	require.NoError(t, mkdirAll(dir))

	require.NoError(t, WriteGridFile(filepath.Join(dir, "m.nc"), fixtureWave, []float64{4.0, 4.5},
		map[float64][]float64{4.0: constantFlux(10), 4.5: constantFlux(20)}))
	require.NoError(t, csv.WriteIndex(filepath.Join(dir, IndexFile), []csv.Row{
		{Index: "5000,0.0,4.0", Filename: "m.nc[g4.0]"},
		{Index: "5000,-1.0,4.0", Filename: "m.nc[g4.5]"},
	}))

	s := NewStore(root)
	_, flux, err := s.Lookup("k93models", 5000, -0.8, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, flux[0])

	_, flux, err = s.Lookup("k93models", 5000, -0.2, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, flux[0])
}

func TestLookupUnknownLibrary(t *testing.T) {
	s := NewStore(t.TempDir())
	_, _, err := s.Lookup("nextgen", 5000, 0, 4.5)
	assert.Error(t, err)
}

func TestLibraryDirOverride(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeLibrary(t, other, "custom", []float64{5000})

	s := NewStore(root, WithLibraryDir("phoenix", filepath.Join(other, "custom")), WithCacheSize(1))
	assert.Equal(t, filepath.Join(other, "custom"), s.LibraryDir("phoenix"))
	assert.Equal(t, filepath.Join(root, "nextgen"), s.LibraryDir("nextgen"))

	_, flux, err := s.Lookup("phoenix", 5000, 0, 4.0)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, flux[0], 1e-12)

	// A second gravity evicts the first from the one-entry cache and still reads correctly.
	_, flux, err = s.Lookup("phoenix", 5000, 0, 4.5)
	require.NoError(t, err)
	assert.InDelta(t, 9.5, flux[0], 1e-12)
	_, flux, err = s.Lookup("phoenix", 5000, 0, 4.0)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, flux[0], 1e-12)
}

func TestLookupDoesNotAliasCache(t *testing.T) {
	root := t.TempDir()
	writeLibrary(t, root, "phoenix", []float64{5000})

	s := NewStore(root)
	wave, flux, err := s.Lookup("phoenix", 5000, 0, 4.0)
	require.NoError(t, err)
	wave[0], flux[0] = -1, -1

	wave, flux, err = s.Lookup("phoenix", 5000, 0, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, wave[0])
	assert.InDelta(t, 9.0, flux[0], 1e-12)
}

func TestReadSpectrumMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.nc")
	require.NoError(t, WriteGridFile(path, fixtureWave, []float64{4.0}, map[float64][]float64{4.0: constantFlux(1)}))

	_, err := ReadSpectrum(path, "g5.0")
	assert.Error(t, err)

	sp, err := ReadSpectrum(path, "g4.0")
	require.NoError(t, err)
	assert.Equal(t, fixtureWave, sp.Wavelength)
}
