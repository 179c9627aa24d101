package curve

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/sed-api/internal/redlaw"
)

func TestSaveLoadNetCDFReproducesTableNodes(t *testing.T) {
	law := redlaw.NewNishiyama09()
	path := filepath.Join(t.TempDir(), "nishiyama09.nc")
	require.NoError(t, Save(path, law.Scale(2.0)))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Nishiyama09", c.Law)
	assert.Equal(t, 2.0, c.AKs)
	require.Len(t, c.Wavelength, len(law.Curve().Wavelength))

	wave, ratio := law.Nodes()
	for i, w := range wave {
		got, err := c.At(w * 1e4)
		require.NoError(t, err)
		assert.InDelta(t, 2*ratio[i], got, 2e-3, "node %v", w)
	}
}

func TestSaveLoadJSON(t *testing.T) {
	rv := 3.1
	law, err := redlaw.NewByName("Cardelli89", redlaw.Params{Rv: &rv})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ccm.json")
	require.NoError(t, Save(path, law.Curve()))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, law.Curve(), c)
}

func TestWriteJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	c := &redlaw.Curve{Law: "x", AKs: 1, Wavelength: []float64{1}, Extinction: []float64{2}}
	require.NoError(t, WriteJSON(&buf, c))
	assert.Contains(t, buf.String(), `"wavelength_angstrom"`)
	assert.Contains(t, buf.String(), `"extinction_mag"`)
}

func TestRejectsMalformedCurves(t *testing.T) {
	_, err := ReadJSON(bytes.NewBufferString(`{"law":"x","wavelength_angstrom":[1,2],"extinction_mag":[1]}`))
	assert.Error(t, err)

	err = SaveNetCDF(filepath.Join(t.TempDir(), "bad.nc"), &redlaw.Curve{})
	assert.Error(t, err)

	assert.Error(t, Save(filepath.Join(t.TempDir(), "curve.fits"), redlaw.NewWesterlund1().Curve()))
	_, err = Load(filepath.Join(t.TempDir(), "curve.fits"))
	assert.Error(t, err)
}
