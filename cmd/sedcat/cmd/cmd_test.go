package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/sed-api/internal/adapter/store/curve"
	"go.ngs.io/sed-api/internal/domain"
	"go.ngs.io/sed-api/internal/usecase"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	require.NoError(t, err, out)
	return out
}

func TestSynthThenLookup(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CATALOG_ROOT", root)

	out := run(t, "synth", filepath.Join(root, "k93models"),
		"--temperature", "5500,6000", "--gravity", "4.0,4.5", "--samples", "50")
	assert.Contains(t, out, "3 files written")

	out = run(t, "lookup", "k93models", "-t", "5750", "-m", "0", "-g", "4.5", "--json")
	var resp usecase.AtmosphereResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Kurucz1993", resp.Family)
	assert.Len(t, resp.Flux, 50)
	for _, f := range resp.Flux {
		assert.Greater(t, f, 0.0)
	}
}

func TestCurveExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nishiyama.json")
	run(t, "curve", "export", "Nishiyama09", "--aks", "2", "-o", path)

	c, err := curve.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Nishiyama09", c.Law)
	assert.Equal(t, 2.0, c.AKs)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCurveExportCardelliNeedsRv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardelli.json")

	_, err := execute("curve", "export", "Cardelli89", "-o", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration), err.Error())

	run(t, "curve", "export", "Cardelli89", "--rv", "3.1", "-o", path)
	c, err := curve.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Cardelli89", c.Law)

	flag := curveExportCmd.Flags().Lookup("rv")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}
