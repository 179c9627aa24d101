// Package curve persists reddening-law extinction curves as netCDF or JSON.
package curve

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sed-api/internal/redlaw"
)

// Variable and attribute names of the netCDF layout.
const (
	WavelengthVar = "WAVELENGTH"
	ExtinctionVar = "EXTINCTION"
	lawAttr       = "law"
	aksAttr       = "aks"
	unitsAttr     = "units"
)

// Save writes c to path, choosing the format from the extension (.nc or .json).
func Save(path string, c *redlaw.Curve) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		return SaveNetCDF(path, c)
	case ".json":
		//nolint:gosec // G304: path comes from the caller.
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteJSON(f, c); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported curve format %q (use .nc or .json)", filepath.Ext(path))
	}
}

// Load reads a curve written by Save.
func Load(path string) (*redlaw.Curve, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		return LoadNetCDF(path)
	case ".json":
		//nolint:gosec // G304: path comes from the caller.
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported curve format %q (use .nc or .json)", filepath.Ext(path))
	}
}

// WriteJSON encodes c as indented JSON.
func WriteJSON(w io.Writer, c *redlaw.Curve) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode curve: %w", err)
	}
	return nil
}

// ReadJSON decodes a curve and checks its shape.
func ReadJSON(r io.Reader) (*redlaw.Curve, error) {
	var c redlaw.Curve
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode curve: %w", err)
	}
	if err := check(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveNetCDF writes c with WAVELENGTH (Angstrom) and EXTINCTION (mag)
// variables; the law name and A_Ks are attributes of EXTINCTION.
func SaveNetCDF(path string, c *redlaw.Curve) error {
	if err := check(c); err != nil {
		return err
	}

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dim, err := f.AddDim("wavelength", uint64(len(c.Wavelength)))
	if err != nil {
		return err
	}
	wv, err := f.AddVar(WavelengthVar, netcdf.DOUBLE, []netcdf.Dim{dim})
	if err != nil {
		return err
	}
	ev, err := f.AddVar(ExtinctionVar, netcdf.DOUBLE, []netcdf.Dim{dim})
	if err != nil {
		return err
	}
	if err := wv.Attr(unitsAttr).WriteBytes([]byte("angstrom")); err != nil {
		return err
	}
	if err := ev.Attr(unitsAttr).WriteBytes([]byte("mag")); err != nil {
		return err
	}
	if err := ev.Attr(lawAttr).WriteBytes([]byte(c.Law)); err != nil {
		return err
	}
	if err := ev.Attr(aksAttr).WriteFloat64s([]float64{c.AKs}); err != nil {
		return err
	}
	if err := f.EndDef(); err != nil {
		return err
	}

	if err := wv.WriteFloat64s(c.Wavelength); err != nil {
		return fmt.Errorf("failed to write wavelength: %w", err)
	}
	if err := ev.WriteFloat64s(c.Extinction); err != nil {
		return fmt.Errorf("failed to write extinction: %w", err)
	}
	return nil
}

// LoadNetCDF reads a curve written by SaveNetCDF.
func LoadNetCDF(path string) (*redlaw.Curve, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	wv, err := nc.Var(WavelengthVar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", WavelengthVar, err)
	}
	ev, err := nc.Var(ExtinctionVar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ExtinctionVar, err)
	}

	c := &redlaw.Curve{}
	if c.Wavelength, err = readDoubles(wv); err != nil {
		return nil, fmt.Errorf("failed to read wavelength: %w", err)
	}
	if c.Extinction, err = readDoubles(ev); err != nil {
		return nil, fmt.Errorf("failed to read extinction: %w", err)
	}

	law := ev.Attr(lawAttr)
	if n, err := law.Len(); err == nil && n > 0 {
		buf := make([]byte, n)
		if err := law.ReadBytes(buf); err == nil {
			c.Law = string(buf)
		}
	}
	aks := ev.Attr(aksAttr)
	if n, err := aks.Len(); err == nil && n == 1 {
		buf := make([]float64, 1)
		if err := aks.ReadFloat64s(buf); err == nil {
			c.AKs = buf[0]
		}
	}

	if err := check(c); err != nil {
		return nil, err
	}
	return c, nil
}

func readDoubles(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	n, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if err := v.ReadFloat64s(out); err != nil {
		return nil, err
	}
	return out, nil
}

func check(c *redlaw.Curve) error {
	if len(c.Wavelength) == 0 || len(c.Wavelength) != len(c.Extinction) {
		return fmt.Errorf("curve has %d wavelengths and %d extinction values", len(c.Wavelength), len(c.Extinction))
	}
	return nil
}
