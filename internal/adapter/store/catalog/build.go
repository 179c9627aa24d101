package catalog

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/sed-api/internal/adapter/store/csv"
)

const (
	// GravityVar lists the log g of every flux variable in a multi-gravity file.
	GravityVar = "GRAVITY"

	phoenixWaveFile = "WAVE_PHOENIX-ACES-AGSS-COND-2011.nc"
	phoenixWaveVar  = "wavelength"
	phoenixFluxVar  = "flux"
	phoenixPrefix   = "phoenixm00"
)

// Observer receives progress from long-running catalog operations.
type Observer interface {
	Progress(stage string, done, total int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(stage string, done, total int)

// Progress calls f.
func (f ObserverFunc) Progress(stage string, done, total int) { f(stage, done, total) }

func notify(obs Observer, stage string, done, total int) {
	if obs != nil {
		obs.Progress(stage, done, total)
	}
}

// Manifest lists what a catalog operation wrote or moved.
type Manifest struct {
	Files   []string `json:"files"`
	Skipped []string `json:"skipped,omitempty"`
}

func (m *Manifest) add(path string) { m.Files = append(m.Files, path) }

// GravityColumn names the flux variable holding one log g.
func GravityColumn(logg float64) string {
	return fmt.Sprintf("g%.1f", logg)
}

// PhoenixTemperatures returns the Husser+13 temperature grid.
func PhoenixTemperatures() []int {
	var temps []int
	for t := 2300; t <= 7000; t += 100 {
		temps = append(temps, t)
	}
	for t := 7200; t <= 12000; t += 200 {
		temps = append(temps, t)
	}
	return temps
}

// OrganizePhoenix combines the per-gravity Husser+13 HiRes spectra in src
// into one file per temperature, dst/phoenixm00_<temp>.nc, holding the shared
// wavelength grid and one flux variable per log g. Temperatures with no
// input files are skipped.
func OrganizePhoenix(src, dst string, obs Observer) (*Manifest, error) {
	wave, err := readVar(filepath.Join(src, phoenixWaveFile), phoenixWaveVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read PHOENIX wavelength grid: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	m := &Manifest{}
	temps := PhoenixTemperatures()
	for i, temp := range temps {
		files, err := filepath.Glob(filepath.Join(src, fmt.Sprintf("lte%05d-*-HiRes.nc", temp)))
		if err != nil {
			return m, err
		}
		if len(files) == 0 {
			m.Skipped = append(m.Skipped, fmt.Sprintf("%d K: no spectra", temp))
			notify(obs, "organize phoenix", i+1, len(temps))
			continue
		}

		gravities := make([]float64, 0, len(files))
		fluxes := make(map[float64][]float64, len(files))
		for _, f := range files {
			logg, err := phoenixGravity(filepath.Base(f))
			if err != nil {
				return m, err
			}
			flux, err := readVar(f, phoenixFluxVar)
			if err != nil {
				return m, fmt.Errorf("failed to read %s: %w", f, err)
			}
			if len(flux) != len(wave) {
				return m, fmt.Errorf("%s has %d samples, wavelength grid has %d", f, len(flux), len(wave))
			}
			gravities = append(gravities, logg)
			fluxes[logg] = flux
		}
		sort.Float64s(gravities)

		out := filepath.Join(dst, fmt.Sprintf("%s_%05d.nc", phoenixPrefix, temp))
		if err := WriteGridFile(out, wave, gravities, fluxes); err != nil {
			return m, err
		}
		m.add(out)
		notify(obs, "organize phoenix", i+1, len(temps))
	}
	return m, nil
}

// phoenixGravity extracts log g from "lte05000-4.50-0.0.PHOENIX-...-HiRes.nc".
func phoenixGravity(name string) (float64, error) {
	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return 0, fmt.Errorf("unexpected PHOENIX file name %q", name)
	}
	logg, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected PHOENIX file name %q: %w", name, err)
	}
	return logg, nil
}

// MakePhoenixCatalog indexes the per-temperature files in modelDir and writes
// catalogPath. Each FILENAME is prefix + file + "[g<logg>]", so prefix must
// locate modelDir relative to the catalog's directory.
func MakePhoenixCatalog(modelDir, catalogPath, prefix string) (*Manifest, error) {
	files, err := filepath.Glob(filepath.Join(modelDir, "*.nc"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var rows []csv.Row
	for _, f := range files {
		name := filepath.Base(f)
		temp, err := gridFileTemperature(name)
		if err != nil {
			return nil, err
		}
		gravities, err := readVar(f, GravityVar)
		if err != nil {
			return nil, fmt.Errorf("failed to read gravities of %s: %w", f, err)
		}
		for _, g := range gravities {
			rows = append(rows, csv.Row{
				Index:    csv.FormatIndex(temp, 0, g, "%2.1f"),
				Filename: prefix + name + "[" + GravityColumn(g) + "]",
			})
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no grid files found in %s", modelDir)
	}

	if err := csv.WriteIndex(catalogPath, rows); err != nil {
		return nil, err
	}
	return &Manifest{Files: []string{catalogPath}}, nil
}

// gridFileTemperature parses the temperature out of "<prefix>_<temp>.nc".
func gridFileTemperature(name string) (float64, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndex(base, "_")
	if i < 0 {
		return 0, fmt.Errorf("unexpected grid file name %q", name)
	}
	t, err := strconv.ParseFloat(base[i+1:], 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected grid file name %q: %w", name, err)
	}
	return t, nil
}

// OrganizeCMFGEN splits a Fierro+15 CMFGEN download in dir into rot/ and
// noRot/ subdirectories, each with its parameter table.
func OrganizeCMFGEN(dir string, obs Observer) (*Manifest, error) {
	m := &Manifest{}
	groups := []struct {
		sub, pattern, table string
	}{
		{"rot", "t*r_ir*", "Table_rot.txt"},
		{"noRot", "t*n_ir*", "Table_noRot.txt"},
	}
	for gi, g := range groups {
		target := filepath.Join(dir, g.sub)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return m, fmt.Errorf("failed to create %s: %w", target, err)
		}
		models, err := filepath.Glob(filepath.Join(dir, g.pattern))
		if err != nil {
			return m, err
		}
		for _, src := range append(models, filepath.Join(dir, g.table)) {
			out := filepath.Join(target, filepath.Base(src))
			if err := os.Rename(src, out); err != nil {
				return m, fmt.Errorf("failed to move %s: %w", src, err)
			}
			m.add(out)
		}
		notify(obs, "organize cmfgen", gi+1, len(groups))
	}
	return m, nil
}

// MakeCMFGENCatalog writes dir/catalog.csv from the dir/Table_*.txt parameter
// table (column 1 model name, column 2 temperature, column 4 log g).
func MakeCMFGENCatalog(dir string) (*Manifest, error) {
	tables, err := filepath.Glob(filepath.Join(dir, "Table_*"))
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no Table_* parameter file in %s", dir)
	}

	rows, err := readCMFGENTable(tables[0])
	if err != nil {
		return nil, err
	}

	out := filepath.Join(dir, IndexFile)
	if err := csv.WriteIndex(out, rows); err != nil {
		return nil, err
	}
	return &Manifest{Files: []string{out}}, nil
}

func readCMFGENTable(path string) ([]csv.Row, error) {
	//nolint:gosec // G304: path found by glob in the caller's directory.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var rows []csv.Row
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Fields(text)
		if len(cols) < 4 {
			return nil, fmt.Errorf("%s:%d: expected at least 4 columns, got %d", path, line, len(cols))
		}
		temp, err := strconv.ParseFloat(cols[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid temperature: %w", path, line, err)
		}
		logg, err := strconv.ParseFloat(cols[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid log g: %w", path, line, err)
		}
		rows = append(rows, csv.Row{
			Index:    csv.FormatIndex(temp, 0, logg, "%3.2f"),
			Filename: cols[0],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no models", path)
	}
	return rows, nil
}

// BlackbodySpec describes a synthetic development library.
type BlackbodySpec struct {
	Temperatures  []float64 // Kelvin.
	Gravities     []float64 // log g; every temperature gets every gravity.
	WavelengthMin float64   // Angstrom.
	WavelengthMax float64   // Angstrom.
	Samples       int
}

// DefaultBlackbodySpec covers the merged-grid parameter space coarsely.
func DefaultBlackbodySpec() BlackbodySpec {
	var temps []float64
	for t := 2500.0; t <= 50000; t += 500 {
		temps = append(temps, t)
	}
	return BlackbodySpec{
		Temperatures:  temps,
		Gravities:     []float64{0.0, 0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0, 5.5, 6.0},
		WavelengthMin: 1000,
		WavelengthMax: 100000,
		Samples:       2000,
	}
}

// SynthesizeBlackbodyLibrary writes a Planck-spectrum library in the catalog
// layout under dst: one file per temperature and dst/catalog.csv. Every
// gravity of a temperature shares the same spectrum.
func SynthesizeBlackbodyLibrary(dst string, spec BlackbodySpec, obs Observer) (*Manifest, error) {
	if len(spec.Temperatures) == 0 || len(spec.Gravities) == 0 {
		return nil, fmt.Errorf("blackbody library needs temperatures and gravities")
	}
	if spec.Samples < 2 || !(spec.WavelengthMin > 0 && spec.WavelengthMax > spec.WavelengthMin) {
		return nil, fmt.Errorf("invalid blackbody wavelength grid [%v, %v] x %d", spec.WavelengthMin, spec.WavelengthMax, spec.Samples)
	}

	models := filepath.Join(dst, "bb")
	if err := os.MkdirAll(models, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", models, err)
	}

	// Log-spaced wavelengths.
	wave := make([]float64, spec.Samples)
	step := math.Log(spec.WavelengthMax/spec.WavelengthMin) / float64(spec.Samples-1)
	for i := range wave {
		wave[i] = spec.WavelengthMin * math.Exp(step*float64(i))
	}
	gravities := append([]float64(nil), spec.Gravities...)
	sort.Float64s(gravities)

	m := &Manifest{}
	for i, temp := range spec.Temperatures {
		flux := make([]float64, len(wave))
		for j, w := range wave {
			flux[j] = Planck(w, temp)
		}
		fluxes := make(map[float64][]float64, len(gravities))
		for _, g := range gravities {
			fluxes[g] = flux
		}
		out := filepath.Join(models, fmt.Sprintf("bb_%05.0f.nc", temp))
		if err := WriteGridFile(out, wave, gravities, fluxes); err != nil {
			return m, err
		}
		m.add(out)
		notify(obs, "synthesize blackbody", i+1, len(spec.Temperatures))
	}

	cat, err := MakePhoenixCatalog(models, filepath.Join(dst, IndexFile), "bb/")
	if err != nil {
		return m, err
	}
	m.Files = append(m.Files, cat.Files...)
	return m, nil
}

// Physical constants in cgs.
const (
	planckH  = 6.62607015e-27
	lightC   = 2.99792458e10
	boltzK   = 1.380649e-16
	angstrom = 1e-8 // cm
)

// Planck returns the blackbody surface flux pi*B_lambda in erg/s/cm^2/A at a
// wavelength in Angstrom.
func Planck(wavelength, temperature float64) float64 {
	lam := wavelength * angstrom
	x := planckH * lightC / (lam * boltzK * temperature)
	b := 2 * planckH * lightC * lightC / math.Pow(lam, 5) / math.Expm1(x)
	return math.Pi * b * angstrom
}

// WriteGridFile writes a multi-gravity spectrum file: WAVELENGTH, GRAVITY and
// one flux variable per log g named by GravityColumn.
func WriteGridFile(path string, wavelength, gravities []float64, fluxes map[float64][]float64) error {
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	waveDim, err := f.AddDim("wavelength", uint64(len(wavelength)))
	if err != nil {
		return err
	}
	gravDim, err := f.AddDim("gravity", uint64(len(gravities)))
	if err != nil {
		return err
	}
	wv, err := f.AddVar(WavelengthVar, netcdf.DOUBLE, []netcdf.Dim{waveDim})
	if err != nil {
		return err
	}
	gv, err := f.AddVar(GravityVar, netcdf.DOUBLE, []netcdf.Dim{gravDim})
	if err != nil {
		return err
	}
	fvs := make([]netcdf.Var, len(gravities))
	for i, g := range gravities {
		if fvs[i], err = f.AddVar(GravityColumn(g), netcdf.DOUBLE, []netcdf.Dim{waveDim}); err != nil {
			return err
		}
	}
	if err := f.EndDef(); err != nil {
		return err
	}

	if err := wv.WriteFloat64s(wavelength); err != nil {
		return fmt.Errorf("failed to write wavelength: %w", err)
	}
	if err := gv.WriteFloat64s(gravities); err != nil {
		return fmt.Errorf("failed to write gravities: %w", err)
	}
	for i, g := range gravities {
		if err := fvs[i].WriteFloat64s(fluxes[g]); err != nil {
			return fmt.Errorf("failed to write %s: %w", GravityColumn(g), err)
		}
	}
	return nil
}

// readVar opens path and reads one 1D variable.
func readVar(path, name string) ([]float64, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s not found: %w", name, err)
	}
	return readFloat64Var(v)
}
