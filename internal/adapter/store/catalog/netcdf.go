// Package catalog serves model spectra from on-disk netCDF grid libraries
// and builds those libraries from raw model downloads.
package catalog

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"sync"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go.ngs.io/sed-api/internal/adapter/interp"
	"go.ngs.io/sed-api/internal/adapter/store/csv"
	"go.ngs.io/sed-api/internal/logging"
)

const (
	// IndexFile is the per-library index name.
	IndexFile = "catalog.csv"
	// WavelengthVar is the wavelength variable of every spectrum file.
	WavelengthVar = "WAVELENGTH"
	// DefaultCacheSize is the number of flux vectors kept when none is configured.
	DefaultCacheSize = 256
)

// Store provides access to netCDF model libraries laid out as
// <root>/<libraryID>/catalog.csv plus the spectrum files it names.
type Store struct {
	root string
	dirs map[string]string // Per-library directory overrides.

	mu      sync.RWMutex
	indexes map[string]*libraryIndex
	loads   singleflight.Group

	cacheMu sync.Mutex
	cache   *lru.Cache // spectrumKey -> *Spectrum.
}

// Option configures a Store.
type Option func(*Store)

// WithLibraryDir points one library id at an explicit directory.
func WithLibraryDir(libraryID, dir string) Option {
	return func(s *Store) { s.dirs[libraryID] = dir }
}

// WithCacheSize sets the number of flux vectors kept in memory.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.cache = lru.New(n)
		}
	}
}

// NewStore creates a catalog store rooted at root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:    root,
		dirs:    make(map[string]string),
		indexes: make(map[string]*libraryIndex),
		cache:   lru.New(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spectrum is one tabulated model spectrum.
type Spectrum struct {
	Wavelength []float64 // Angstrom.
	Flux       []float64
}

type spectrumKey struct {
	path, column string
}

type gridKey struct {
	temperature, gravity float64
}

// metallicitySlice is the part of a library sharing one metallicity.
type metallicitySlice struct {
	metallicity  float64
	temperatures []float64 // Ascending, unique.
	gravities    []float64 // Ascending, unique.
	points       map[gridKey]csv.Entry
}

type libraryIndex struct {
	dir    string
	slices []*metallicitySlice // Ascending metallicity.
}

// Lookup returns the spectrum at (temperature, metallicity, gravity). The
// nearest metallicity slice is used; temperature and gravity are blended
// bilinearly between the enclosing grid points. A query outside the slice's
// axes, or whose enclosing points are missing, yields an all-zero flux.
func (s *Store) Lookup(libraryID string, temperature, metallicity, gravity float64) ([]float64, []float64, error) {
	idx, err := s.index(libraryID)
	if err != nil {
		return nil, nil, err
	}
	slice := idx.nearest(metallicity)

	ti0, ti1, tt, errT := interp.Bracket(slice.temperatures, temperature)
	gi0, gi1, gt, errG := interp.Bracket(slice.gravities, gravity)
	if errT != nil || errG != nil {
		logging.Debug("catalog query outside grid",
			zap.String("library", libraryID),
			zap.Float64("temperature", temperature),
			zap.Float64("gravity", gravity))
		return s.zeroLike(idx, slice)
	}

	corners := [4]gridKey{
		{slice.temperatures[ti0], slice.gravities[gi0]},
		{slice.temperatures[ti1], slice.gravities[gi0]},
		{slice.temperatures[ti0], slice.gravities[gi1]},
		{slice.temperatures[ti1], slice.gravities[gi1]},
	}
	weights := interp.BilinearWeights(tt, gt)

	var wavelength, flux, scratch []float64
	for i, k := range corners {
		if weights[i] == 0 {
			continue
		}
		entry, ok := slice.points[k]
		if !ok {
			logging.Debug("catalog grid point missing",
				zap.String("library", libraryID),
				zap.Float64("temperature", k.temperature),
				zap.Float64("gravity", k.gravity))
			return s.zeroLike(idx, slice)
		}
		sp, err := s.spectrum(idx.dir, entry)
		if err != nil {
			return nil, nil, err
		}
		if flux == nil {
			wavelength = sp.Wavelength
			flux = make([]float64, len(sp.Flux))
			scratch = make([]float64, len(sp.Flux))
		} else if len(sp.Flux) != len(flux) {
			return nil, nil, fmt.Errorf("spectrum %s has %d samples, expected %d", entry.File, len(sp.Flux), len(flux))
		}
		vecmath.ScaleBlock(scratch, sp.Flux, weights[i])
		vecmath.AddBlockInPlace(flux, scratch)
	}

	return append([]float64(nil), wavelength...), flux, nil
}

// zeroLike returns the not-found sentinel on the slice's wavelength grid.
func (s *Store) zeroLike(idx *libraryIndex, slice *metallicitySlice) ([]float64, []float64, error) {
	for _, t := range slice.temperatures {
		for _, g := range slice.gravities {
			entry, ok := slice.points[gridKey{t, g}]
			if !ok {
				continue
			}
			sp, err := s.spectrum(idx.dir, entry)
			if err != nil {
				return nil, nil, err
			}
			return append([]float64(nil), sp.Wavelength...), make([]float64, len(sp.Wavelength)), nil
		}
	}
	return nil, nil, fmt.Errorf("catalog %s has no spectra", idx.dir)
}

func (idx *libraryIndex) nearest(metallicity float64) *metallicitySlice {
	best := idx.slices[0]
	for _, sl := range idx.slices[1:] {
		if math.Abs(sl.metallicity-metallicity) < math.Abs(best.metallicity-metallicity) {
			best = sl
		}
	}
	return best
}

// LibraryDir returns the directory a library id resolves to.
func (s *Store) LibraryDir(libraryID string) string {
	if dir, ok := s.dirs[libraryID]; ok {
		return dir
	}
	return filepath.Join(s.root, libraryID)
}

// index loads a library index once; concurrent first loads share one read.
func (s *Store) index(libraryID string) (*libraryIndex, error) {
	s.mu.RLock()
	idx, ok := s.indexes[libraryID]
	s.mu.RUnlock()
	if ok {
		return idx, nil
	}

	v, err, _ := s.loads.Do(libraryID, func() (interface{}, error) {
		dir := s.LibraryDir(libraryID)
		idx, err := loadIndex(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", libraryID, err)
		}
		s.mu.Lock()
		s.indexes[libraryID] = idx
		s.mu.Unlock()
		logging.Info("catalog index loaded",
			zap.String("library", libraryID),
			zap.String("dir", dir),
			zap.Int("metallicities", len(idx.slices)))
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*libraryIndex), nil
}

func loadIndex(dir string) (*libraryIndex, error) {
	entries, err := csv.ReadIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog index in %s is empty", dir)
	}

	byMetallicity := make(map[float64]*metallicitySlice)
	for _, e := range entries {
		sl, ok := byMetallicity[e.Metallicity]
		if !ok {
			sl = &metallicitySlice{metallicity: e.Metallicity, points: make(map[gridKey]csv.Entry)}
			byMetallicity[e.Metallicity] = sl
		}
		sl.points[gridKey{e.Temperature, e.Gravity}] = e
	}

	idx := &libraryIndex{dir: dir}
	for _, sl := range byMetallicity {
		ts := make(map[float64]bool)
		gs := make(map[float64]bool)
		for k := range sl.points {
			ts[k.temperature] = true
			gs[k.gravity] = true
		}
		sl.temperatures = sortedKeys(ts)
		sl.gravities = sortedKeys(gs)
		idx.slices = append(idx.slices, sl)
	}
	sort.Slice(idx.slices, func(i, j int) bool { return idx.slices[i].metallicity < idx.slices[j].metallicity })
	return idx, nil
}

func sortedKeys(m map[float64]bool) []float64 {
	out := make([]float64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}

// spectrum reads one flux column, going through the LRU cache.
func (s *Store) spectrum(dir string, e csv.Entry) (*Spectrum, error) {
	key := spectrumKey{path: filepath.Join(dir, e.File), column: e.Column}

	s.cacheMu.Lock()
	if v, ok := s.cache.Get(key); ok {
		s.cacheMu.Unlock()
		return v.(*Spectrum), nil
	}
	s.cacheMu.Unlock()

	sp, err := ReadSpectrum(key.path, key.column)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache.Add(key, sp)
	s.cacheMu.Unlock()
	return sp, nil
}

// ReadSpectrum reads WAVELENGTH and one flux variable from a netCDF file.
func ReadSpectrum(path, column string) (*Spectrum, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer func() { _ = nc.Close() }()

	wv, err := nc.Var(WavelengthVar)
	if err != nil {
		return nil, fmt.Errorf("%s: wavelength variable not found: %w", path, err)
	}
	wavelength, err := readFloat64Var(wv)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read wavelength: %w", path, err)
	}

	fv, err := nc.Var(column)
	if err != nil {
		return nil, fmt.Errorf("%s: flux variable %s not found: %w", path, column, err)
	}
	flux, err := readFloat64Var(fv)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", path, column, err)
	}
	if len(flux) != len(wavelength) {
		return nil, fmt.Errorf("%s: %s has %d samples but wavelength has %d", path, column, len(flux), len(wavelength))
	}

	// Missing samples carry no flux.
	if fill, ok := getFillValue(fv); ok {
		for i, f := range flux {
			if f == fill {
				flux[i] = 0
			}
		}
	}
	return &Spectrum{Wavelength: wavelength, Flux: flux}, nil
}

// getFillValue returns the _FillValue or missing_value attribute if present as float64.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		if n, err := a.Len(); err == nil && n > 0 {
			buf64 := make([]float64, 1)
			if err := a.ReadFloat64s(buf64); err == nil {
				return buf64[0], true
			}
			buf32 := make([]float32, 1)
			if err := a.ReadFloat32s(buf32); err == nil {
				return float64(buf32[0]), true
			}
		}
	}
	return 0, false
}

// readFloat64Var reads a 1D numeric variable as float64.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}
