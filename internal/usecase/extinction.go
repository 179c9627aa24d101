package usecase

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go.ngs.io/sed-api/internal/domain"
	"go.ngs.io/sed-api/internal/logging"
	"go.ngs.io/sed-api/internal/redlaw"
)

// DefaultRv is used only to describe Cardelli89 in listings.
const DefaultRv = 3.1

// DefaultLawCacheSize bounds the number of constructed laws kept in memory.
// Every distinct Cardelli89 Rv is a separate entry.
const DefaultLawCacheSize = 64

// LawInfo describes a reddening law for listings.
type LawInfo struct {
	Name         string  `json:"name"`
	Reference    string  `json:"reference"`
	DomainMin    float64 `json:"domain_min_micron"`
	DomainMax    float64 `json:"domain_max_micron"`
	KsWavelength float64 `json:"ks_wavelength_micron"`
	RequiresRv   bool    `json:"requires_rv"`
}

// ExtinctionRequest asks for A_lambda at several wavelengths.
type ExtinctionRequest struct {
	Law         string
	Rv          *float64
	Wavelengths []float64 // Microns.
	AKs         float64
}

// ExtinctionResponse carries A_lambda per requested wavelength.
type ExtinctionResponse struct {
	Law        string    `json:"law"`
	AKs        float64   `json:"aks"`
	Wavelength []float64 `json:"wavelength_micron"`
	Extinction []float64 `json:"extinction_mag"`
}

type lawKey struct {
	kind redlaw.Kind
	rv   float64
}

// ExtinctionUseCase builds each (law, Rv) once and shares it between callers
// while it stays in the LRU.
type ExtinctionUseCase struct {
	mu    sync.Mutex
	laws  *lru.Cache // lawKey -> redlaw.Law.
	build singleflight.Group
}

// ExtinctionOption configures an ExtinctionUseCase.
type ExtinctionOption func(*ExtinctionUseCase)

// WithLawCacheSize sets the number of constructed laws kept in memory.
func WithLawCacheSize(n int) ExtinctionOption {
	return func(uc *ExtinctionUseCase) {
		if n > 0 {
			uc.laws = lru.New(n)
		}
	}
}

// NewExtinctionUseCase creates an empty law registry.
func NewExtinctionUseCase(opts ...ExtinctionOption) *ExtinctionUseCase {
	uc := &ExtinctionUseCase{laws: lru.New(DefaultLawCacheSize)}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ExtinctionUseCase) cached(key lawKey) (redlaw.Law, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	v, ok := uc.laws.Get(key)
	if !ok {
		return nil, false
	}
	return v.(redlaw.Law), true
}

// Law returns the named law, constructing it on first use. rv is required
// for Cardelli89 and ignored otherwise.
func (uc *ExtinctionUseCase) Law(name string, rv *float64) (redlaw.Law, error) {
	kind, err := redlaw.ParseKind(name)
	if err != nil {
		return nil, err
	}
	key := lawKey{kind: kind}
	if kind == redlaw.Cardelli89 {
		if rv == nil {
			return nil, &domain.ConfigurationError{Name: kind.String(), Reason: "Rv is required"}
		}
		key.rv = *rv
	}

	if law, ok := uc.cached(key); ok {
		return law, nil
	}

	sfKey := kind.String() + "/" + strconv.FormatFloat(key.rv, 'g', -1, 64)
	v, err, _ := uc.build.Do(sfKey, func() (interface{}, error) {
		if law, ok := uc.cached(key); ok {
			return law, nil
		}

		law, err := redlaw.New(kind, redlaw.Params{Rv: rv})
		if err != nil {
			return nil, err
		}
		uc.mu.Lock()
		uc.laws.Add(key, law)
		uc.mu.Unlock()
		logging.Debug("reddening law constructed", zap.String("law", sfKey))
		return law, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(redlaw.Law), nil
}

// Laws describes every supported law.
func (uc *ExtinctionUseCase) Laws() ([]LawInfo, error) {
	rv := DefaultRv
	infos := make([]LawInfo, 0, len(redlaw.Kinds()))
	for _, k := range redlaw.Kinds() {
		law, err := uc.Law(k.String(), &rv)
		if err != nil {
			return nil, err
		}
		lo, hi := law.Domain()
		infos = append(infos, LawInfo{
			Name:         law.Name(),
			Reference:    law.Reference(),
			DomainMin:    lo,
			DomainMax:    hi,
			KsWavelength: law.KsWavelength(),
			RequiresRv:   k == redlaw.Cardelli89,
		})
	}
	return infos, nil
}

// Evaluate returns A_lambda at every requested wavelength. Any wavelength
// outside the law's domain fails the whole request.
func (uc *ExtinctionUseCase) Evaluate(req ExtinctionRequest) (*ExtinctionResponse, error) {
	if err := checkAKs(req.AKs); err != nil {
		return nil, err
	}
	if len(req.Wavelengths) == 0 {
		return nil, fmt.Errorf("%w: at least one wavelength is required", domain.ErrInvalidQuery)
	}
	law, err := uc.Law(req.Law, req.Rv)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(req.Wavelengths))
	for i, w := range req.Wavelengths {
		if out[i], err = law.Extinction(w, req.AKs); err != nil {
			return nil, err
		}
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("%w: extinction at %v microns overflows for AKs %v", domain.ErrInvalidQuery, w, req.AKs)
		}
	}
	return &ExtinctionResponse{
		Law:        law.Name(),
		AKs:        req.AKs,
		Wavelength: append([]float64(nil), req.Wavelengths...),
		Extinction: out,
	}, nil
}

// Curve returns the law's dense extinction curve for aks, in Angstrom.
func (uc *ExtinctionUseCase) Curve(name string, rv *float64, aks float64) (*redlaw.Curve, error) {
	if err := checkAKs(aks); err != nil {
		return nil, err
	}
	law, err := uc.Law(name, rv)
	if err != nil {
		return nil, err
	}
	c := law.Scale(aks)
	for i, v := range c.Extinction {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: extinction at %v angstrom overflows for AKs %v", domain.ErrInvalidQuery, c.Wavelength[i], aks)
		}
	}
	return c, nil
}

func checkAKs(aks float64) error {
	if math.IsNaN(aks) || math.IsInf(aks, 0) || aks < 0 {
		return fmt.Errorf("%w: AKs must be finite and non-negative, got %v", domain.ErrInvalidQuery, aks)
	}
	return nil
}
