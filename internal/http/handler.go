package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go.ngs.io/sed-api/internal/domain"
	"go.ngs.io/sed-api/internal/logging"
	"go.ngs.io/sed-api/internal/usecase"
)

// Handler handles HTTP requests for atmospheres and reddening laws.
type Handler struct {
	atmosphereUC *usecase.AtmosphereUseCase
	extinctionUC *usecase.ExtinctionUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(atmosphereUC *usecase.AtmosphereUseCase, extinctionUC *usecase.ExtinctionUseCase) *Handler {
	return &Handler{
		atmosphereUC: atmosphereUC,
		extinctionUC: extinctionUC,
	}
}

// GetAtmosphere handles GET /v1/atmospheres/:family.
func (h *Handler) GetAtmosphere(c *gin.Context) {
	temperature, err := floatParam(c, "temperature", nil)
	if err != nil {
		badRequest(c, err)
		return
	}
	zero := 0.0
	metallicity, err := floatParam(c, "metallicity", &zero)
	if err != nil {
		badRequest(c, err)
		return
	}
	gravity, err := floatParam(c, "gravity", nil)
	if err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.atmosphereUC.Execute(usecase.AtmosphereRequest{
		Family:      c.Param("family"),
		Temperature: temperature,
		Metallicity: metallicity,
		Gravity:     gravity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListAtmospheres handles GET /v1/atmospheres.
func (h *Handler) ListAtmospheres(c *gin.Context) {
	specs := h.atmosphereUC.Families()
	c.JSON(http.StatusOK, gin.H{
		"families": specs,
		"merged":   usecase.MergedFamily,
		"count":    len(specs),
	})
}

// ListRedLaws handles GET /v1/redlaws.
func (h *Handler) ListRedLaws(c *gin.Context) {
	laws, err := h.extinctionUC.Laws()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"laws":  laws,
		"count": len(laws),
	})
}

// GetExtinction handles GET /v1/redlaws/:name/extinction.
func (h *Handler) GetExtinction(c *gin.Context) {
	var wavelengths []float64
	for _, raw := range c.QueryArray("wavelength") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			w, err := strconv.ParseFloat(s, 64)
			if err != nil {
				badRequest(c, fmt.Errorf("invalid wavelength %q: %w", s, err))
				return
			}
			wavelengths = append(wavelengths, w)
		}
	}
	if len(wavelengths) == 0 {
		badRequest(c, fmt.Errorf("wavelength parameter is required"))
		return
	}

	aks, rv, err := aksAndRv(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.extinctionUC.Evaluate(usecase.ExtinctionRequest{
		Law:         c.Param("name"),
		Rv:          rv,
		Wavelengths: wavelengths,
		AKs:         aks,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetCurve handles GET /v1/redlaws/:name/curve.
func (h *Handler) GetCurve(c *gin.Context) {
	aks, rv, err := aksAndRv(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	curve, err := h.extinctionUC.Curve(c.Param("name"), rv, aks)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, curve)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// aksAndRv parses aks (default 1) and the optional rv.
func aksAndRv(c *gin.Context) (float64, *float64, error) {
	one := 1.0
	aks, err := floatParam(c, "aks", &one)
	if err != nil {
		return 0, nil, err
	}
	if c.Query("rv") == "" {
		return aks, nil, nil
	}
	rv, err := floatParam(c, "rv", nil)
	if err != nil {
		return 0, nil, err
	}
	return aks, &rv, nil
}

// floatParam parses a query parameter. A nil def makes it required.
func floatParam(c *gin.Context, name string, def *float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		if def == nil {
			return 0, fmt.Errorf("%s parameter is required", name)
		}
		return *def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDomain),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrConfiguration):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logging.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
