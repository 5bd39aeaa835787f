package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"incident-horoscope/internal/service"
	"incident-horoscope/internal/storage"
)

const dateLayout = "2006-01-02"

// Handler wires the HTTP transport to the acquisition service.
type Handler struct {
	svc             *service.Service
	defaultLocation string
	logger          zerolog.Logger
}

// NewHandler constructs the API handler.
func NewHandler(svc *service.Service, defaultLocation string, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:             svc,
		defaultLocation: defaultLocation,
		logger:          logger.With().Str("component", "http.handler").Logger(),
	}
}

// GetEphemeris serves one record, acquiring it on first request.
func (h *Handler) GetEphemeris(c *gin.Context) {
	date, ok := h.requireDate(c, c.Query("date"))
	if !ok {
		return
	}
	location := c.DefaultQuery("location", h.defaultLocation)

	record, err := h.svc.EnsureRecord(c.Request.Context(), date, location)
	if err != nil {
		h.logger.Error().Err(err).Str("date", c.Query("date")).Msg("ephemeris request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ephemeris data"})
		return
	}

	c.JSON(http.StatusOK, record)
}

type bulkRequest struct {
	Dates    []string `json:"dates"`
	Location string   `json:"location"`
}

// BulkEphemeris acquires several dates sequentially, reporting per-date
// failures inline.
func (h *Handler) BulkEphemeris(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Dates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates array is required"})
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date: " + raw})
			return
		}
		dates = append(dates, date.UTC())
	}

	location := req.Location
	if location == "" {
		location = h.defaultLocation
	}

	results, err := h.svc.EnsureRecords(c.Request.Context(), dates, location)
	if err != nil {
		h.logger.Error().Err(err).Msg("bulk ephemeris request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bulk ephemeris data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// TestHorizons probes upstream connectivity.
func (h *Handler) TestHorizons(c *gin.Context) {
	probe := h.svc.Probe(c.Request.Context())
	status := "success"
	if !probe.Live {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               status,
		"horizons_api_working": probe.Live,
		"test_date":            probe.TestDate,
		"sample_data":          probe.Coordinates,
	})
}

// GetHoroscope serves the horoscope for a stored record; an unknown date asks
// the caller to fetch it first rather than acquiring implicitly.
func (h *Handler) GetHoroscope(c *gin.Context) {
	date, ok := h.requireDate(c, c.Query("date"))
	if !ok {
		return
	}
	location := c.DefaultQuery("location", h.defaultLocation)

	var birthDate *time.Time
	if raw := c.Query("birth_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birth_date parameter"})
			return
		}
		utc := parsed.UTC()
		birthDate = &utc
	}

	result, record, err := h.svc.Horoscope(c.Request.Context(), date, birthDate, location)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"date":      date.Format(dateLayout),
				"message":   "No ephemeris data available for this date. Please fetch it first.",
				"horoscope": nil,
			})
			return
		}
		h.logger.Error().Err(err).Str("date", c.Query("date")).Msg("horoscope request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate horoscope"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      date.Format(dateLayout),
		"ephemeris": record,
		"horoscope": result,
	})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func (h *Handler) requireDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date parameter is required"})
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date parameter"})
		return time.Time{}, false
	}
	return date.UTC(), true
}
