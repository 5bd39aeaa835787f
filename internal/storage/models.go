package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"incident-horoscope/internal/catalog"
)

// Provenance records where one body's position came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceError    Provenance = "error"
)

// Position is one body's measurement for one date. Coordinates are nil iff the
// provenance is error; they are never fabricated for a failed body.
type Position struct {
	Body       catalog.Body
	RA         *float64
	Dec        *float64
	Distance   *float64
	Provenance Provenance
}

// EphemerisRecord aggregates the nine body positions for a (date, location)
// key. Written once by the assembler, replaced wholesale on upsert, never
// partially updated.
type EphemerisRecord struct {
	Date              time.Time
	Location          string
	Positions         map[catalog.Body]Position
	UsingFallbackData bool
	Sources           map[catalog.Body]Provenance
	CreatedAt         time.Time
}

// Position returns the stored position for a body.
func (r EphemerisRecord) Position(body catalog.Body) (Position, bool) {
	pos, ok := r.Positions[body]
	return pos, ok
}

// RA returns the right ascension for a body, nil when absent or errored.
func (r EphemerisRecord) RA(body catalog.Body) *float64 {
	if pos, ok := r.Positions[body]; ok {
		return pos.RA
	}
	return nil
}

// Distance returns the distance for a body, nil when absent or errored.
func (r EphemerisRecord) Distance(body catalog.Body) *float64 {
	if pos, ok := r.Positions[body]; ok {
		return pos.Distance
	}
	return nil
}

// MarshalJSON flattens the record into the wire shape consumed by the
// dashboard: 27 numeric columns plus the fallback flag and per-body sources.
func (r EphemerisRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(catalog.Bodies)*3+5)
	out["date"] = r.Date.UTC().Format("2006-01-02")
	out["location"] = r.Location
	out["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	out["using_fallback_data"] = r.UsingFallbackData

	sources := make(map[string]string, len(r.Sources))
	for body, prov := range r.Sources {
		sources[body.String()] = string(prov)
	}
	out["data_sources"] = sources

	for _, body := range catalog.Bodies {
		pos := r.Positions[body]
		out[fmt.Sprintf("%s_ra", body)] = pos.RA
		out[fmt.Sprintf("%s_dec", body)] = pos.Dec
		out[fmt.Sprintf("%s_distance", body)] = pos.Distance
	}

	return json.Marshal(out)
}
