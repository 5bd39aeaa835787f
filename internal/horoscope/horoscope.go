// Package horoscope turns a stored ephemeris record into categorized
// risk/advice signals for engineering teams. All functions are pure over the
// record; nothing here touches the network or the store.
package horoscope

import (
	"incident-horoscope/internal/storage"
)

// Result is the full horoscope for one date.
type Result struct {
	Date              string            `json:"date"`
	OverallRiskLevel  string            `json:"overall_risk_level"`
	Predictions       []Prediction      `json:"predictions"`
	CosmicAdvice      string            `json:"cosmic_advice"`
	PlanetarySummary  []PlanetSummary   `json:"planetary_summary"`
	DeveloperInsights DeveloperInsights `json:"developer_insights"`
}

// Generate computes the horoscope for a record. When a birth record is
// supplied the whole rule set runs a second time against it under personal
// categories, and the insight forecasts add their personal influence checks.
func Generate(record storage.EphemerisRecord, birth *storage.EphemerisRecord) Result {
	predictions := Predictions(record)
	if birth != nil {
		predictions = append(predictions, PersonalPredictions(*birth)...)
	}

	return Result{
		Date:              record.Date.UTC().Format("2006-01-02"),
		OverallRiskLevel:  OverallRisk(predictions),
		Predictions:       predictions,
		CosmicAdvice:      CosmicAdvice(predictions),
		PlanetarySummary:  PlanetarySummary(record),
		DeveloperInsights: Insights(record, birth),
	}
}
