package horoscope

import (
	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

var levelWeights = map[Level]float64{
	LevelHigh:     3,
	LevelMedium:   2,
	LevelLow:      1,
	LevelPositive: -1,
}

// OverallRisk reduces the prediction set to one confidence-weighted risk level.
func OverallRisk(predictions []Prediction) string {
	total := 0.0
	for _, pred := range predictions {
		total += levelWeights[pred.Level] * pred.Confidence
	}

	switch {
	case total > 3.0:
		return "high"
	case total > 1.0:
		return "medium"
	case total < -0.8:
		return "favorable"
	default:
		return "normal"
	}
}

const (
	adviceCautionary = "The cosmic alignment suggests extra caution today. Review your monitoring systems, strengthen communication protocols, and ensure your incident response teams are well-prepared."
	adviceFavorable  = "Favorable planetary energies support smooth operations and productive collaboration. An excellent day for ambitious deployments, process improvements, and team coordination."
	adviceBalanced   = "Balanced cosmic energies suggest a typical operational day. Maintain standard vigilance, follow established procedures, and stay alert to emerging patterns."
)

// CosmicAdvice picks one of three fixed templates by comparing the number of
// risk-bearing predictions against the positive ones.
func CosmicAdvice(predictions []Prediction) string {
	riskCount := 0
	positiveCount := 0
	for _, pred := range predictions {
		switch pred.Level {
		case LevelHigh, LevelMedium:
			riskCount++
		case LevelPositive:
			positiveCount++
		}
	}

	switch {
	case riskCount > positiveCount:
		return adviceCautionary
	case positiveCount > riskCount:
		return adviceFavorable
	default:
		return adviceBalanced
	}
}

// PlanetSummary describes one planet's sign and influence strength.
type PlanetSummary struct {
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Domain            string `json:"domain"`
	Sign              string `json:"sign"`
	InfluenceStrength string `json:"influence_strength"`
}

var summaryPlanets = []struct {
	body   catalog.Body
	symbol string
	domain string
}{
	{catalog.Sun, "☉", "Leadership & Authority"},
	{catalog.Mercury, "☿", "Communication & Deployments"},
	{catalog.Venus, "♀", "Team Harmony & UX"},
	{catalog.Mars, "♂", "Incidents & Conflicts"},
	{catalog.Jupiter, "♃", "Growth & Learning"},
	{catalog.Saturn, "♄", "Structure & Testing"},
	{catalog.Moon, "☽", "On-call & Team Emotions"},
}

// PlanetarySummary classifies each scoring planet for the dashboard.
func PlanetarySummary(record storage.EphemerisRecord) []PlanetSummary {
	out := make([]PlanetSummary, 0, len(summaryPlanets))
	for _, planet := range summaryPlanets {
		ra := record.RA(planet.body)
		out = append(out, PlanetSummary{
			Name:              displayName(planet.body),
			Symbol:            planet.symbol,
			Domain:            planet.domain,
			Sign:              Sign(ra),
			InfluenceStrength: Intensity(ra),
		})
	}
	return out
}
