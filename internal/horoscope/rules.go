package horoscope

import (
	"fmt"
	"math"
	"strings"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

// Level grades a prediction's operational impact.
type Level string

const (
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
	LevelPositive Level = "positive"
)

// Prediction is one fired rule instance.
type Prediction struct {
	Category   string  `json:"category"`
	Level      Level   `json:"level"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
	Body       string  `json:"planet"`
}

// Predictions evaluates the fixed rule set against a record. Bodies are
// evaluated in a fixed order (Mars, Mercury, Venus, Jupiter, Saturn, Moon,
// Sun); within a body the bands are tried in priority order and at most one
// fires. Bodies with an errored (nil) signal contribute nothing.
func Predictions(record storage.EphemerisRecord) []Prediction {
	return evaluate(record, "")
}

// PersonalPredictions runs the identical rule set against a birth record,
// prefixing every category with "personal_".
func PersonalPredictions(birth storage.EphemerisRecord) []Prediction {
	return evaluate(birth, "personal_")
}

func evaluate(record storage.EphemerisRecord, prefix string) []Prediction {
	preds := make([]Prediction, 0, 7)

	appendPred := func(body catalog.Body, category string, level Level, confidence float64, message string) {
		preds = append(preds, Prediction{
			Category:   prefix + category,
			Level:      level,
			Message:    message,
			Confidence: confidence,
			Body:       displayName(body),
		})
	}

	// Mars: incident risk and system conflicts.
	if ra := record.RA(catalog.Mars); ra != nil {
		sign := Sign(ra)
		switch tension := math.Abs(math.Mod(*ra, 30)); {
		case tension > 27:
			appendPred(catalog.Mars, "incident_risk", LevelHigh, 0.75,
				fmt.Sprintf("Mars in %s suggests heightened potential for critical incidents. Infrastructure and security teams should be extra vigilant. Review monitoring systems and incident response procedures.", sign))
		case tension > 20:
			appendPred(catalog.Mars, "incident_risk", LevelMedium, 0.6,
				fmt.Sprintf("Mars in %s indicates moderate system tension. Good time to proactively address technical debt and potential failure points.", sign))
		case tension < 5:
			appendPred(catalog.Mars, "system_stability", LevelPositive, 0.5,
				fmt.Sprintf("Mars in %s settles into a calm phase. Systems run steady; a good window for routine maintenance and housekeeping.", sign))
		}
	}

	// Mercury: communication and deployment issues.
	if ra := record.RA(catalog.Mercury); ra != nil {
		sign := Sign(ra)
		position := math.Mod(*ra, 360)
		switch {
		case position >= 330 || position < 30:
			appendPred(catalog.Mercury, "communication_risk", LevelMedium, 0.65,
				fmt.Sprintf("Mercury in %s may cause communication and deployment-related issues. Double-check configurations, review change management processes, and ensure clear team communication.", sign))
		case position >= 150 && position <= 210:
			appendPred(catalog.Mercury, "communication_flow", LevelPositive, 0.6,
				fmt.Sprintf("Mercury in %s supports clear channels. Ideal for cross-team announcements, documentation work, and coordinated releases.", sign))
		}
	}

	// Venus: team collaboration and user experience.
	if ra := record.RA(catalog.Venus); ra != nil {
		if math.Sin(*ra*math.Pi/180) > 0.5 {
			appendPred(catalog.Venus, "team_harmony", LevelPositive, 0.55,
				fmt.Sprintf("Venus in %s favors team collaboration and user satisfaction. Excellent day for cross-team coordination, user experience improvements, and complex deployments.", Sign(ra)))
		}
	}

	// Jupiter: learning and process improvements.
	if dist := record.Distance(catalog.Jupiter); dist != nil && *dist < 5 {
		appendPred(catalog.Jupiter, "growth_opportunities", LevelPositive, 0.5,
			fmt.Sprintf("Jupiter in %s creates favorable conditions for implementing process improvements, conducting post-mortems, and expanding system capabilities.", Sign(record.RA(catalog.Jupiter))))
	}

	// Saturn: structure, testing, and discipline.
	if ra := record.RA(catalog.Saturn); ra != nil {
		sign := Sign(ra)
		switch discipline := math.Cos(*ra * math.Pi / 180); {
		case discipline > 0.7:
			appendPred(catalog.Saturn, "testing_focus", LevelMedium, 0.6,
				fmt.Sprintf("Saturn in %s emphasizes the importance of thorough testing and structured processes. Focus on code reviews, automated testing, and compliance checks.", sign))
		case discipline < -0.5:
			appendPred(catalog.Saturn, "process_flexibility", LevelPositive, 0.5,
				fmt.Sprintf("Saturn in %s loosens its grip on process. Room to experiment with workflow changes and lighter-weight ceremonies.", sign))
		}
	}

	// Moon: on-call and emotional responses.
	if ra := record.RA(catalog.Moon); ra != nil {
		sign := Sign(ra)
		switch phase := math.Mod(*ra/15, 24); {
		case phase < 3 || phase > 21:
			appendPred(catalog.Moon, "on_call_management", LevelMedium, 0.7,
				fmt.Sprintf("Moon in %s suggests heightened emotional responses to incidents. Ensure adequate on-call coverage and support systems for team well-being.", sign))
		case phase >= 10 && phase <= 14:
			appendPred(catalog.Moon, "team_wellness", LevelPositive, 0.55,
				fmt.Sprintf("Moon in %s supports team morale and recovery. A good day to rebalance on-call load and clear lingering action items.", sign))
		}
	}

	// Sun: leadership and system authority.
	if ra := record.RA(catalog.Sun); ra != nil {
		if math.Abs(math.Sin(*ra*math.Pi/180)) > 0.7 {
			appendPred(catalog.Sun, "leadership_opportunity", LevelPositive, 0.6,
				fmt.Sprintf("Sun in %s highlights leadership opportunities. Strong day for architectural decisions, system governance, and establishing technical authority.", Sign(ra)))
		}
	}

	return preds
}

func displayName(body catalog.Body) string {
	name := body.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
