package horoscope

import (
	"math"
	"strings"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

// Forecast is one developer-facing outlook built from planetary influences.
type Forecast struct {
	OverallOutlook  Outlook  `json:"overall_outlook"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	CosmicMessage   string   `json:"cosmic_message"`
}

// DeveloperInsights bundles the two forecasts.
type DeveloperInsights struct {
	DeploymentForecast Forecast `json:"deployment_forecast"`
	OnCallForecast     Forecast `json:"on_call_forecast"`
}

const neutralCosmicMessage = "The cosmos is quiet; proceed with standard operational caution."

// Per-planet influence sub-scores. These use their own thresholds, independent
// of the prediction rule bands.

type mercuryInfluence struct {
	retrogradeRisk float64
	clarity        float64
}

type marsInfluence struct {
	conflictPotential float64
	energy            float64
	incidentMagnetism float64
	protectiveEnergy  float64
}

type saturnInfluence struct {
	discipline float64
}

type moonInfluence struct {
	emotionalIntensity float64
	emotionalBalance   float64
}

type venusInfluence struct {
	teamHarmony float64
}

func mercuryInfluenceOf(record storage.EphemerisRecord) mercuryInfluence {
	influence := mercuryInfluence{retrogradeRisk: 0.2, clarity: 0.3}
	ra := record.RA(catalog.Mercury)
	if ra == nil {
		return influence
	}
	if *ra < 30 || *ra > 330 {
		influence.retrogradeRisk = 0.8
	}
	if *ra > 150 && *ra < 210 {
		influence.clarity = 0.7
	}
	return influence
}

func marsInfluenceOf(record storage.EphemerisRecord) marsInfluence {
	influence := marsInfluence{energy: 0.4, incidentMagnetism: 0.3, protectiveEnergy: 0.2}
	ra := record.RA(catalog.Mars)
	if ra == nil {
		return influence
	}
	tension := math.Abs(math.Mod(*ra, 30))
	if tension > 25 {
		influence.conflictPotential = 0.8
	} else {
		influence.conflictPotential = tension / 30
	}
	if *ra > 210 && *ra < 330 {
		influence.energy = 0.8
	}
	if tension > 27 {
		influence.incidentMagnetism = 0.9
	}
	if tension < 5 {
		influence.protectiveEnergy = 0.7
	}
	return influence
}

func saturnInfluenceOf(record storage.EphemerisRecord) saturnInfluence {
	influence := saturnInfluence{discipline: 0.3}
	if ra := record.RA(catalog.Saturn); ra != nil && math.Cos(*ra*math.Pi/180) > 0.5 {
		influence.discipline = 0.8
	}
	return influence
}

func moonInfluenceOf(record storage.EphemerisRecord) moonInfluence {
	influence := moonInfluence{emotionalIntensity: 0.3, emotionalBalance: 0.3}
	ra := record.RA(catalog.Moon)
	if ra == nil {
		return influence
	}
	phase := math.Mod(*ra/15, 24)
	if phase < 3 || phase > 21 {
		influence.emotionalIntensity = 0.8
	}
	if phase > 10 && phase < 14 {
		influence.emotionalBalance = 0.7
	}
	return influence
}

func venusInfluenceOf(record storage.EphemerisRecord) venusInfluence {
	influence := venusInfluence{teamHarmony: 0.3}
	if ra := record.RA(catalog.Venus); ra != nil && math.Sin(*ra*math.Pi/180) > 0.5 {
		influence.teamHarmony = 0.7
	}
	return influence
}

// forecastBuilder accumulates gated influence contributions in a fixed order.
type forecastBuilder struct {
	outlook OutlookTracker
	message strings.Builder
	recs    []string
	fired   int
}

func (b *forecastBuilder) addChallenging(fragment string, recommendations ...string) {
	b.outlook.NoteChallenging()
	b.add(fragment, recommendations...)
}

func (b *forecastBuilder) addFavorable(fragment string, recommendations ...string) {
	b.outlook.NoteFavorable()
	b.add(fragment, recommendations...)
}

func (b *forecastBuilder) add(fragment string, recommendations ...string) {
	b.message.WriteString(fragment)
	b.recs = append(b.recs, recommendations...)
	b.fired++
}

func (b *forecastBuilder) build() Forecast {
	message := strings.TrimSpace(b.message.String())
	if b.fired == 0 {
		message = neutralCosmicMessage
	}

	confidence := 0.5 + 0.1*float64(b.fired)
	if confidence > 0.85 {
		confidence = 0.85
	}

	recs := b.recs
	if recs == nil {
		recs = make([]string, 0)
	}

	return Forecast{
		OverallOutlook:  b.outlook.Current(),
		Confidence:      confidence,
		Recommendations: recs,
		CosmicMessage:   message,
	}
}

// Insights derives the deployment and on-call forecasts from a record and,
// when present, a birth record for the personal influence checks.
func Insights(record storage.EphemerisRecord, birth *storage.EphemerisRecord) DeveloperInsights {
	return DeveloperInsights{
		DeploymentForecast: deploymentForecast(record, birth),
		OnCallForecast:     onCallForecast(record, birth),
	}
}

// deploymentForecast composes influences in Mercury → Mars → Saturn → personal order.
func deploymentForecast(record storage.EphemerisRecord, birth *storage.EphemerisRecord) Forecast {
	mercury := mercuryInfluenceOf(record)
	mars := marsInfluenceOf(record)
	saturn := saturnInfluenceOf(record)

	var b forecastBuilder

	if mercury.retrogradeRisk > 0.7 {
		b.addChallenging("Mercury's shadow warns of communication mishaps around deployments. ",
			"Double-check configuration changes before rollout",
			"Prefer small, reversible deploys over big-bang releases")
	}
	if mercury.clarity > 0.6 {
		b.addFavorable("Mercury supports clear deployment communication. ",
			"Good window for coordinated multi-team releases")
	}
	if mars.conflictPotential > 0.7 {
		b.addChallenging("Mars raises conflict potential across systems and teams. ",
			"Have incident commanders on standby for major changes")
	}
	if mars.energy > 0.6 {
		b.addFavorable("Mars lends momentum to ambitious rollouts. ",
			"Channel the energy into planned migrations, not hotfixes")
	}
	if saturn.discipline > 0.6 {
		b.addFavorable("Saturn rewards disciplined process today. ",
			"Lean on checklists and staged rollouts")
	}
	if birth != nil {
		if mercuryInfluenceOf(*birth).retrogradeRisk > 0.6 {
			b.addChallenging("Your natal Mercury adds personal friction to releases. ",
				"Pair with a colleague when shipping today")
		}
	}

	return b.build()
}

// onCallForecast composes influences in Moon → Mars → Venus → personal order.
func onCallForecast(record storage.EphemerisRecord, birth *storage.EphemerisRecord) Forecast {
	moon := moonInfluenceOf(record)
	mars := marsInfluenceOf(record)
	venus := venusInfluenceOf(record)

	var b forecastBuilder

	if moon.emotionalIntensity > 0.7 {
		b.addChallenging("The Moon heightens emotional responses to pages. ",
			"Confirm secondary on-call coverage",
			"Keep runbooks for the likeliest alerts within reach")
	}
	if moon.emotionalBalance > 0.6 {
		b.addFavorable("The Moon steadies the on-call rotation. ",
			"A calm shift is likely; use it to tidy alert rules")
	}
	if mars.incidentMagnetism > 0.7 {
		b.addChallenging("Mars attracts incidents toward fragile systems. ",
			"Freeze risky changes before the evening")
	}
	if mars.protectiveEnergy > 0.6 {
		b.addFavorable("Mars shields the pager tonight. ",
			"Good night for planned failover tests")
	}
	if venus.teamHarmony > 0.6 {
		b.addFavorable("Venus smooths handoffs between responders. ",
			"Schedule the handoff retro while the mood lasts")
	}
	if birth != nil {
		if moonInfluenceOf(*birth).emotionalBalance > 0.6 {
			b.addFavorable("Your natal Moon favors composed incident response. ",
				"Volunteer for the tricky escalations today")
		}
	}

	return b.build()
}
