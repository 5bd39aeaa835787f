package fetcher

import (
	"math"
	"math/rand"
	"time"

	"incident-horoscope/internal/catalog"
)

var fallbackEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Synthesize produces a physically-plausible position for a body on a date
// without network access. For any catalog body the result is a pure function
// of (body, date): the RA advances along an approximate circular orbit, a
// date-hash wobble of ±30° is applied, declination oscillates within the
// ±23.5° ecliptic band, and distance swells with the orbital phase. Unknown
// bodies get a random position; that branch is unreachable for the fixed
// catalog but kept for robustness.
func Synthesize(body catalog.Body, date time.Time) Coordinates {
	orbit, ok := body.Orbit()
	if !ok {
		return Coordinates{
			RA:       rand.Float64() * 360,
			Dec:      (rand.Float64() - 0.5) * 60,
			Distance: 1 + rand.Float64()*10,
		}
	}

	date = date.UTC()
	daysSinceEpoch := date.Sub(fallbackEpoch).Hours() / 24
	orbitFraction := math.Mod(daysSinceEpoch/orbit.PeriodDays, 1)
	if orbitFraction < 0 {
		orbitFraction += 1
	}

	ra := math.Mod(orbit.InitialRA+orbitFraction*360, 360)

	dateHash := date.Year() + int(date.Month()) + date.Day()
	variation := float64(dateHash%60 - 30)
	ra = math.Mod(ra+variation+360, 360)

	return Coordinates{
		RA:       ra,
		Dec:      math.Sin(orbitFraction*2*math.Pi) * 23.5,
		Distance: 1 + math.Abs(math.Sin(orbitFraction*math.Pi))*(orbit.PeriodDays/1000),
	}
}
