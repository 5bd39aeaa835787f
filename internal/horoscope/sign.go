package horoscope

import "math"

// signs are the twelve 30° right-ascension bins, index 0 starting at RA 0.
var signs = [12]string{
	"Aries ♈", "Taurus ♉", "Gemini ♊", "Cancer ♋",
	"Leo ♌", "Virgo ♍", "Libra ♎", "Scorpio ♏",
	"Sagittarius ♐", "Capricorn ♑", "Aquarius ♒", "Pisces ♓",
}

// Sign maps a right ascension to its zodiac label. A nil RA (errored body)
// yields "Unknown".
func Sign(ra *float64) string {
	if ra == nil {
		return "Unknown"
	}
	normalized := math.Mod(math.Mod(*ra, 360)+360, 360)
	idx := int(normalized / 30)
	if idx < 0 || idx >= len(signs) {
		return signs[0]
	}
	return signs[idx]
}

// Intensity bands |sin(ra)| into low/medium/high influence strength.
func Intensity(ra *float64) string {
	if ra == nil {
		return "low"
	}
	intensity := math.Abs(math.Sin(*ra * math.Pi / 180))
	switch {
	case intensity > 0.8:
		return "high"
	case intensity > 0.5:
		return "medium"
	default:
		return "low"
	}
}
