package catalog

// Body identifies one of the tracked celestial bodies.
type Body string

const (
	Sun     Body = "sun"
	Mercury Body = "mercury"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
	Saturn  Body = "saturn"
	Uranus  Body = "uranus"
	Neptune Body = "neptune"
	Moon    Body = "moon"
)

// Bodies is the fixed acquisition order for one ephemeris record.
var Bodies = []Body{Sun, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Moon}

// horizonsCodes maps a body to its JPL Horizons target code.
var horizonsCodes = map[Body]string{
	Sun:     "10",
	Mercury: "199",
	Venus:   "299",
	Mars:    "499",
	Jupiter: "599",
	Saturn:  "699",
	Uranus:  "799",
	Neptune: "899",
	Moon:    "301",
}

// Orbit holds the approximate parameters used only by the fallback synthesizer.
type Orbit struct {
	PeriodDays float64
	InitialRA  float64
}

var orbits = map[Body]Orbit{
	Sun:     {PeriodDays: 365.25, InitialRA: 280},
	Mercury: {PeriodDays: 87.97, InitialRA: 48},
	Venus:   {PeriodDays: 224.7, InitialRA: 105},
	Mars:    {PeriodDays: 686.98, InitialRA: 350},
	Jupiter: {PeriodDays: 4332.59, InitialRA: 155},
	Saturn:  {PeriodDays: 10759.22, InitialRA: 234},
	Uranus:  {PeriodDays: 30688.5, InitialRA: 12},
	Neptune: {PeriodDays: 60182, InitialRA: 305},
	Moon:    {PeriodDays: 27.32, InitialRA: 125},
}

// Code returns the Horizons target code for a body.
func (b Body) Code() string {
	return horizonsCodes[b]
}

// Orbit returns the approximate orbital parameters and whether the body is known.
func (b Body) Orbit() (Orbit, bool) {
	o, ok := orbits[b]
	return o, ok
}

// Known reports whether the body is part of the fixed catalog.
func (b Body) Known() bool {
	_, ok := horizonsCodes[b]
	return ok
}

// String implements fmt.Stringer.
func (b Body) String() string {
	return string(b)
}
