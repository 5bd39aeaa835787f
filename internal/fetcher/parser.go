package fetcher

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnparsable indicates the Horizons response contained no usable coordinate row.
var ErrUnparsable = errors.New("fetcher: unparsable ephemeris response")

// Coordinates is one normalized (ra, dec, distance) triple.
type Coordinates struct {
	RA       float64
	Dec      float64
	Distance float64
}

var errorTokens = []string{"ERROR", "FAILED", "No ephemeris"}

const (
	startOfData = "$$SOE"
	endOfData   = "$$EOE"
)

// ParseObserverTable extracts the first RA/DEC pair from a Horizons text table.
//
// Only lines between the $$SOE and $$EOE markers are considered. Each data line
// is split on whitespace and scanned for the first adjacent field pair where
// the first value lies in [0,360] and the second in [-90,90]; a positive third
// field, when present, is taken as the distance (default 1.0). The scan stops
// at the first match. This heuristic tolerates column drift in the upstream
// table but can latch onto a non-coordinate pair that happens to fall in
// range; that ambiguity is inherited from the upstream format and left as-is.
func ParseObserverTable(raw string) (Coordinates, error) {
	for _, token := range errorTokens {
		if strings.Contains(raw, token) {
			return Coordinates{}, ErrUnparsable
		}
	}

	inData := false
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, startOfData) {
			inData = true
			continue
		}
		if strings.Contains(line, endOfData) {
			break
		}
		if !inData {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 20 {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 4 {
			continue
		}

		// Field 0 is the calendar date; start the pair scan after it.
		for j := 1; j < len(fields)-1; j++ {
			ra, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				continue
			}
			dec, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				continue
			}
			if ra < 0 || ra > 360 || dec < -90 || dec > 90 {
				continue
			}

			coords := Coordinates{RA: ra, Dec: dec, Distance: 1.0}
			if j+2 < len(fields) {
				if dist, err := strconv.ParseFloat(fields[j+2], 64); err == nil && dist > 0 {
					coords.Distance = dist
				}
			}
			return coords, nil
		}
	}

	return Coordinates{}, ErrUnparsable
}
