package cgps

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformedField marks a +CGPSINFO field whose text does not decode.
var ErrMalformedField = errors.New("malformed field")

// parseLatitude decodes the modem's DDMM.MMMMMM layout into decimal degrees,
// negated when the hemisphere flag is "S".
func parseLatitude(text, hemi string) (float64, error) {
	deg, err := parseAngle(text, 2)
	if err != nil {
		return 0, err
	}
	if hemi == "S" {
		deg = -deg
	}
	return deg, nil
}

// parseLongitude decodes DDDMM.MMMMMM into decimal degrees, negated for "W".
func parseLongitude(text, hemi string) (float64, error) {
	deg, err := parseAngle(text, 3)
	if err != nil {
		return 0, err
	}
	if hemi == "W" {
		deg = -deg
	}
	return deg, nil
}

// parseAngle splits text into a degDigits-wide integer degree part and a
// fractional-minutes remainder, returning degrees + minutes/60.
func parseAngle(text string, degDigits int) (float64, error) {
	if len(text) <= degDigits {
		return 0, fmt.Errorf("%w: angle %q too short", ErrMalformedField, text)
	}
	deg, err := strconv.Atoi(text[:degDigits])
	if err != nil {
		return 0, fmt.Errorf("%w: angle %q: bad degrees", ErrMalformedField, text)
	}
	min, err := strconv.ParseFloat(text[degDigits:], 64)
	if err != nil || min < 0 {
		return 0, fmt.Errorf("%w: angle %q: bad minutes", ErrMalformedField, text)
	}
	return float64(deg) + min/60, nil
}

// timeLayout matches the modem's DDMMYY date and HHMMSS.ffffff UTC time
// fields joined by a space. Two-digit years follow the stdlib pivot
// (69-99 map to 19xx, 00-68 to 20xx).
const timeLayout = "020106 150405.000000"

// parseTimestamp combines the date and time fields into an absolute UTC instant.
func parseTimestamp(dateText, timeText string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, dateText+" "+timeText)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q %q", ErrMalformedField, dateText, timeText)
	}
	return ts.UTC(), nil
}
