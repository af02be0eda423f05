package cgps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// InfoPrefix tags the data line of an AT+CGPSINFO reply.
const InfoPrefix = "+CGPSINFO: "

var (
	// ErrBadFraming: transcript does not start with the command echo, does
	// not end with the OK status line, or carries more than one data line.
	ErrBadFraming = errors.New("bad transcript framing")
	// ErrMissingData: no line tagged with the +CGPSINFO prefix.
	ErrMissingData = errors.New("no +CGPSINFO data line")
	// ErrFieldCount: the data line does not split into exactly nine fields.
	ErrFieldCount = errors.New("wrong +CGPSINFO field count")
)

// ParseInfo decodes one complete AT+CGPSINFO transcript into a Fix.
//
// A structurally valid reply whose fields are all empty means the modem has
// no fix yet; that is not an error, and ParseInfo reports it as (nil, nil).
func ParseInfo(transcript []string) (*Fix, error) {
	if len(transcript) < 2 || transcript[0] != "AT+CGPSINFO" || transcript[len(transcript)-1] != "OK" {
		return nil, fmt.Errorf("%w: want AT+CGPSINFO echo and final OK", ErrBadFraming)
	}

	data := ""
	for _, line := range transcript {
		if !strings.HasPrefix(line, InfoPrefix) {
			continue
		}
		if data != "" {
			return nil, fmt.Errorf("%w: multiple data lines", ErrBadFraming)
		}
		data = strings.TrimPrefix(line, InfoPrefix)
	}
	if data == "" {
		return nil, ErrMissingData
	}

	// lat, N/S, lng, E/W, date, UTC time, alt, speed, course
	fields := strings.Split(data, ",")
	if len(fields) != 9 {
		return nil, fmt.Errorf("%w: got %d", ErrFieldCount, len(fields))
	}

	// All-empty fields signal "no fix yet".
	if fields[0] == "" {
		return nil, nil
	}

	lat, err := parseLatitude(fields[0], fields[1])
	if err != nil {
		return nil, err
	}
	lng, err := parseLongitude(fields[2], fields[3])
	if err != nil {
		return nil, err
	}
	ts, err := parseTimestamp(fields[4], fields[5])
	if err != nil {
		return nil, err
	}
	alt, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: altitude %q", ErrMalformedField, fields[6])
	}
	speed, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: speed %q", ErrMalformedField, fields[7])
	}

	return &Fix{
		Latitude:  lat,
		Longitude: lng,
		Time:      ts,
		Altitude:  alt,
		Speed:     speed,
	}, nil
}
