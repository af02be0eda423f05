package cgps

import "time"

// Fix is a single resolved GPS position reading. It is only ever produced by
// a fully successful parse of a +CGPSINFO reply; no partially populated Fix
// is observable.
type Fix struct {
	// Latitude in decimal degrees, south negative.
	Latitude float64 `json:"lat"`
	// Longitude in decimal degrees, west negative.
	Longitude float64 `json:"lon"`
	// Time of the fix, UTC.
	Time time.Time `json:"time"`
	// Altitude in meters.
	Altitude float64 `json:"alt_m"`
	// Speed over ground as reported by the modem.
	Speed float64 `json:"speed"`
}
