package util

import "time"

var saoPauloLocation *time.Location

func init() {
	var err error
	saoPauloLocation, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		saoPauloLocation = time.FixedZone("BRT", -3*60*60)
	}
}

// Location returns the timezone used for quota windows and dashboard ranges.
func Location() *time.Location {
	return saoPauloLocation
}

// StartOfNextDay returns the next local midnight after t.
// Quota buckets reset at this boundary.
func StartOfNextDay(t time.Time) time.Time {
	local := t.In(saoPauloLocation)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, saoPauloLocation)
}

// StartOfMonth returns the first local midnight of t's month.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(saoPauloLocation)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, saoPauloLocation)
}
