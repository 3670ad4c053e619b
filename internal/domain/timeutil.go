package domain

import "time"

// ToUTC converts a station-local reading time to UTC by subtracting the
// station's offset. An offset of -8 (PST) moves 05:00 local to 13:00 UTC.
// Offsets are not range-checked and no daylight saving is applied.
func ToUTC(local time.Time, offsetHours int) time.Time {
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	return wall.Add(-time.Duration(offsetHours) * time.Hour)
}
