package domain

import (
	"strings"
	"time"
)

// Duration is the AWDB duration class of a request.
type Duration string

const (
	Hourly Duration = "HOURLY"
	Daily  Duration = "DAILY"
)

// SHEFCode returns the SHEF duration letter: I for hourly readings, D for
// everything else.
func (d Duration) SHEFCode() string {
	if d == Hourly {
		return "I"
	}
	return "D"
}

// physicalElements maps AWDB element codes to SHEF physical element codes.
var physicalElements = map[string]string{
	"PREC": "PC",
	"TOBS": "TA",
	"WTEQ": "SW",
	"SNWD": "SD",
}

// PhysicalElement translates an AWDB element code. Unknown codes return "".
func PhysicalElement(elementCode string) string {
	return physicalElements[strings.ToUpper(strings.TrimSpace(elementCode))]
}

// ObservationQuery holds the request parameters shared by every batch of a run.
type ObservationQuery struct {
	Elements []string
	Duration Duration
	Back     int
}

// RawObservation is one reading as returned by the service. LocalTime holds
// the station-local wall clock in a UTC-located time.Time; it is not an
// instant until ToUTC is applied.
type RawObservation struct {
	Triplet     StationTriplet
	LocalTime   time.Time
	ElementCode string
	Value       *float64
}

// NormalizedRecord is a joined observation ready for encoding.
type NormalizedRecord struct {
	PublishID       string
	UTCTime         time.Time
	PhysicalElement string
	Value           *float64
}

// PublishedDelta is a delta file handed to downstream publishers.
type PublishedDelta struct {
	Name      string
	Duration  Duration
	Format    Format
	Lines     []string
	CreatedAt time.Time
}
