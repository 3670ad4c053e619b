package domain

import (
	"fmt"
	"strings"
)

// DefaultNetwork is the AWDB network code for SNOTEL stations.
const DefaultNetwork = "SNTL"

// SelectAll selects every station in the reference table.
const SelectAll = "all"

// StationTriplet identifies a station to the AWDB service.
type StationTriplet struct {
	StationID   string
	StateCode   string
	NetworkCode string
}

// String renders the triplet in AWDB form, e.g. "1107:WA:SNTL".
func (t StationTriplet) String() string {
	return t.StationID + ":" + t.StateCode + ":" + t.NetworkCode
}

// ParseTriplet parses "<id>:<state>:<network>".
func ParseTriplet(s string) (StationTriplet, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return StationTriplet{}, fmt.Errorf("parse station triplet %q", s)
	}
	return StationTriplet{StationID: parts[0], StateCode: parts[1], NetworkCode: parts[2]}, nil
}

// JoinTriplets renders triplets as the comma-joined list the service expects.
func JoinTriplets(triplets []StationTriplet) string {
	parts := make([]string, len(triplets))
	for i, t := range triplets {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// StationRef is one row of the on-disk station reference table.
type StationRef struct {
	StationID string `validate:"required"`
	StateCode string `validate:"required"`
	PublishID string `validate:"required"`
}

// Triplet builds the AWDB triplet for the row on the given network.
func (r StationRef) Triplet(network string) StationTriplet {
	return StationTriplet{StationID: r.StationID, StateCode: r.StateCode, NetworkCode: network}
}

// StationMeta is the per-station metadata returned by the service.
type StationMeta struct {
	Triplet        StationTriplet
	UTCOffsetHours int
	PublishID      string
}

// SelectStations resolves a selector against the reference table. "all"
// returns every row in table order; anything else is treated as a publish id
// and must match at least one row, otherwise ErrLookupMiss is returned.
func SelectStations(refs []StationRef, selector, network string) ([]StationTriplet, error) {
	out := make([]StationTriplet, 0, len(refs))
	if selector == SelectAll {
		for _, r := range refs {
			out = append(out, r.Triplet(network))
		}
		return out, nil
	}

	for _, r := range refs {
		if r.PublishID == selector {
			out = append(out, r.Triplet(network))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrLookupMiss, selector)
	}
	return out, nil
}
