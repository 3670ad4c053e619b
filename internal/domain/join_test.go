package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cljw = StationTriplet{StationID: "1107", StateCode: "WA", NetworkCode: "SNTL"}
	mtho = StationTriplet{StationID: "651", StateCode: "OR", NetworkCode: "SNTL"}
)

func ptr(v float64) *float64 { return &v }

func TestIndexMetadata_LastWins(t *testing.T) {
	idx := IndexMetadata([]StationMeta{
		{Triplet: cljw, UTCOffsetHours: -8, PublishID: "OLD"},
		{Triplet: mtho, UTCOffsetHours: -8, PublishID: "MTHO3"},
		{Triplet: cljw, UTCOffsetHours: -8, PublishID: "CLJW1"},
	})
	require.Len(t, idx, 2)
	assert.Equal(t, "CLJW1", idx[cljw].PublishID)
}

func TestJoin(t *testing.T) {
	local := time.Date(2024, time.November, 1, 5, 0, 0, 0, time.UTC)
	obs := []RawObservation{
		{Triplet: cljw, LocalTime: local, ElementCode: "WTEQ", Value: ptr(12.3)},
		{Triplet: StationTriplet{StationID: "9", StateCode: "ID", NetworkCode: "SNTL"}, LocalTime: local, ElementCode: "WTEQ", Value: ptr(1)},
		{Triplet: mtho, LocalTime: local, ElementCode: "TOBS", Value: ptr(28.4)},
		{Triplet: cljw, LocalTime: local, ElementCode: "SMS", Value: ptr(10)},
	}
	idx := IndexMetadata([]StationMeta{
		{Triplet: cljw, UTCOffsetHours: -8, PublishID: "CLJW1"},
		{Triplet: mtho, UTCOffsetHours: -7, PublishID: "MTHO3"},
	})

	records, dropped := Join(obs, idx)
	assert.Equal(t, 1, dropped)
	require.Len(t, records, 3)

	assert.Equal(t, NormalizedRecord{
		PublishID:       "CLJW1",
		UTCTime:         time.Date(2024, time.November, 1, 13, 0, 0, 0, time.UTC),
		PhysicalElement: "SW",
		Value:           ptr(12.3),
	}, records[0])
	assert.Equal(t, "MTHO3", records[1].PublishID)
	assert.Equal(t, "TA", records[1].PhysicalElement)
	assert.Equal(t, 12, records[1].UTCTime.Hour())

	// Unknown element codes survive the join with no physical element.
	assert.Equal(t, "CLJW1", records[2].PublishID)
	assert.Empty(t, records[2].PhysicalElement)
}

func TestJoin_DropsEmptyPublishID(t *testing.T) {
	obs := []RawObservation{{Triplet: cljw, LocalTime: time.Now(), ElementCode: "PREC", Value: ptr(1)}}
	records, dropped := Join(obs, IndexMetadata([]StationMeta{{Triplet: cljw}}))
	assert.Empty(t, records)
	assert.Equal(t, 1, dropped)
}

func TestPhysicalElement(t *testing.T) {
	cases := map[string]string{
		"PREC": "PC",
		"TOBS": "TA",
		"WTEQ": "SW",
		"SNWD": "SD",
		"wteq": "SW",
		"SMS":  "",
		"":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, PhysicalElement(in), in)
	}
}
