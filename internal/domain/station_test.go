package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRefs = []StationRef{
	{StationID: "1107", StateCode: "WA", PublishID: "CLJW1"},
	{StationID: "651", StateCode: "OR", PublishID: "MTHO3"},
	{StationID: "515", StateCode: "WA", PublishID: "HRPW1"},
}

func TestParseTriplet(t *testing.T) {
	tr, err := ParseTriplet("1107:WA:SNTL")
	require.NoError(t, err)
	assert.Equal(t, cljw, tr)
	assert.Equal(t, "1107:WA:SNTL", tr.String())

	for _, bad := range []string{"", "1107:WA", "1107::SNTL", "a:b:c:d"} {
		_, err := ParseTriplet(bad)
		assert.Error(t, err, bad)
	}
}

func TestJoinTriplets(t *testing.T) {
	assert.Equal(t, "1107:WA:SNTL,651:OR:SNTL", JoinTriplets([]StationTriplet{cljw, mtho}))
	assert.Empty(t, JoinTriplets(nil))
}

func TestSelectStations_All(t *testing.T) {
	got, err := SelectStations(testRefs, SelectAll, DefaultNetwork)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, cljw, got[0])
	assert.Equal(t, "515:WA:SNTL", got[2].String())
}

func TestSelectStations_Single(t *testing.T) {
	got, err := SelectStations(testRefs, "MTHO3", DefaultNetwork)
	require.NoError(t, err)
	assert.Equal(t, []StationTriplet{mtho}, got)
}

func TestSelectStations_LookupMiss(t *testing.T) {
	_, err := SelectStations(testRefs, "NOPE1", DefaultNetwork)
	require.ErrorIs(t, err, ErrLookupMiss)
	assert.Contains(t, err.Error(), "NOPE1")
}

func TestDuration_SHEFCode(t *testing.T) {
	assert.Equal(t, "I", Hourly.SHEFCode())
	assert.Equal(t, "D", Daily.SHEFCode())
	assert.Equal(t, "D", Duration("SEMIMONTHLY").SHEFCode())
}
