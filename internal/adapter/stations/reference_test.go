package stations

import (
	"strings"
	"testing"

	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTable = `StationName,StationId,StateCode,ShefId,Elevation
Colockum Pass,1107,WA,CLJW1,5350
Mt Hood Test Site,651,OR,MTHO3,5370

Harts Pass,515,WA,HRPW1,6490
`

func TestParseReferenceTable(t *testing.T) {
	refs, err := ParseReferenceTable(strings.NewReader(testTable))
	require.NoError(t, err)

	assert.Equal(t, []domain.StationRef{
		{StationID: "1107", StateCode: "WA", PublishID: "CLJW1"},
		{StationID: "651", StateCode: "OR", PublishID: "MTHO3"},
		{StationID: "515", StateCode: "WA", PublishID: "HRPW1"},
	}, refs)
}

func TestParseReferenceTable_BOMHeader(t *testing.T) {
	refs, err := ParseReferenceTable(strings.NewReader("\ufeffStationId,StateCode,ShefId\n1107,WA,CLJW1\n"))
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestParseReferenceTable_MissingColumn(t *testing.T) {
	_, err := ParseReferenceTable(strings.NewReader("StationId,StateCode\n1107,WA\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ShefId")
}

func TestParseReferenceTable_IncompleteRow(t *testing.T) {
	_, err := ParseReferenceTable(strings.NewReader("StationId,StateCode,ShefId\n1107,,CLJW1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "StateCode")
}

func TestParseReferenceTable_Empty(t *testing.T) {
	_, err := ParseReferenceTable(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadReferenceTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/meta/SNOTEL_metadata.csv", []byte(testTable), 0o644))

	refs, err := LoadReferenceTable(fs, "/meta/SNOTEL_metadata.csv")
	require.NoError(t, err)
	assert.Len(t, refs, 3)

	_, err = LoadReferenceTable(fs, "/meta/missing.csv")
	assert.Error(t, err)
}
