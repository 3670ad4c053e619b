// Package stations loads the on-disk SNOTEL station reference table.
package stations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// Required reference table columns. Other columns are ignored.
const (
	colStationID = "StationId"
	colStateCode = "StateCode"
	colPublishID = "ShefId"
)

var validate = validator.New()

// LoadReferenceTable reads the station table at path on fs.
func LoadReferenceTable(fs afero.Fs, path string) ([]domain.StationRef, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()

	refs, err := ParseReferenceTable(f)
	if err != nil {
		return nil, fmt.Errorf("station table %s: %w", path, err)
	}
	return refs, nil
}

// ParseReferenceTable reads a CSV station table with a header row.
func ParseReferenceTable(r io.Reader) ([]domain.StationRef, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty station table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header, colStationID, colStateCode, colPublishID)
	if err != nil {
		return nil, err
	}

	var refs []domain.StationRef
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if blankRow(rec) {
			continue
		}

		ref := domain.StationRef{
			StationID: field(rec, idx[colStationID]),
			StateCode: field(rec, idx[colStateCode]),
			PublishID: field(rec, idx[colPublishID]),
		}
		if err := validate.Struct(ref); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	out := make(map[string]int, len(names))
	for _, n := range names {
		i, ok := idx[n]
		if !ok {
			return nil, fmt.Errorf("missing column %q", n)
		}
		out[n] = i
	}
	return out, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
