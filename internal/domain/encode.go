package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format selects the output encoding.
type Format string

const (
	FormatSHEF Format = "shef"
	FormatCSV  Format = "csv"
)

// CSVColumns is the CSV header row, in column order.
var CSVColumns = []string{"shefId", "utcTime", "PE", "value", "duration"}

const (
	shefDateLayout = "20060102"
	shefTimeLayout = "1504"
	csvTimeLayout  = "2006-01-02 15:04:05"
	headerLayout   = "021504"
)

// EncoderOptions carries the fixed strings embedded in encoded output.
type EncoderOptions struct {
	ProductID  string
	SourceCode string
	Duration   Duration
}

// Encoder renders normalized records as SHEF bulletin lines or CSV rows.
type Encoder struct {
	format Format
	opts   EncoderOptions
}

// NewEncoder returns an encoder for format, or ErrUnsupportedFormat.
func NewEncoder(format Format, opts EncoderOptions) (*Encoder, error) {
	switch format {
	case FormatSHEF, FormatCSV:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &Encoder{format: format, opts: opts}, nil
}

// Format reports the encoder's output format.
func (e *Encoder) Format() Format { return e.format }

// Extension is the file extension used for snapshots in this format.
func (e *Encoder) Extension() string { return string(e.format) }

// HeaderLines is the fixed number of header lines preceding the body.
func (e *Encoder) HeaderLines() int {
	if e.format == FormatSHEF {
		return 2
	}
	return 1
}

// Header returns the header lines for a file produced at now.
func (e *Encoder) Header(now time.Time) []string {
	if e.format == FormatCSV {
		return []string{strings.Join(CSVColumns, ",")}
	}
	return []string{
		"TTAA00 KPTR " + now.UTC().Format(headerLayout),
		e.opts.ProductID,
	}
}

// Encode renders records in order. Records missing a required field are
// skipped and counted rather than rendered as malformed lines.
func (e *Encoder) Encode(records []NormalizedRecord) (lines []string, skipped int) {
	lines = make([]string, 0, len(records))
	for _, r := range records {
		line, ok := e.EncodeRecord(r)
		if !ok {
			skipped++
			continue
		}
		lines = append(lines, line)
	}
	return lines, skipped
}

// EncodeRecord renders a single record. It returns false when the record
// lacks a publish id, physical element, time or value.
func (e *Encoder) EncodeRecord(r NormalizedRecord) (string, bool) {
	if r.PublishID == "" || r.PhysicalElement == "" || r.UTCTime.IsZero() || r.Value == nil {
		return "", false
	}
	t := r.UTCTime.UTC()
	value := FormatValue(*r.Value)

	if e.format == FormatCSV {
		return strings.Join([]string{
			r.PublishID,
			t.Format(csvTimeLayout),
			r.PhysicalElement,
			value,
			string(e.opts.Duration),
		}, ","), true
	}

	return ".AR " + r.PublishID + " " + t.Format(shefDateLayout) +
		" Z DH" + t.Format(shefTimeLayout) +
		"/DUE /" + r.PhysicalElement + e.opts.Duration.SHEFCode() + e.opts.SourceCode +
		"ZZ " + value, true
}

// FormatValue renders a reading in its shortest round-trip decimal form.
// Integral values keep one decimal place ("5.0") so a float column prints
// the same way whether or not a reading happens to be whole.
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
