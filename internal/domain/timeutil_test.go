package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToUTC(t *testing.T) {
	local := time.Date(2024, time.November, 1, 5, 0, 0, 0, time.UTC)

	for _, offset := range []int{-12, 0, 5, 14} {
		got := ToUTC(local, offset)
		assert.Equal(t, local.Add(-time.Duration(offset)*time.Hour), got, "offset %d", offset)
		assert.Equal(t, local, got.Add(time.Duration(offset)*time.Hour), "inverse for offset %d", offset)
		assert.Equal(t, time.UTC, got.Location())
	}
}

func TestToUTC_PacificStandardTime(t *testing.T) {
	local := time.Date(2024, time.November, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.November, 1, 13, 0, 0, 0, time.UTC), ToUTC(local, -8))
}

func TestToUTC_CrossesDayBoundary(t *testing.T) {
	local := time.Date(2024, time.December, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.January, 1, 4, 0, 0, 0, time.UTC), ToUTC(local, -8))
}

func TestToUTC_IgnoresSourceLocation(t *testing.T) {
	// Wall clock is what counts; the location attached by a parser is ignored.
	loc := time.FixedZone("X", 3*3600)
	local := time.Date(2024, time.November, 1, 5, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.November, 1, 13, 0, 0, 0, time.UTC), ToUTC(local, -8))
}
