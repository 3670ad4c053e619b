package domain

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTriplets(n int) []StationTriplet {
	out := make([]StationTriplet, n)
	for i := range out {
		out[i] = StationTriplet{StationID: fmt.Sprint(1000 + i), StateCode: "WA", NetworkCode: DefaultNetwork}
	}
	return out
}

func TestBatch_ConcatReproducesInput(t *testing.T) {
	for _, n := range []int{1, 2, 94, 95, 96, 190, 331} {
		for _, limit := range []int{1, 3, 95, 500} {
			t.Run(fmt.Sprintf("n=%d/limit=%d", n, limit), func(t *testing.T) {
				stations := makeTriplets(n)

				batches, err := Batch(stations, limit)
				require.NoError(t, err)

				var concat []StationTriplet
				for _, b := range batches {
					assert.LessOrEqual(t, len(b), limit)
					assert.NotEmpty(t, b)
					concat = append(concat, b...)
				}
				if diff := cmp.Diff(stations, concat); diff != "" {
					t.Fatalf("concat mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestBatch_KeepsDuplicatesAndOrder(t *testing.T) {
	a := StationTriplet{StationID: "1", StateCode: "WA", NetworkCode: "SNTL"}
	b := StationTriplet{StationID: "2", StateCode: "OR", NetworkCode: "SNTL"}

	batches, err := Batch([]StationTriplet{b, a, b}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]StationTriplet{{b, a}, {b}}, batches)
}

func TestBatch_Empty(t *testing.T) {
	batches, err := Batch(nil, 95)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestBatch_InvalidLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := Batch(makeTriplets(3), limit)
		assert.ErrorIs(t, err, ErrInvalidLimit)
	}
}

func TestBatch_AppendDoesNotClobberNextBatch(t *testing.T) {
	batches, err := Batch(makeTriplets(4), 2)
	require.NoError(t, err)

	_ = append(batches[0], StationTriplet{StationID: "x"})
	assert.Equal(t, "1002", batches[1][0].StationID)
}
