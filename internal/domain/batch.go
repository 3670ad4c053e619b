package domain

// Batch splits stations into consecutive groups of at most limit entries.
// Concatenating the groups reproduces the input exactly.
func Batch(stations []StationTriplet, limit int) ([][]StationTriplet, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	batches := make([][]StationTriplet, 0, (len(stations)+limit-1)/limit)
	for start := 0; start < len(stations); start += limit {
		end := min(start+limit, len(stations))
		batches = append(batches, stations[start:end:end])
	}
	return batches, nil
}
