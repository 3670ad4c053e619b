package domain

// IndexMetadata keys station metadata by triplet. Later entries replace
// earlier ones for the same triplet.
func IndexMetadata(metas []StationMeta) map[StationTriplet]StationMeta {
	idx := make(map[StationTriplet]StationMeta, len(metas))
	for _, m := range metas {
		idx[m.Triplet] = m
	}
	return idx
}

// Join inner-joins observations with metadata on triplet, converting times
// to UTC and element codes to SHEF physical elements. Observations without
// metadata, or whose metadata lacks a publish id, are dropped and counted.
// Unknown element codes produce a record with an empty PhysicalElement.
func Join(observations []RawObservation, metadata map[StationTriplet]StationMeta) (records []NormalizedRecord, dropped int) {
	records = make([]NormalizedRecord, 0, len(observations))
	for _, obs := range observations {
		meta, ok := metadata[obs.Triplet]
		if !ok || meta.PublishID == "" {
			dropped++
			continue
		}
		records = append(records, NormalizedRecord{
			PublishID:       meta.PublishID,
			UTCTime:         ToUTC(obs.LocalTime, meta.UTCOffsetHours),
			PhysicalElement: PhysicalElement(obs.ElementCode),
			Value:           obs.Value,
		})
	}
	return records, dropped
}
