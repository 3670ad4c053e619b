package domain

import "time"

// RunSummary describes the outcome of one scrape-diff-publish run.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Outcome        string    `json:"outcome"`
	Stations       int       `json:"stations"`
	Records        int       `json:"records"`
	DeltaPath      string    `json:"delta_path,omitempty"`
	PublishedLines int       `json:"published_lines"`
	Error          string    `json:"error,omitempty"`
}
