package models

import "time"

// IngestRun records one aggregation of a dataset over a year range
type IngestRun struct {
	ID        int       `json:"id"`
	RunID     string    `json:"run_id"`
	Dataset   Dataset   `json:"dataset"`
	FirstYear int       `json:"first_year"`
	LastYear  int       `json:"last_year"`
	Rows      int       `json:"rows"`
	Output    string    `json:"output"`
	CreatedAt time.Time `json:"created_at"`
}
