// Package store keeps a history of randomization runs.
package store

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

// DB represents the run history interface
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	SaveTables(runID string, tables []TableRecord) error
	SaveRecord(run *Run, tables []TableRecord) error
	GetRun(id string) (*Run, error)
	GetTables(runID string) ([]TableRecord, error)
	ListRuns(query RunsQuery) (*RunsList, error)
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	Generation string `json:"generation,omitempty"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
}

// RunsList represents paginated runs response
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}

// Run is one recorded randomization.
type Run struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Generation       string    `json:"generation" db:"generation"`
	SeedInput        string    `json:"seed_input" db:"seed_input"` // as typed; empty when generated
	Seed             string    `json:"seed" db:"seed"`             // normalized decimal value
	AllowLegendaries bool      `json:"allow_legendaries" db:"allow_legendaries"`
	RandomizeWild    bool      `json:"randomize_wild" db:"randomize_wild"`
	TableCount       int       `json:"table_count" db:"table_count"`
	SlotsRandomized  int       `json:"slots_randomized" db:"slots_randomized"`
	InputSHA256      string    `json:"input_sha256" db:"input_sha256"`
	OutputSHA256     string    `json:"output_sha256" db:"output_sha256"`
	EngineVersion    string    `json:"engine_version" db:"engine_version"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// TableRecord is the species assignment written to one table.
type TableRecord struct {
	RunID    string `json:"run_id" db:"run_id"`
	Index    int    `json:"index" db:"table_index"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
	Offset   int    `json:"offset" db:"byte_offset"`
	Species  []int  `json:"species" db:"species"`
}
