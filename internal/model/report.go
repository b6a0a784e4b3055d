package model

import "time"

// RunReport summarizes one corpus build
type RunReport struct {
	StartedAt   time.Time        `json:"started_at" yaml:"started_at"`
	Duration    time.Duration    `json:"duration" yaml:"duration"`
	Documents   []DocumentReport `json:"documents" yaml:"documents"`
	Splits      SplitReport      `json:"splits" yaml:"splits"`
	Outputs     []string         `json:"outputs" yaml:"outputs"` // Files written, in order
	CacheHits   int              `json:"cache_hits" yaml:"cache_hits"`
	Strict      bool             `json:"strict" yaml:"strict"`
	Diagnostics int              `json:"diagnostics" yaml:"diagnostics"` // Total diagnostics across documents
	Tokens      int              `json:"tokens" yaml:"tokens"`           // Total corpus tokens, markers included
}

// DocumentReport is the per-document part of a RunReport
type DocumentReport struct {
	ID          string       `json:"id" yaml:"id"`
	OutputPath  string       `json:"output_path" yaml:"output_path"`
	Split       string       `json:"split,omitempty" yaml:"split,omitempty"` // test, valid or train
	Stats       LineStats    `json:"stats" yaml:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Cached      bool         `json:"cached" yaml:"cached"`
}

// SplitReport records the episode counts of each split
type SplitReport struct {
	Episodes int `json:"episodes" yaml:"episodes"`
	Test     int `json:"test" yaml:"test"`
	Valid    int `json:"valid" yaml:"valid"`
	Train    int `json:"train" yaml:"train"`
}
