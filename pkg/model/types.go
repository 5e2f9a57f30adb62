package model

import "time"

// RawHit is one sequence level alignment record reported by the mapping pipeline.
type RawHit struct {
	ID         string  `json:"id,omitempty"`
	Accession  string  `json:"accession"`
	Definition string  `json:"definition,omitempty"`
	Pi         float64 `json:"pi"`
	Best       float64 `json:"best"`
	Coverage   float64 `json:"coverage"`
	Align      []int   `json:"align"` // depth per genome position
}

type RawIsolate struct {
	ID         string   `json:"id,omitempty"`
	Default    bool     `json:"default,omitempty"`
	SourceType string   `json:"source_type,omitempty"`
	SourceName string   `json:"source_name,omitempty"`
	Hits       []RawHit `json:"hits"`
}

type RawOTU struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Abbreviation string       `json:"abbreviation,omitempty"`
	Version      int          `json:"version,omitempty"`
	Isolates     []RawIsolate `json:"isolates"`
}

type EnrichedHit struct {
	RawHit
	Reads int `json:"reads"`
}

type EnrichedIsolate struct {
	ID         string        `json:"id,omitempty"`
	Default    bool          `json:"default,omitempty"`
	SourceType string        `json:"source_type,omitempty"`
	SourceName string        `json:"source_name,omitempty"`
	Name       string        `json:"name"`
	Pi         float64       `json:"pi"`
	Best       float64       `json:"best"`
	Reads      int           `json:"reads"`
	Coverage   float64       `json:"coverage"`
	Hits       []EnrichedHit `json:"hits"`
}

type EnrichedOTU struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Abbreviation    string            `json:"abbreviation,omitempty"`
	Version         int               `json:"version,omitempty"`
	Pi              float64           `json:"pi"`
	Best            float64           `json:"best"`
	Reads           int               `json:"reads"`
	Coverage        float64           `json:"coverage"`
	MaxGenomeLength int               `json:"maxGenomeLength"`
	MaxDepth        int               `json:"maxDepth"`
	Isolates        []EnrichedIsolate `json:"isolates"`
}

// AnalysisDocument is the raw analysis result as uploaded by the pipeline.
type AnalysisDocument struct {
	ID              string    `json:"id,omitempty"`
	SampleName      string    `json:"sample_name"`
	Workflow        string    `json:"workflow,omitempty"`
	ReadCount       int       `json:"read_count"`
	SubtractedCount int       `json:"subtracted_count,omitempty"`
	Diagnosis       []RawOTU  `json:"diagnosis"`
	CreatedAt       time.Time `json:"created_at"`
}

// Short form used when listing stored analyses.
type AnalysisSummary struct {
	ID         string    `json:"id"`
	SampleName string    `json:"sample_name"`
	Workflow   string    `json:"workflow"`
	ReadCount  int       `json:"read_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type EnrichedAnalysis struct {
	ID              string        `json:"id"`
	SampleName      string        `json:"sample_name"`
	Workflow        string        `json:"workflow"`
	ReadCount       int           `json:"read_count"`
	SubtractedCount int           `json:"subtracted_count"`
	CreatedAt       time.Time     `json:"created_at"`
	OTUCount        int           `json:"otu_count"`
	MappedReads     int           `json:"mapped_reads"`
	MappedFraction  float64       `json:"mapped_fraction"`
	Diagnosis       []EnrichedOTU `json:"diagnosis"`
}

const DefaultWorkflow = "pathoscope"
