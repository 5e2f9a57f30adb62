package model

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const unnamedIsolate = "Unnamed Isolate"

// clampUnit forces a weight or fraction into [0, 1]. NaN becomes 0.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// IsolateName returns the display name derived from the isolate source.
func IsolateName(sourceType, sourceName string) string {
	if sourceType == "" || strings.EqualFold(sourceType, "unknown") {
		return unnamedIsolate
	}
	return capitalize(sourceType) + " " + sourceName
}

// satAdd adds two non-negative counts, stopping at math.MaxInt instead of wrapping.
func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// depthProfile copies an align profile, replacing negative depths with 0.
// It returns the copy and its maximum.
func depthProfile(align []int) ([]int, int) {
	if align == nil {
		return nil, 0
	}

	profile := make([]int, len(align))
	maxDepth := 0
	for i, d := range align {
		if d < 0 {
			d = 0
		}
		profile[i] = d
		if d > maxDepth {
			maxDepth = d
		}
	}
	return profile, maxDepth
}

// aggregateIsolate rolls hit values up into the isolate. It also returns the
// isolate's deepest position and its summed genome length.
func aggregateIsolate(raw RawIsolate, totalMappedReads int) (EnrichedIsolate, int, int) {
	isolate := EnrichedIsolate{
		ID:         raw.ID,
		Default:    raw.Default,
		SourceType: raw.SourceType,
		SourceName: raw.SourceName,
		Name:       IsolateName(raw.SourceType, raw.SourceName),
		Hits:       make([]EnrichedHit, 0, len(raw.Hits)),
	}

	isolateDepth := 0
	genomeLength := 0

	for _, h := range raw.Hits {
		hit := EnrichedHit{RawHit: h}
		hit.Pi = clampUnit(h.Pi)
		hit.Best = clampUnit(h.Best)
		hit.Coverage = clampUnit(h.Coverage)

		var hitDepth int
		hit.Align, hitDepth = depthProfile(h.Align)
		hit.Reads = int(math.Round(hit.Pi * float64(totalMappedReads)))

		isolate.Pi += hit.Pi
		isolate.Best += hit.Best
		isolate.Reads = satAdd(isolate.Reads, hit.Reads)
		isolate.Coverage = max(isolate.Coverage, hit.Coverage)

		isolateDepth = max(isolateDepth, hitDepth)
		genomeLength += len(hit.Align)

		isolate.Hits = append(isolate.Hits, hit)
	}

	return isolate, isolateDepth, genomeLength
}

func aggregateOTU(raw RawOTU, totalMappedReads int) EnrichedOTU {
	otu := EnrichedOTU{
		ID:           raw.ID,
		Name:         raw.Name,
		Abbreviation: raw.Abbreviation,
		Version:      raw.Version,
		Isolates:     make([]EnrichedIsolate, 0, len(raw.Isolates)),
	}

	for _, rawIsolate := range raw.Isolates {
		isolate, depth, genomeLength := aggregateIsolate(rawIsolate, totalMappedReads)

		otu.MaxGenomeLength = max(otu.MaxGenomeLength, genomeLength)
		otu.MaxDepth = max(otu.MaxDepth, depth)

		otu.Pi += isolate.Pi
		otu.Best += isolate.Best
		otu.Reads = satAdd(otu.Reads, isolate.Reads)
		otu.Coverage = max(otu.Coverage, isolate.Coverage)

		otu.Isolates = append(otu.Isolates, isolate)
	}

	sort.SliceStable(otu.Isolates, func(i, j int) bool {
		return otu.Isolates[i].Coverage > otu.Isolates[j].Coverage
	})

	return otu
}

// Aggregate computes isolate and OTU level roll-ups for a Pathoscope
// diagnosis. OTU order is preserved and isolates are ordered by descending
// coverage. The input is never modified and the output shares no slices with it.
//
// Out of range pi, best and coverage values are clamped to [0, 1], negative
// depths count as 0. totalMappedReads is held to [0, MaxReadCount] and read
// sums saturate, so reads are never negative.
func Aggregate(otus []RawOTU, totalMappedReads int) []EnrichedOTU {
	totalMappedReads = min(max(totalMappedReads, 0), MaxReadCount)

	enriched := make([]EnrichedOTU, 0, len(otus))
	for _, otu := range otus {
		enriched = append(enriched, aggregateOTU(otu, totalMappedReads))
	}
	return enriched
}

// EnrichAnalysis aggregates the stored document's diagnosis and attaches summary totals.
func EnrichAnalysis(doc *AnalysisDocument) *EnrichedAnalysis {
	diagnosis := Aggregate(doc.Diagnosis, doc.ReadCount)

	mapped := 0
	for _, otu := range diagnosis {
		mapped = satAdd(mapped, otu.Reads)
	}

	fraction := 0.0
	if doc.ReadCount > 0 {
		fraction = float64(mapped) / float64(doc.ReadCount)
	}

	workflow := doc.Workflow
	if workflow == "" {
		workflow = DefaultWorkflow
	}

	return &EnrichedAnalysis{
		ID:              doc.ID,
		SampleName:      doc.SampleName,
		Workflow:        workflow,
		ReadCount:       doc.ReadCount,
		SubtractedCount: doc.SubtractedCount,
		CreatedAt:       doc.CreatedAt,
		OTUCount:        len(diagnosis),
		MappedReads:     mapped,
		MappedFraction:  fraction,
		Diagnosis:       diagnosis,
	}
}
