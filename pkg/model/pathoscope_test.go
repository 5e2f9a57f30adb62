package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleOTUs() []RawOTU {
	return []RawOTU{
		{
			ID:   "otu_1",
			Name: "Prunus necrotic ringspot virus",
			Isolates: []RawIsolate{
				{
					ID:         "iso_1",
					SourceType: "isolate",
					SourceName: "Q47",
					Hits: []RawHit{
						{Accession: "A", Pi: 0.6, Best: 0.5, Coverage: 0.8, Align: []int{0, 5, 10, 5, 0}},
						{Accession: "B", Pi: 0.1, Best: 0.05, Coverage: 0.3, Align: []int{0, 2, 0}},
					},
				},
			},
		},
	}
}

func multiIsolateOTUs() []RawOTU {
	return []RawOTU{
		{
			ID:   "otu_a",
			Name: "Tobacco mosaic virus",
			Isolates: []RawIsolate{
				{ID: "low", SourceType: "strain", SourceName: "L", Hits: []RawHit{
					{Accession: "L1", Pi: 0.05, Best: 0.01, Coverage: 0.2, Align: []int{1, 1, 1, 1}},
				}},
				{ID: "high", SourceType: "Unknown", Hits: []RawHit{
					{Accession: "H1", Pi: 0.2, Best: 0.1, Coverage: 0.9, Align: []int{3, 7}},
					{Accession: "H2", Pi: 0.02, Best: 0.01, Coverage: 0.4, Align: []int{2, 2, 2, 2, 2, 2}},
				}},
				{ID: "tie", SourceType: "isolate", SourceName: "T", Hits: []RawHit{
					{Accession: "T1", Pi: 0.01, Best: 0, Coverage: 0.2, Align: []int{}},
				}},
			},
		},
		{
			ID:       "otu_b",
			Name:     "Empty virus",
			Isolates: nil,
		},
		{
			ID:   "otu_c",
			Name: "Hitless virus",
			Isolates: []RawIsolate{
				{ID: "none", SourceType: "isolate", SourceName: "N"},
			},
		},
	}
}

func TestAggregateExampleScenario(t *testing.T) {
	result := Aggregate(exampleOTUs(), 1000)
	require.Len(t, result, 1)

	otu := result[0]
	require.Len(t, otu.Isolates, 1)
	isolate := otu.Isolates[0]

	assert.Equal(t, "Isolate Q47", isolate.Name)
	assert.InDelta(t, 0.7, isolate.Pi, 1e-9)
	assert.InDelta(t, 0.55, isolate.Best, 1e-9)
	assert.Equal(t, 700, isolate.Reads)
	assert.Equal(t, 0.8, isolate.Coverage)
	assert.Equal(t, 600, isolate.Hits[0].Reads)
	assert.Equal(t, 100, isolate.Hits[1].Reads)

	assert.InDelta(t, 0.7, otu.Pi, 1e-9)
	assert.InDelta(t, 0.55, otu.Best, 1e-9)
	assert.Equal(t, 700, otu.Reads)
	assert.Equal(t, 0.8, otu.Coverage)
	assert.Equal(t, 8, otu.MaxGenomeLength)
	assert.Equal(t, 10, otu.MaxDepth)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, 100))
	assert.Empty(t, Aggregate([]RawOTU{}, 100))
}

func TestAggregatePreservesOTUOrder(t *testing.T) {
	result := Aggregate(multiIsolateOTUs(), 500)
	require.Len(t, result, 3)

	assert.Equal(t, "otu_a", result[0].ID)
	assert.Equal(t, "otu_b", result[1].ID)
	assert.Equal(t, "otu_c", result[2].ID)
}

func TestAggregateIsolateOrder(t *testing.T) {
	result := Aggregate(multiIsolateOTUs(), 500)
	isolates := result[0].Isolates
	require.Len(t, isolates, 3)

	// "low" and "tie" share coverage and keep their input order.
	assert.Equal(t, []string{"high", "low", "tie"},
		[]string{isolates[0].ID, isolates[1].ID, isolates[2].ID})

	for _, otu := range result {
		for i := 0; i+1 < len(otu.Isolates); i++ {
			assert.GreaterOrEqual(t, otu.Isolates[i].Coverage, otu.Isolates[i+1].Coverage)
		}
	}
}

func TestAggregateInvariants(t *testing.T) {
	raw := multiIsolateOTUs()
	total := 12345
	result := Aggregate(raw, total)

	for i, otu := range result {
		reads := 0
		coverage := 0.0
		depth := 0
		for _, isolate := range otu.Isolates {
			reads += isolate.Reads

			isolateReads := 0
			isolateCoverage := 0.0
			for _, hit := range isolate.Hits {
				isolateReads += int(math.Round(hit.Pi * float64(total)))
				isolateCoverage = math.Max(isolateCoverage, hit.Coverage)
				for _, d := range hit.Align {
					depth = max(depth, d)
				}
			}
			assert.Equal(t, isolateReads, isolate.Reads)
			assert.Equal(t, isolateCoverage, isolate.Coverage)
			coverage = math.Max(coverage, isolate.Coverage)
		}

		assert.Equal(t, reads, otu.Reads, "otu %d reads", i)
		assert.Equal(t, coverage, otu.Coverage, "otu %d coverage", i)
		assert.Equal(t, depth, otu.MaxDepth, "otu %d depth", i)
	}

	// Empty OTUs and hitless isolates aggregate to zero.
	assert.Zero(t, result[1].Pi)
	assert.Zero(t, result[1].MaxDepth)
	assert.Zero(t, result[1].MaxGenomeLength)
	assert.Zero(t, result[2].Reads)
	assert.Zero(t, result[2].Coverage)
	assert.Equal(t, "Isolate N", result[2].Isolates[0].Name)
}

func TestAggregateGenomeLength(t *testing.T) {
	result := Aggregate(multiIsolateOTUs(), 10)

	// "high" has align lengths 2 + 6.
	assert.Equal(t, 8, result[0].MaxGenomeLength)
	assert.Equal(t, 7, result[0].MaxDepth)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	raw := multiIsolateOTUs()
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	first := Aggregate(raw, 900)
	second := Aggregate(raw, 900)

	after, err := json.Marshal(raw)
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, first, second)

	// Output must not alias input align slices.
	first[0].Isolates[0].Hits[0].Align[0] = 999
	assert.NotEqual(t, 999, raw[0].Isolates[1].Hits[0].Align[0])
	assert.NotEqual(t, 999, second[0].Isolates[0].Hits[0].Align[0])
}

func TestAggregateClampsOutOfRange(t *testing.T) {
	raw := []RawOTU{{
		ID: "otu",
		Isolates: []RawIsolate{{
			SourceType: "isolate",
			SourceName: "X",
			Hits: []RawHit{
				{Accession: "A", Pi: -0.5, Best: 1.5, Coverage: math.NaN(), Align: []int{-3, 4}},
				{Accession: "B", Pi: 2, Best: 0.2, Coverage: 1.2, Align: nil},
			},
		}},
	}}

	result := Aggregate(raw, 100)
	isolate := result[0].Isolates[0]

	assert.Equal(t, 0.0, isolate.Hits[0].Pi)
	assert.Equal(t, 1.0, isolate.Hits[0].Best)
	assert.Equal(t, 0.0, isolate.Hits[0].Coverage)
	assert.Equal(t, []int{0, 4}, isolate.Hits[0].Align)
	assert.Equal(t, 1.0, isolate.Hits[1].Pi)
	assert.Equal(t, 100, isolate.Reads)
	assert.Equal(t, 1.0, isolate.Coverage)
	assert.Equal(t, 4, result[0].MaxDepth)
	assert.Equal(t, 2, result[0].MaxGenomeLength)

	// Original values are untouched.
	assert.Equal(t, -0.5, raw[0].Isolates[0].Hits[0].Pi)
	assert.Equal(t, -3, raw[0].Isolates[0].Hits[0].Align[0])
}

func TestAggregateNegativeReadCount(t *testing.T) {
	result := Aggregate(exampleOTUs(), -50)
	assert.Equal(t, 0, result[0].Reads)
}

func TestAggregateHugeReadCount(t *testing.T) {
	otus := []RawOTU{{
		ID: "otu",
		Isolates: []RawIsolate{
			{Hits: []RawHit{{Accession: "A", Pi: 1}, {Accession: "B", Pi: 1}}},
			{Hits: []RawHit{{Accession: "C", Pi: 1}}},
		},
	}}

	result := Aggregate(otus, math.MaxInt64)
	require.Len(t, result, 1)

	for _, isolate := range result[0].Isolates {
		for _, hit := range isolate.Hits {
			assert.Equal(t, MaxReadCount, hit.Reads)
		}
		assert.Positive(t, isolate.Reads)
	}
	assert.Equal(t, 3*MaxReadCount, result[0].Reads)
}

func TestSatAdd(t *testing.T) {
	assert.Equal(t, 5, satAdd(2, 3))
	assert.Equal(t, math.MaxInt, satAdd(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt, satAdd(math.MaxInt-1, math.MaxInt-1))
}

func TestIsolateName(t *testing.T) {
	tests := []struct {
		sourceType string
		sourceName string
		want       string
	}{
		{"unknown", "X", "Unnamed Isolate"},
		{"UNKNOWN", "", "Unnamed Isolate"},
		{"Unknown", "Y", "Unnamed Isolate"},
		{"", "Z", "Unnamed Isolate"},
		{"isolate", "X", "Isolate X"},
		{"ISOLATE", "X", "Isolate X"},
		{"strain", "ATCC 200", "Strain ATCC 200"},
	}

	for _, tt := range tests {
		t.Run(tt.sourceType+"/"+tt.sourceName, func(t *testing.T) {
			assert.Equal(t, tt.want, IsolateName(tt.sourceType, tt.sourceName))
		})
	}
}

func TestEnrichAnalysis(t *testing.T) {
	doc := &AnalysisDocument{
		ID:         "abc",
		SampleName: "Sample 1",
		ReadCount:  1000,
		Diagnosis:  exampleOTUs(),
	}

	enriched := EnrichAnalysis(doc)

	assert.Equal(t, DefaultWorkflow, enriched.Workflow)
	assert.Equal(t, 1, enriched.OTUCount)
	assert.Equal(t, 700, enriched.MappedReads)
	assert.InDelta(t, 0.7, enriched.MappedFraction, 1e-9)

	empty := EnrichAnalysis(&AnalysisDocument{ID: "e"})
	assert.Zero(t, empty.MappedFraction)
	assert.Empty(t, empty.Diagnosis)
}
