package model

// Adapters that turn enriched results into chart geometry for the views.

type DepthPoint struct {
	Position int `json:"position"`
	Depth    int `json:"depth"`
}

type HistogramBucket struct {
	Min   int `json:"min"` // inclusive
	Max   int `json:"max"` // inclusive
	Count int `json:"count"`
}

const defaultHistogramBuckets = 10

// CoverageSeries reduces a hit's depth profile to at most bins points. Each
// point holds the window start and the deepest position within the window.
func CoverageSeries(hit EnrichedHit, bins int) []DepthPoint {
	n := len(hit.Align)
	if n == 0 {
		return []DepthPoint{}
	}

	if bins <= 0 || bins >= n {
		points := make([]DepthPoint, n)
		for i, d := range hit.Align {
			points[i] = DepthPoint{Position: i, Depth: d}
		}
		return points
	}

	points := make([]DepthPoint, 0, bins)
	for b := 0; b < bins; b++ {
		start := b * n / bins
		end := (b + 1) * n / bins
		if end <= start {
			continue
		}

		depth := 0
		for _, d := range hit.Align[start:end] {
			depth = max(depth, d)
		}
		points = append(points, DepthPoint{Position: start, Depth: depth})
	}

	return points
}

// DepthHistogram counts every position of every hit in the OTU into equal
// width depth buckets spanning [0, otu.MaxDepth].
func DepthHistogram(otu EnrichedOTU, buckets int) []HistogramBucket {
	if buckets <= 0 {
		buckets = defaultHistogramBuckets
	}

	top := otu.MaxDepth
	if top <= 0 {
		result := []HistogramBucket{{Min: 0, Max: 0}}
		for _, isolate := range otu.Isolates {
			for _, hit := range isolate.Hits {
				result[0].Count += len(hit.Align)
			}
		}
		return result
	}

	// No bucket narrower than a single depth value.
	if buckets > top+1 {
		buckets = top + 1
	}

	// Bucket i holds the depths d where d*buckets/(top+1) == i.
	lower := func(i int) int {
		return (i*(top+1) + buckets - 1) / buckets
	}
	result := make([]HistogramBucket, buckets)
	for i := range result {
		result[i].Min = lower(i)
		result[i].Max = lower(i+1) - 1
	}

	for _, isolate := range otu.Isolates {
		for _, hit := range isolate.Hits {
			for _, d := range hit.Align {
				d = min(max(d, 0), top)
				result[d*buckets/(top+1)].Count++
			}
		}
	}

	return result
}
