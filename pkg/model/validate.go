package model

import (
	"errors"
	"fmt"
	"math"
)

// MaxReadCount is the largest read_count accepted. Above 2^53 a float64 can
// no longer represent every integer, so pi*read_count stops being exact.
const MaxReadCount = 1 << 53

var (
	ErrNegativeReadCount = errors.New("read_count must not be negative")
	ErrReadCountTooLarge = errors.New("read_count is too large")
	ErrMissingOTUID      = errors.New("otu is missing an id")
	ErrDuplicateOTUID    = errors.New("duplicate otu id")
	ErrMissingAccession  = errors.New("hit is missing an accession")
)

// ValidateDocument rejects documents that cannot be aggregated meaningfully.
// Range problems are left to the aggregator, which clamps them.
func ValidateDocument(doc *AnalysisDocument) error {
	if doc.ReadCount < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeReadCount, doc.ReadCount)
	}
	if doc.ReadCount > MaxReadCount {
		return fmt.Errorf("%w: got %d, max %d", ErrReadCountTooLarge, doc.ReadCount, MaxReadCount)
	}

	seen := make(map[string]int, len(doc.Diagnosis))
	for i, otu := range doc.Diagnosis {
		if otu.ID == "" {
			return fmt.Errorf("%w: diagnosis[%d]", ErrMissingOTUID, i)
		}
		if first, ok := seen[otu.ID]; ok {
			return fmt.Errorf("%w: %s at diagnosis[%d] and diagnosis[%d]", ErrDuplicateOTUID, otu.ID, first, i)
		}
		seen[otu.ID] = i
		for j, isolate := range otu.Isolates {
			for k, hit := range isolate.Hits {
				if hit.Accession == "" {
					return fmt.Errorf("%w: otu %s isolate[%d] hit[%d]", ErrMissingAccession, otu.ID, j, k)
				}
			}
		}
	}

	return nil
}

func outOfUnit(v float64) bool {
	return math.IsNaN(v) || v < 0 || v > 1
}

// Clamped counts the values that Aggregate will clamp or zero for this document.
func Clamped(doc *AnalysisDocument) int {
	n := 0
	for _, otu := range doc.Diagnosis {
		for _, isolate := range otu.Isolates {
			for _, hit := range isolate.Hits {
				for _, v := range []float64{hit.Pi, hit.Best, hit.Coverage} {
					if outOfUnit(v) {
						n++
					}
				}
				for _, d := range hit.Align {
					if d < 0 {
						n++
					}
				}
			}
		}
	}
	return n
}
