package model

import (
	"sort"
	"strings"
)

type SortField int

const (
	SortByPi SortField = iota
	SortByCoverage
	SortByDepth
	SortByName
)

func (s SortField) String() string {
	switch s {
	case SortByPi:
		return "pi"
	case SortByCoverage:
		return "coverage"
	case SortByDepth:
		return "depth"
	case SortByName:
		return "name"
	default:
		return "pi"
	}
}

func ParseSortField(field string) SortField {
	switch field {
	case "coverage":
		return SortByCoverage
	case "depth":
		return SortByDepth
	case "name":
		return SortByName
	default:
		return SortByPi // default to pi
	}
}

type FilterOptions struct {
	MinPi       float64
	MinCoverage float64
	Find        string
	SortBy      SortField
}

// FilterOTUs keeps OTUs passing the thresholds and orders them by opts.SortBy.
// Numeric keys sort descending, names ascending. The input slice is left untouched.
func FilterOTUs(otus []EnrichedOTU, opts FilterOptions) []EnrichedOTU {
	find := strings.ToLower(strings.TrimSpace(opts.Find))

	kept := make([]EnrichedOTU, 0, len(otus))
	for _, otu := range otus {
		if otu.Pi < opts.MinPi || otu.Coverage < opts.MinCoverage {
			continue
		}
		if find != "" &&
			!strings.Contains(strings.ToLower(otu.Name), find) &&
			!strings.Contains(strings.ToLower(otu.Abbreviation), find) {
			continue
		}
		kept = append(kept, otu)
	}

	var less func(a, b *EnrichedOTU) bool
	switch opts.SortBy {
	case SortByCoverage:
		less = func(a, b *EnrichedOTU) bool { return a.Coverage > b.Coverage }
	case SortByDepth:
		less = func(a, b *EnrichedOTU) bool { return a.MaxDepth > b.MaxDepth }
	case SortByName:
		less = func(a, b *EnrichedOTU) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b *EnrichedOTU) bool { return a.Pi > b.Pi }
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return less(&kept[i], &kept[j])
	})

	return kept
}

// FindOTU returns the enriched OTU with the given id.
func FindOTU(otus []EnrichedOTU, id string) (EnrichedOTU, bool) {
	for _, otu := range otus {
		if otu.ID == id {
			return otu, true
		}
	}
	return EnrichedOTU{}, false
}
