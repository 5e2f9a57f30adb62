package request

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/yumyai/otuview/pkg/model"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
	DefaultBuckets  = 10
	MaxBuckets      = 500
	DefaultBins     = 200
)

// Stateless aggregation, nothing is stored.
type AggregateRequest struct {
	ReadCount int            `json:"read_count"`
	Diagnosis []model.RawOTU `json:"diagnosis"`
}

// Paging for the analysis listing
type ListRequest struct {
	Page      int `json:"page"`      // Page number, starts at 1
	Page_Size int `json:"page_size"` // Number of analyses per page
}

func (l ListRequest) Offset() int {
	return (l.Page - 1) * l.Page_Size
}

// ParseListRequest reads page and page_size, falling back to defaults on bad input.
func ParseListRequest(q url.Values) ListRequest {
	req := ListRequest{Page: 1, Page_Size: DefaultPageSize}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		req.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil && size > 0 {
		req.Page_Size = min(size, MaxPageSize)
	}
	return req
}

// ParseFilterOptions reads the OTU filter query parameters. Errors are returned
// as messages so the handler can report all of them at once.
func ParseFilterOptions(q url.Values) (model.FilterOptions, []string) {
	var (
		opts   model.FilterOptions
		errMsg []string
	)

	if raw := q.Get("min_pi"); raw != "" {
		v, ok := parseThreshold(raw)
		if !ok {
			errMsg = append(errMsg, "Invalid min_pi value")
		}
		opts.MinPi = v
	}
	if raw := q.Get("min_coverage"); raw != "" {
		v, ok := parseThreshold(raw)
		if !ok {
			errMsg = append(errMsg, "Invalid min_coverage value")
		}
		opts.MinCoverage = v
	}

	opts.Find = strings.TrimSpace(q.Get("find"))
	opts.SortBy = model.ParseSortField(q.Get("sort_by"))

	return opts, errMsg
}

// parseThreshold accepts finite floats only.
func parseThreshold(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseBuckets reads the histogram bucket count.
func ParseBuckets(q url.Values) (int, bool) {
	raw := q.Get("buckets")
	if raw == "" {
		return DefaultBuckets, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > MaxBuckets {
		return 0, false
	}
	return n, true
}

// ParseBins reads the coverage plot resolution. 0 means full resolution.
func ParseBins(q url.Values) (int, bool) {
	raw := q.Get("bins")
	if raw == "" {
		return DefaultBins, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
