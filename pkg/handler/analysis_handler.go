package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yumyai/otuview/logger"
	"github.com/yumyai/otuview/pkg/handler/request"
	"github.com/yumyai/otuview/pkg/model"
	"github.com/yumyai/otuview/pkg/render"
	"go.uber.org/zap"
)

// Request bodies larger than this are refused.
const maxDocumentBytes = 64 << 20

type CreatedResponse struct {
	ID string `json:"id"`
}

type ListResponse struct {
	Page      int                     `json:"page"`
	Page_Size int                     `json:"page_size"`
	Analyses  []model.AnalysisSummary `json:"analyses"`
}

type HistogramResponse struct {
	OTUID    string                  `json:"otu_id"`
	MaxDepth int                     `json:"max_depth"`
	Buckets  []model.HistogramBucket `json:"buckets"`
}

func (dbctx *DBContext) CreateAnalysisHandler(w http.ResponseWriter, r *http.Request) {

	var doc model.AnalysisDocument

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		logger.Debug("Rejecting analysis body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := model.ValidateDocument(&doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if n := model.Clamped(&doc); n > 0 {
		logger.Warn("Analysis has out of range values, they will be clamped",
			zap.String("sample", doc.SampleName), zap.Int("values", n))
	}

	id, err := dbctx.Analyses.Insert(r.Context(), &doc)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logger.Info("Stored analysis", zap.String("id", id), zap.Int("otus", len(doc.Diagnosis)))
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
}

func (dbctx *DBContext) ListAnalysesHandler(w http.ResponseWriter, r *http.Request) {

	req := request.ParseListRequest(r.URL.Query())

	summaries, err := dbctx.Analyses.List(r.Context(), req.Page_Size, req.Offset())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Page:      req.Page,
		Page_Size: req.Page_Size,
		Analyses:  summaries,
	})
}

// loadEnriched fetches a stored analysis and runs the aggregation on it.
func (dbctx *DBContext) loadEnriched(w http.ResponseWriter, r *http.Request) (*model.EnrichedAnalysis, bool) {
	analysis_id := r.PathValue("analysis_id")

	doc, err := dbctx.Analyses.Get(r.Context(), analysis_id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}

	return model.EnrichAnalysis(doc), true
}

func (dbctx *DBContext) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {

	opts, errorMessages := request.ParseFilterOptions(r.URL.Query())
	if len(errorMessages) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(errorMessages, "; "))
		return
	}

	enriched, ok := dbctx.loadEnriched(w, r)
	if !ok {
		return
	}

	enriched.Diagnosis = model.FilterOTUs(enriched.Diagnosis, opts)
	writeJSON(w, http.StatusOK, enriched)
}

func (dbctx *DBContext) DeleteAnalysisHandler(w http.ResponseWriter, r *http.Request) {

	analysis_id := r.PathValue("analysis_id")

	if err := dbctx.Analyses.Delete(r.Context(), analysis_id); err != nil {
		writeStoreError(w, err)
		return
	}

	logger.Info("Deleted analysis", zap.String("id", analysis_id))
	w.WriteHeader(http.StatusNoContent)
}

func (dbctx *DBContext) OTUHistogramHandler(w http.ResponseWriter, r *http.Request) {

	buckets, ok := request.ParseBuckets(r.URL.Query())
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid buckets value")
		return
	}

	enriched, ok := dbctx.loadEnriched(w, r)
	if !ok {
		return
	}

	otu_id := r.PathValue("otu_id")
	otu, found := model.FindOTU(enriched.Diagnosis, otu_id)
	if !found {
		writeError(w, http.StatusNotFound, "otu not found in analysis: "+otu_id)
		return
	}

	writeJSON(w, http.StatusOK, HistogramResponse{
		OTUID:    otu.ID,
		MaxDepth: otu.MaxDepth,
		Buckets:  model.DepthHistogram(otu, buckets),
	})
}

type HitCoverage struct {
	IsolateID string             `json:"isolate_id,omitempty"`
	Isolate   string             `json:"isolate"`
	Accession string             `json:"accession"`
	Length    int                `json:"length"`
	Points    []model.DepthPoint `json:"points"`
}

// OTUCoverageHandler returns a downsampled depth series for every hit of an OTU.
func (dbctx *DBContext) OTUCoverageHandler(w http.ResponseWriter, r *http.Request) {

	bins, ok := request.ParseBins(r.URL.Query())
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid bins value")
		return
	}

	enriched, ok := dbctx.loadEnriched(w, r)
	if !ok {
		return
	}

	otu_id := r.PathValue("otu_id")
	otu, found := model.FindOTU(enriched.Diagnosis, otu_id)
	if !found {
		writeError(w, http.StatusNotFound, "otu not found in analysis: "+otu_id)
		return
	}

	series := make([]HitCoverage, 0)
	for _, isolate := range otu.Isolates {
		for _, hit := range isolate.Hits {
			series = append(series, HitCoverage{
				IsolateID: isolate.ID,
				Isolate:   isolate.Name,
				Accession: hit.Accession,
				Length:    len(hit.Align),
				Points:    model.CoverageSeries(hit, bins),
			})
		}
	}

	writeJSON(w, http.StatusOK, series)
}

// AnalysisPage renders the enriched analysis as HTML.
func (dbctx *DBContext) AnalysisPage(w http.ResponseWriter, r *http.Request) {

	opts, errorMessages := request.ParseFilterOptions(r.URL.Query())
	if len(errorMessages) > 0 {
		writeError(w, http.StatusBadRequest, strings.Join(errorMessages, "; "))
		return
	}

	enriched, ok := dbctx.loadEnriched(w, r)
	if !ok {
		return
	}
	enriched.Diagnosis = model.FilterOTUs(enriched.Diagnosis, opts)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderAnalysisPage(w, enriched); err != nil {
		logger.Error("Failed to render analysis page", zap.String("id", enriched.ID), zap.Error(err))
	}
}

// AggregateHandler runs the aggregation on a posted diagnosis without storing it.
func AggregateHandler(w http.ResponseWriter, r *http.Request) {

	var req request.AggregateRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc := model.AnalysisDocument{ReadCount: req.ReadCount, Diagnosis: req.Diagnosis}
	if err := model.ValidateDocument(&doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.Aggregate(req.Diagnosis, req.ReadCount))
}
