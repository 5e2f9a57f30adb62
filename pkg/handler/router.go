package handler

import "net/http"

func NewRouter(dbctx *DBContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Pages
	mux.HandleFunc("GET /analyses/{analysis_id}", dbctx.AnalysisPage)

	// API routes
	mux.HandleFunc("GET /api/v1/health", HealthCheck)
	mux.HandleFunc("POST /api/v1/aggregate", AggregateHandler)
	mux.HandleFunc("POST /api/v1/analyses", dbctx.CreateAnalysisHandler)
	mux.HandleFunc("GET /api/v1/analyses", dbctx.ListAnalysesHandler)
	mux.HandleFunc("GET /api/v1/analyses/{analysis_id}", dbctx.GetAnalysisHandler)
	mux.HandleFunc("DELETE /api/v1/analyses/{analysis_id}", dbctx.DeleteAnalysisHandler)
	mux.HandleFunc("GET /api/v1/analyses/{analysis_id}/otus/{otu_id}/histogram", dbctx.OTUHistogramHandler)
	mux.HandleFunc("GET /api/v1/analyses/{analysis_id}/otus/{otu_id}/coverage", dbctx.OTUCoverageHandler)

	return mux
}
