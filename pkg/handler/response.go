package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yumyai/otuview/logger"
	mydb "github.com/yumyai/otuview/pkg/db"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Error: message})
}

// writeStoreError maps storage errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mydb.ErrAnalysisNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, mydb.ErrAnalysisExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	logger.Error("Storage failure", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal storage error")
}
