// Handler for miscellaneous endpoints such as health check

package handler

import (
	"net/http"
	"time"
)

// Set from main at startup.
var Version = "dev"

type HealthResponse struct {
	Health    string    `json:"health"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {

	writeJSON(w, http.StatusOK, HealthResponse{
		Health:    "ok",
		Version:   Version,
		Timestamp: time.Now(),
	})
}
