package server

import (
	"net/http"
	"time"

	"hello-eks/internal/logging"
	"hello-eks/internal/telemetry"
)

// Greeting is the body served on GET /
const Greeting = "Hello, World! Application deployed to EKS through CI/CD pipeline 🚀"

const readHeaderTimeout = 10 * time.Second

// handleRoot serves the greeting
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())
	telemetry.AnnotateRequest(r.Context(), requestID)
	logging.Debug("GET / request_id=%s", requestID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(Greeting)); err != nil {
		logging.Debug("Failed to write response: %v", err)
	}
}
