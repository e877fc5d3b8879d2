// Package http exposes the record API over JSON.
package http

import (
	"net/http"
	"time"

	"kharcha/internal/log"
	"kharcha/internal/services"
)

// Server wraps http.Server with the application routes.
type Server struct {
	http.Server

	svc      *services.RecordService
	logger   *log.Logger
	pageSize int
}

// NewServer builds a server listening on addr. pageSize is the default
// history window when the client does not pass an explicit limit.
func NewServer(addr string, svc *services.RecordService, pageSize int, logger *log.Logger) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleHealth)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/sources", s.handleSources)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("POST /api/readings", s.handleCreateReading)
	mux.HandleFunc("PUT /api/readings/{id}", s.handleUpdateReading)
	mux.HandleFunc("DELETE /api/readings/{id}", s.handleDeleteReading)

	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("PUT /api/loans/{id}", s.handleUpdateLoan)
	mux.HandleFunc("DELETE /api/loans/{id}", s.handleDeleteLoan)
	mux.HandleFunc("POST /api/loans/{id}/repayments", s.handleAddRepayment)

	mux.HandleFunc("GET /api/settings/vehicle", s.handleGetVehicleSettings)
	mux.HandleFunc("PUT /api/settings/vehicle", s.handleSaveVehicleSettings)

	s.Handler = s.withRequestLog(mux)
	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
	})
}
