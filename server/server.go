package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/siherrmann/scout/model"
)

// Retriever is the engine contract the server exposes over HTTP
type Retriever interface {
	Retrieve(ctx context.Context, request *model.RetrievalRequest) (*model.RetrievalResponse, error)
}

// Server is the JSON API HTTP server for retrieval requests.
type Server struct {
	retriever Retriever
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewServer creates a server with all routes configured.
// A nil logger falls back to slog's default.
func NewServer(retriever Retriever, logger *slog.Logger) (*Server, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		retriever: retriever,
		logger:    logger,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /retrieve", s.handleRetrieve)
	s.mux.HandleFunc("OPTIONS /retrieve", s.handlePreflight)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s, nil
}

// Handler returns the route handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

// ListenAndServe starts the server on the given address and blocks
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("Starting retrieval server", slog.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	var request model.RetrievalRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON", s.logger)
		return
	}

	response, err := s.retriever.Retrieve(r.Context(), &request)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Error(), s.logger)
			return
		}

		// Internal details stay in the log, clients get a generic body
		s.logger.Error("Retrieval failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
		return
	}

	writeJSON(w, http.StatusOK, response, s.logger)
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth is a liveness probe endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
