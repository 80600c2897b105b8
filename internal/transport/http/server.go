// package http exposes the release pipeline over HTTP.
// Handlers decode and validate requests, call the pipeline service and map
// its errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/service"
	"github.com/usira-okay/release-kit/internal/validation"
	"github.com/usira-okay/release-kit/pkg/logger/sl"
)

type errorCode string

const (
	codeNotFound       errorCode = "NOT_FOUND"
	codeMissingInput   errorCode = "MISSING_INPUT"
	codeInvalidRequest errorCode = "INVALID_REQUEST"
)

type errorResponse struct {
	Error struct {
		Code    errorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	log      *slog.Logger
	pipeline service.PipelineService
}

func NewServer(log *slog.Logger, pipeline service.PipelineService) *Server {
	return &Server{
		log:      log,
		pipeline: pipeline,
	}
}

// Routes builds the router with middleware and every endpoint.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/pipeline", func(r chi.Router) {
		r.Post("/run", s.PostPipelineRun)
		r.Post("/resolve", s.PostPipelineResolve)
		r.Post("/consolidate", s.PostPipelineConsolidate)
	})

	mux.Get("/report", s.GetReport)
	mux.Post("/branches/diff-target", s.PostBranchesDiffTarget)

	return mux
}

func (s *Server) PostPipelineRun(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostPipelineRun"

	result, err := s.pipeline.Run(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) PostPipelineResolve(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostPipelineResolve"

	records, err := s.pipeline.Resolve(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, resolveResponse{WorkItems: records})
}

func (s *Server) PostPipelineConsolidate(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostPipelineConsolidate"

	result, err := s.pipeline.Consolidate(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetReport"

	result, err := s.pipeline.Report(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) PostBranchesDiffTarget(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostBranchesDiffTarget"

	var req diffTargetRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	target := s.pipeline.DiffTarget(r.Context(), req.ProjectPath, req.SourceBranch, req.TargetBranch)

	s.respond(w, http.StatusOK, diffTargetResponse{
		ProjectPath:  req.ProjectPath,
		SourceBranch: req.SourceBranch,
		TargetBranch: target,
		Adjusted:     target != req.TargetBranch,
	})
}

// respond encodes data as JSON with the given status code.
func (s *Server) respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

func (s *Server) respondAPIError(w http.ResponseWriter, code int, apiCode errorCode, message string) {
	var resp errorResponse
	resp.Error.Code = apiCode
	resp.Error.Message = message

	s.respond(w, code, resp)
}

func (s *Server) decodeAndValidate(r *http.Request, v any) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

func (s *Server) decode(body io.ReadCloser, v any) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError logs err and maps it to a response.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", getRequestID(r.Context())))

	var (
		validationErr *validation.ValidationError
		missingErr    *apperrors.MissingInputError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn("request rejected", sl.Err(err))
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		log.Warn("request rejected", sl.Err(err))
		s.respondAPIError(w, http.StatusBadRequest, codeInvalidRequest, apperrors.ErrInvalidRequest.Error())
	case errors.As(err, &missingErr):
		log.Warn("pipeline input missing", sl.Err(err))
		s.respondAPIError(w, http.StatusUnprocessableEntity, codeMissingInput, missingErr.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		log.Warn("resource not found", sl.Err(err))
		s.respondAPIError(w, http.StatusNotFound, codeNotFound, apperrors.ErrNotFound.Error())
	default:
		log.Error("service error occurred", sl.Err(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
