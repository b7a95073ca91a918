package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/picalc/internal/bigfloat"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// handleAlgorithms lists the catalog per library. An optional library
// parameter restricts the listing.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	libs := pi.Libraries()
	if name := r.URL.Query().Get("library"); name != "" {
		lib, err := pi.ParseLibrary(name)
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		libs = []pi.Library{lib}
	}

	catalog := make(map[string][]AlgorithmInfo, len(libs))
	for _, lib := range libs {
		calcs := s.factory.ForLibrary(lib)
		infos := make([]AlgorithmInfo, 0, len(calcs))
		for _, calc := range calcs {
			alg := calc.Algorithm()
			infos = append(infos, AlgorithmInfo{
				ID:     alg.ID,
				Tag:    alg.Tag(),
				Series: alg.Series.String(),
				Scheme: alg.Scheme.String(),
			})
		}
		catalog[string(lib)] = infos
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]any{"algorithms": catalog})
}

// handleCalculate runs one catalogued algorithm and reports how many
// decimals match the reference.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, withDigits, err := s.parseCalculateParams(r)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	out, err := s.service.Calculate(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("calculation failed", err,
				logging.String("library", string(req.Library)),
				logging.Int("algorithm", req.Algorithm),
				logging.Int("precision", req.Precision))
		}
		s.writeErrorResponse(w, status, err.Error())
		return
	}
	if !out.Reached() {
		s.metrics.RecordShortResult(out.Result.Tag())
	}

	s.writeJSONResponse(w, http.StatusOK, buildCalculateResponse(out, withDigits))
}

// parseCalculateParams reads precision (required), library, algorithm,
// threads and digits. Omitted values fall back to the server
// configuration.
func (s *Server) parseCalculateParams(r *http.Request) (service.Request, bool, error) {
	q := r.URL.Query()

	libName := q.Get("library")
	if libName == "" {
		libName = s.cfg.Library
	}
	lib, err := pi.ParseLibrary(libName)
	if err != nil {
		return service.Request{}, false, err
	}

	req := service.Request{Library: lib, Algorithm: s.defaultAlgorithm(lib), Threads: s.cfg.Threads}

	precision := q.Get("precision")
	if precision == "" {
		return req, false, apperrors.NewValidationError("precision", "missing parameter", nil)
	}
	if req.Precision, err = strconv.Atoi(precision); err != nil || req.Precision <= 0 {
		return req, false, apperrors.NewValidationError("precision", "must be a positive integer", precision)
	}

	if v := q.Get("algorithm"); v != "" {
		if req.Algorithm, err = strconv.Atoi(v); err != nil {
			return req, false, apperrors.NewValidationError("algorithm", "must be an integer", v)
		}
	}
	if v := q.Get("threads"); v != "" {
		if req.Threads, err = strconv.Atoi(v); err != nil {
			return req, false, apperrors.NewValidationError("threads", "must be an integer", v)
		}
	}

	withDigits := false
	if v := q.Get("digits"); v != "" {
		if withDigits, err = strconv.ParseBool(v); err != nil {
			return req, false, apperrors.NewValidationError("digits", "must be a boolean", v)
		}
	}
	return req, withDigits, nil
}

// defaultAlgorithm is the configured ID when it exists for lib, else 0.
func (s *Server) defaultAlgorithm(lib pi.Library) int {
	id, err := strconv.Atoi(s.cfg.Algo)
	if err != nil {
		return 0
	}
	if _, err := pi.Lookup(lib, id); err != nil {
		return 0
	}
	return id
}

// statusFor maps a request or calculation error to an HTTP status.
func statusFor(err error) int {
	var valErr apperrors.ValidationError
	if errors.As(err, &valErr) ||
		errors.Is(err, service.ErrMaxPrecisionExceeded) ||
		errors.Is(err, service.ErrMaxThreadsExceeded) {
		return http.StatusBadRequest
	}
	switch apperrors.ExitCode(err) {
	case apperrors.ExitErrorConfig:
		return http.StatusBadRequest
	case apperrors.ExitErrorTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ExitErrorCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func buildCalculateResponse(out *service.Outcome, withDigits bool) Response {
	res := out.Result
	resp := Response{
		Library:    string(res.Algorithm.Library),
		Algorithm:  res.Tag(),
		Precision:  res.Precision,
		Iterations: res.Iterations,
		Threads:    res.Threads,
		Workers:    res.Workers,
		Decimals:   out.Correct,
		Reached:    out.Reached(),
		Duration:   res.Duration.String(),
		Seconds:    res.Duration.Seconds(),
	}
	if withDigits {
		resp.Digits = bigfloat.Format(res.Pi, res.Precision)
	}
	return resp
}

func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Debug("request received",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote", r.RemoteAddr))

		next(w, r)

		s.logger.Info(fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			logging.Duration("duration", time.Since(start)))
	}
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
