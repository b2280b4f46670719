package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/YuminosukeSato/sleepq/cascade"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
	"github.com/YuminosukeSato/sleepq/pkg/log"
	"github.com/YuminosukeSato/sleepq/sleep"
)

const maxBodyBytes = 1 << 16

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// PredictResponse is the body of a successful POST /v1/predict.
type PredictResponse struct {
	RequestID string `json:"request_id"`
	cascade.Outcome
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	id := requestIDFrom(r.Context())
	logger := s.logger.With(log.RequestIDKey, id)

	var in sleep.FeatureInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		s.metrics.Rejected()
		writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: "malformed request body: " + err.Error()})
		return
	}

	start := time.Now()
	out, err := s.cascade.PredictWithFallback(in)
	if err != nil {
		var invalid *errors.InvalidInputError
		if errors.As(err, &invalid) {
			s.metrics.Rejected()
			writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: invalid.Error(), Field: invalid.Field})
			return
		}
		logger.Error("Prediction failed", log.ErrorKey, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{RequestID: id, Error: "prediction failed"})
		return
	}
	s.metrics.Observe(out, time.Since(start).Seconds())

	logger.Debug("Prediction served", log.SourceKey, out.Source, log.LabelKey, out.Label)
	writeJSON(w, http.StatusOK, PredictResponse{RequestID: id, Outcome: out})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
