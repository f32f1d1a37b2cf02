// File path: internal/api/valuation_handler.go
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/valuation"
)

// stderrExcerpt bounds how much model stderr is echoed back to the caller.
const stderrExcerpt = 2048

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		writeError(w, http.StatusBadRequest, msgInvalidInput, valuation.ErrInvalidInput)
		return
	}
	if !s.guard(w, r, config.FeatureValuation) {
		return
	}

	result, err := s.valuator.Valuate(r.Context(), body)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result)
		return
	}

	var failure *valuation.Failure
	var invalid *valuation.InvalidOutputError
	switch {
	case errors.Is(err, valuation.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
	case errors.Is(err, valuation.ErrScriptNotFound):
		writeError(w, http.StatusInternalServerError, msgScriptMissing, err)
	case errors.Is(err, valuation.ErrInterpreterNotFound):
		writeError(w, http.StatusInternalServerError, msgScriptStart, err)
	case errors.As(err, &failure):
		code := failure.ExitCode
		logger.Error("api: valuation script failed", "exit_code", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: msgScriptFailed,
			Debug: valuationDebug{ExitCode: &code, PythonStderr: truncate(failure.Stderr, stderrExcerpt)},
		})
	case errors.As(err, &invalid):
		logger.Error("api: valuation script returned invalid output", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: msgScriptInvalid,
			Debug: valuationDebug{
				PythonStdout: truncate(invalid.Stdout, stderrExcerpt),
				PythonStderr: truncate(invalid.Stderr, stderrExcerpt),
			},
		})
	default:
		writeError(w, http.StatusInternalServerError, msgInternal, err)
	}
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
