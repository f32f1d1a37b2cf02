// File path: internal/api/analysis_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/comparables"
	"github.com/nicodishanthj/Katral_realty/internal/config"
)

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	target := req.target()
	if err := target.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	if !s.guard(w, r, config.FeatureAnalysis) {
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), target)
	if err != nil {
		if errors.Is(err, comparables.ErrInvalidTarget) {
			writeError(w, http.StatusBadRequest, msgInvalidInput, err)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	common.Logger().Info("api: analysis completed", "location", target.Location,
		"request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, analysisResponse{Success: true, Data: report})
}
