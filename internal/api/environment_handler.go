// File path: internal/api/environment_handler.go
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/environment"
)

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	var req environmentRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Address == nil || req.Radius == nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}
	address := strings.TrimSpace(*req.Address)
	radius := int(*req.Radius)
	if address == "" || radius <= 0 {
		writeError(w, http.StatusBadRequest, msgInvalidInput, nil)
		return
	}
	if !s.guard(w, r, config.FeatureEnvironment) {
		return
	}

	report, err := s.environment.Report(r.Context(), address, radius)
	switch {
	case err == nil:
		common.Logger().Info("api: environment report generated", "places", report.Places,
			"request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusOK, environmentResponse{Success: true, Report: report})
	case errors.Is(err, environment.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
	case errors.Is(err, environment.ErrAddressNotFound):
		writeJSON(w, http.StatusOK, errorResponse{Success: false, Error: msgAddressNotFound})
	case errors.Is(err, environment.ErrMapsUnavailable):
		writeError(w, http.StatusBadGateway, msgMapsUnavailable, err)
	case errors.Is(err, environment.ErrUnavailable):
		writeError(w, http.StatusBadGateway, msgReportFailed, err)
	case errors.Is(err, environment.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, msgConfiguration, err)
	default:
		writeError(w, http.StatusInternalServerError, msgInternal, err)
	}
}
