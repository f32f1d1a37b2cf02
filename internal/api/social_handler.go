// File path: internal/api/social_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/marketing"
)

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Description == nil || req.Platforms == nil {
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	if !s.guard(w, r, config.FeatureSocial) {
		return
	}

	data, err := s.social.Generate(r.Context(), *req.Description, req.Platforms)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, socialResponse{Success: true, Data: data})
	case errors.Is(err, marketing.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, msgInvalidInput, err)
	case errors.Is(err, marketing.ErrUnavailable):
		writeError(w, http.StatusBadGateway, msgAIUnavailable, err)
	case errors.Is(err, marketing.ErrInvalidResponse):
		writeError(w, http.StatusInternalServerError, msgAIInvalidJSON, err)
	default:
		writeError(w, http.StatusInternalServerError, msgInternal, err)
	}
}
