// File path: internal/api/chat_handler.go
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/router"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Message == nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}
	message := strings.TrimSpace(*req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !s.guard(w, r, config.FeatureChat) {
		return
	}

	answer, err := s.agent.Answer(r.Context(), message)
	if err != nil {
		var failure *router.RoutingFailure
		if errors.As(err, &failure) {
			logger.Warn("api: chat routing failed", "reason", failure.Reason,
				"request_id", middleware.GetReqID(r.Context()))
			writeJSON(w, http.StatusOK, errorResponse{Success: false, Error: failure.Error()})
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	logger.Info("api: chat answered", "tool", answer.Decision.Name, "steps", len(answer.Steps),
		"request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, chatResponse{Success: true, Answer: answer})
}
