package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"engine": s.supervisor.Engine().ID(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload moveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: "invalid payload"})
		return
	}

	req, err := payload.toRequest(s.config.SearchBudgetMs)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.supervisor.Move(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMoveResponse(req, resp))
}
