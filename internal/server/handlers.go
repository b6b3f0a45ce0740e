package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sw33tLie/biliguard/internal/utils"
	"github.com/sw33tLie/biliguard/pkg/enrich"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Debugf("writing response: %v", err)
	}
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Error: msg})
}

// Service failures are answered with 502 so the envelope message reaches the
// remote caller unchanged.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	utils.Log.Warnf("%s %s: %v", r.Method, r.URL.Path, err)
	writeError(w, http.StatusBadGateway, err.Error())
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	bl, err := s.Svc.FetchBlacklist(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, bl)
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Svc.FetchUserInfo(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, info)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.Svc.CheckBlockStatus(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, st)
}

type relationRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleRelation(w http.ResponseWriter, r *http.Request) {
	var req relationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	action, err := enrich.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := s.Svc.ModifyRelation(r.Context(), chi.URLParam(r, "uid"), action)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, msg)
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Svc.FetchContentInfo(r.Context(), chi.URLParam(r, "bvid"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, info)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "no database configured")
		return
	}
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, stats)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "no database configured")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	changes, err := s.DB.ListRecentChanges(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, changes)
}
