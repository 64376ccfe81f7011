package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/lox/vibesphere/internal/sphere"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func (s *Server) handleAPICatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleAPISphere(w http.ResponseWriter, r *http.Request) {
	st := s.stateFrom(r)
	sp := s.build(st)
	writeJSON(w, http.StatusOK, SphereResponse{
		Sphere: sp,
		CSS:    sp.Gradient.CSS(),
		Text:   sp.Description.String(),
		Share:  sphere.ShareURL(s.publicBase(r), st.Selection()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok"}
	status := http.StatusOK
	if s.index == nil {
		health.Status = "degraded"
		if s.loadErr != nil {
			health.Error = s.loadErr.Error()
		}
		status = http.StatusServiceUnavailable
	} else {
		health.Items = s.index.Len()
	}
	writeJSON(w, status, health)
}
