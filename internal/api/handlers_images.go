package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/vibesphere/internal/imagegen"
	"github.com/lox/vibesphere/internal/metrics"
	"github.com/lox/vibesphere/internal/sphere"
)

func (s *Server) handleSphereImage(w http.ResponseWriter, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	sp := s.build(s.stateFrom(r))

	start := time.Now()
	data, err := imagegen.RenderSphere(sp.Gradient, size)
	metrics.ImageRenderLatency.WithLabelValues("sphere").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("sphere image: %v", err)
		http.Error(w, "image render failed", http.StatusInternalServerError)
		return
	}
	servePNG(w, data, "no-store")
}

func (s *Server) handleOGImage(w http.ResponseWriter, r *http.Request) {
	st := s.stateFrom(r)
	key := sphere.Encode(st.Selection())
	if data, ok := s.ogCache.Get(key); ok {
		servePNG(w, data, "public, max-age=600")
		return
	}

	sp := s.build(st)
	start := time.Now()
	data, err := imagegen.GenerateOGImage(sp.Gradient, imagegen.OGDataFromSphere(sp))
	metrics.ImageRenderLatency.WithLabelValues("og").Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("og image: %v", err)
		http.Error(w, "image render failed", http.StatusInternalServerError)
		return
	}
	s.ogCache.Set(key, data)
	servePNG(w, data, "public, max-age=600")
}

func servePNG(w http.ResponseWriter, data []byte, cacheControl string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.Write(data)
}
