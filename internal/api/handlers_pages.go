package api

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/lox/vibesphere/internal/metrics"
	"github.com/lox/vibesphere/internal/sphere"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	st := s.stateFrom(r)
	sp := s.build(st)

	var notice string
	if r.URL.Query().Get("notice") == "capacity" {
		notice = CapacityNotice
	}

	base := s.publicBase(r)
	ogURL := *base
	ogURL.Path = strings.TrimSuffix(base.Path, "/") + "/og.png"

	data := PageData{
		Categories:  categoryViews(s.catalog, st.Selection()),
		Sphere:      sp,
		GradientCSS: sp.Gradient.CSS(),
		Description: sp.Description.Lines(),
		Selected:    sphere.Encode(st.Selection()),
		Count:       st.Selection().Len(),
		Max:         sphere.MaxSelection,
		Notice:      notice,
		ToastMillis: toastDuration.Milliseconds(),
		ShareURL:    sphere.ShareURL(base, st.Selection()),
		OGImageURL:  sphere.ShareURL(&ogURL, st.Selection()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := s.stateFrom(r)
	res, err := st.Apply(sphere.ToggleItem{ID: r.FormValue("id")})
	metrics.TogglesTotal.WithLabelValues(res.Toggle.String()).Inc()

	extra := url.Values{}
	if errors.Is(err, sphere.ErrCapacityExceeded) {
		extra.Set("notice", "capacity")
	}
	http.Redirect(w, r, selectionPath("/", st, extra), http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := s.stateFrom(r)
	st.Apply(sphere.Clear{})
	http.Redirect(w, r, selectionPath("/", st, nil), http.StatusSeeOther)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	st := s.stateFrom(r)
	res, err := st.Apply(sphere.Share{Base: s.publicBase(r)})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.SharesTotal.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"url": res.Link})
}
