package api

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/vibesphere/internal/catalog"
	"github.com/lox/vibesphere/internal/imagegen"
	"github.com/lox/vibesphere/internal/metrics"
	"github.com/lox/vibesphere/internal/sphere"
)

// CatalogErrorMessage replaces the page when the catalog failed to load.
const CatalogErrorMessage = "Не удалось загрузить данные. Попробуйте обновить страницу позже."

// CapacityNotice is the toast shown when a toggle hits the selection limit.
const CapacityNotice = "Максимум 12 элементов"

const toastDuration = 1400 * time.Millisecond

// Config defines the inputs for the HTTP server.
type Config struct {
	Port string
	// BaseURL is the public address used in share links. When empty the
	// address is derived from each request.
	BaseURL    string
	OGCacheTTL time.Duration
}

type Server struct {
	catalog *catalog.Catalog
	index   *catalog.Index
	loadErr error
	rand    sphere.Source
	port    string
	baseURL *url.URL
	tmpl    *template.Template
	ogCache *imagegen.OGImageCache
}

// NewServer builds the server. A nil catalog puts every page into the
// catalog error state; loadErr is reported by /health.
func NewServer(cat *catalog.Catalog, loadErr error, src sphere.Source, cfg Config) (*Server, error) {
	s := &Server{
		catalog: cat,
		loadErr: loadErr,
		rand:    src,
		port:    cfg.Port,
		tmpl:    newTemplates(),
		ogCache: imagegen.NewOGImageCache(cfg.OGCacheTTL, 0),
	}
	if cat != nil {
		s.index = cat.Index()
	} else if s.loadErr == nil {
		s.loadErr = catalog.ErrLoadFailure
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid base url %q", base)
		}
		s.baseURL = u
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.requireCatalog(s.handleIndex))
	mux.HandleFunc("/toggle", s.requireCatalog(s.handleToggle))
	mux.HandleFunc("/clear", s.requireCatalog(s.handleClear))
	mux.HandleFunc("/share", s.requireCatalog(s.handleShare))
	mux.HandleFunc("/sphere.png", s.requireCatalog(s.handleSphereImage))
	mux.HandleFunc("/og.png", s.requireCatalog(s.handleOGImage))
	mux.HandleFunc("/api/catalog", s.requireCatalog(s.handleAPICatalog))
	mux.HandleFunc("/api/sphere", s.requireCatalog(s.handleAPISphere))
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requireCatalog serves the fixed error page while no catalog is loaded.
func (s *Server) requireCatalog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.index != nil {
			next(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasSuffix(r.URL.Path, ".png") || r.URL.Path == "/share" {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": CatalogErrorMessage})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		if err := s.tmpl.ExecuteTemplate(w, "error.html", ErrorData{Message: CatalogErrorMessage}); err != nil {
			log.Printf("template error: %v", err)
		}
	}
}

// stateFrom decodes the selection carried by the request's s parameter
// (query string or form body).
func (s *Server) stateFrom(r *http.Request) *sphere.State {
	ids, dropped := sphere.DecodeIDs(s.index, r.FormValue(sphere.QueryParam))
	if dropped > 0 {
		metrics.UnknownIDsDropped.Add(float64(dropped))
	}
	return sphere.NewState(s.index, s.rand, ids...)
}

// build renders the selection and counts it.
func (s *Server) build(st *sphere.State) sphere.Sphere {
	res, _ := st.Apply(sphere.Build{})
	metrics.BuildsTotal.WithLabelValues(metrics.BuildKind(res.Sphere.Gradient.Empty)).Inc()
	return *res.Sphere
}

// publicBase returns the root URL share links point at.
func (s *Server) publicBase(r *http.Request) *url.URL {
	if s.baseURL != nil {
		u := *s.baseURL
		return &u
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
}

// selectionPath returns path with the selection of st in its query.
func selectionPath(path string, st *sphere.State, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	sphere.ApplyToQuery(q, st.Selection())
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
