package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lox/vibesphere/internal/api"
	"github.com/lox/vibesphere/internal/catalog"
	"github.com/lox/vibesphere/internal/metrics"
	"github.com/lox/vibesphere/internal/sphere"
)

func setupTestServer(t *testing.T) *api.Server {
	t.Helper()
	srv, err := api.NewServer(catalog.Default(), nil, sphere.NewSource(1), api.Config{
		Port:       "8080",
		OGCacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func serve(srv *api.Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, httptest.NewRequest("GET", "/health", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health api.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Items != 25 {
		t.Errorf("health = %+v", health)
	}
}

func TestIndexPage_Empty(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, httptest.NewRequest("GET", "/", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<title>Вайб-сфера</title>") {
		t.Error("expected title")
	}
	if !strings.Contains(body, sphere.EmptyPrompt) {
		t.Error("expected empty prompt")
	}
	if !strings.Contains(body, "conic-gradient(from 0deg, #243244, #243244 100%)") {
		t.Error("expected neutral gradient")
	}
	if strings.Contains(body, "ZgotmplZ") {
		t.Error("gradient style was rejected by the template escaper")
	}
	if strings.Count(body, `class="item"`) != 25 {
		t.Errorf("expected 25 unselected item buttons")
	}
}

func TestIndexPage_PreselectedBuildsImmediately(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, httptest.NewRequest("GET", "/?s=cosmos,ocean,city,unicorn", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Основа: 🪐 Космос, 🌊 Океан, 🌆 Город") {
		t.Error("expected category line for the pre-selection")
	}
	if !strings.Contains(body, "Вайб: ") {
		t.Error("expected vibe line")
	}
	if strings.Count(body, `class="item selected"`) != 3 {
		t.Error("expected three selected buttons")
	}
	if strings.Contains(body, "unicorn") {
		t.Error("unknown id should be dropped silently")
	}
	if !strings.Contains(body, "Выбрано 3 из 12") {
		t.Error("expected selection counter")
	}
}

func TestIndexPage_NotFound(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)
	if w := serve(srv, httptest.NewRequest("GET", "/nope", nil)); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestToggle(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, postForm("/toggle", url.Values{"s": {"cosmos"}, "id": {"ocean"}}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if got := loc.Query().Get("s"); got != "cosmos,ocean" {
		t.Errorf("s = %q, want cosmos,ocean", got)
	}

	w = serve(srv, postForm("/toggle", url.Values{"s": {"cosmos"}, "id": {"cosmos"}}))
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want / after removing the last item", got)
	}

	w = serve(srv, postForm("/toggle", url.Values{"s": {"cosmos"}, "id": {"unicorn"}}))
	loc, _ = url.Parse(w.Header().Get("Location"))
	if got := loc.Query().Get("s"); got != "cosmos" {
		t.Errorf("s = %q, want unchanged selection", got)
	}
}

func TestToggle_Capacity(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)
	ids := catalog.Default().Index().IDs()
	full := strings.Join(ids[:sphere.MaxSelection], ",")

	before := testutil.ToFloat64(metrics.TogglesTotal.WithLabelValues("rejected"))
	w := serve(srv, postForm("/toggle", url.Values{"s": {full}, "id": {ids[sphere.MaxSelection]}}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Query().Get("s") != full {
		t.Errorf("selection changed: %q", loc.Query().Get("s"))
	}
	if loc.Query().Get("notice") != "capacity" {
		t.Errorf("expected capacity notice, got %q", loc.RawQuery)
	}
	if after := testutil.ToFloat64(metrics.TogglesTotal.WithLabelValues("rejected")); after <= before {
		t.Error("rejected toggle not counted")
	}

	page := serve(srv, httptest.NewRequest("GET", loc.String(), nil))
	if !strings.Contains(page.Body.String(), api.CapacityNotice) {
		t.Error("expected capacity toast on the page")
	}
}

func TestToggle_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)
	w := serve(srv, httptest.NewRequest("GET", "/toggle?id=cosmos", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)
	w := serve(srv, postForm("/clear", url.Values{"s": {"cosmos,cat"}}))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}
}

func TestShare(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	req := httptest.NewRequest("GET", "http://vibe.example/share?s=rock,lofi,bogus", nil)
	w := serve(srv, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	u, err := url.Parse(resp["url"])
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "vibe.example" || u.Query().Get("s") != "rock,lofi" {
		t.Errorf("share url = %q", resp["url"])
	}

	w = serve(srv, httptest.NewRequest("GET", "http://vibe.example/share", nil))
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["url"] != "http://vibe.example/" {
		t.Errorf("empty share url = %q, want no s parameter", resp["url"])
	}
}

func TestShare_BaseURL(t *testing.T) {
	t.Parallel()
	srv, err := api.NewServer(catalog.Default(), nil, sphere.NewSource(1), api.Config{BaseURL: "https://sphere.example/app"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	w := serve(srv, httptest.NewRequest("GET", "/share?s=zen", nil))
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["url"] != "https://sphere.example/app?s=zen" {
		t.Errorf("url = %q", resp["url"])
	}

	if _, err := api.NewServer(catalog.Default(), nil, sphere.NewSource(1), api.Config{BaseURL: "not a url"}); err == nil {
		t.Error("expected invalid base url error")
	}
}

func TestAPISphere(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, httptest.NewRequest("GET", "/api/sphere?s=rock,synth", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp api.SphereResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Gradient.Stops) != 2 {
		t.Errorf("%d stops, want 2", len(resp.Gradient.Stops))
	}
	if !strings.HasPrefix(resp.CSS, "conic-gradient(from ") {
		t.Errorf("css = %q", resp.CSS)
	}
	if !strings.HasPrefix(resp.Text, "Саунд: 🎸 Рок, 🎹 Синт\n") {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestAPICatalog(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	w := serve(srv, httptest.NewRequest("GET", "/api/catalog", nil))
	var c catalog.Catalog
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c.Categories) != 5 || c.Categories[0].Items[0].Glyph != "🪐" {
		t.Errorf("unexpected catalog: %+v", c.Categories[0])
	}
}

func TestImages(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)

	for _, path := range []string{"/sphere.png?s=cat,duck&size=128", "/og.png?s=cat", "/og.png?s=cat"} {
		w := serve(srv, httptest.NewRequest("GET", path, nil))
		if w.Code != 200 {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: Content-Type = %q", path, ct)
		}
		if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
			t.Errorf("%s: body is not a PNG", path)
		}
	}
}

func TestCatalogLoadFailure(t *testing.T) {
	t.Parallel()
	loadErr := errors.Join(catalog.ErrLoadFailure, errors.New("status 500"))
	srv, err := api.NewServer(nil, loadErr, sphere.NewSource(1), api.Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	w := serve(srv, httptest.NewRequest("GET", "/?s=cosmos", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, api.CatalogErrorMessage) {
		t.Error("expected fixed error message")
	}
	if strings.Contains(body, "shareBtn") {
		t.Error("interactive controls must not render")
	}

	w = serve(srv, postForm("/toggle", url.Values{"id": {"cosmos"}}))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("toggle: expected 503, got %d", w.Code)
	}
	w = serve(srv, httptest.NewRequest("GET", "/api/sphere", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("api: expected 503, got %d", w.Code)
	}

	w = serve(srv, httptest.NewRequest("GET", "/health", nil))
	var health api.HealthStatus
	json.NewDecoder(w.Body).Decode(&health)
	if w.Code != http.StatusServiceUnavailable || health.Status != "degraded" || !strings.Contains(health.Error, "status 500") {
		t.Errorf("health = %d %+v", w.Code, health)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := setupTestServer(t)
	serve(srv, httptest.NewRequest("GET", "/?s=cat", nil))

	w := serve(srv, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "vibesphere_builds_total") {
		t.Error("expected builds counter in metrics output")
	}
}
