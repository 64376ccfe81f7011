package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_UserAgent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.UserAgent())
	}))
	defer srv.Close()

	client := NewClient()
	if client.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, DefaultTimeout)
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom/2")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if len(got) != 2 || got[0] != DefaultUserAgent || got[1] != "custom/2" {
		t.Errorf("user agents = %q", got)
	}
	if req.Header.Get("User-Agent") != "custom/2" {
		t.Error("request header was modified")
	}
}
