package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Dallionking/casper-risk-oracle/internal/feed"
)

func TestServesFeedFiles(t *testing.T) {
	dir := t.TempDir()
	pub := feed.NewPublisher(filepath.Join(dir, "risk_status.json"), filepath.Join(dir, "agent_logs.txt"), 0)
	if err := pub.WriteStatus(feed.RiskStatus{Validator: "validator_3", Score: 31}); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(New(pub.StatusPath(), pub.LogPath(), nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/risk_status.json")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected no-store, got %q", cc)
	}

	// The feed client reads straight through the server.
	f := feed.New(srv.URL+"/risk_status.json", srv.URL+"/agent_logs.txt", 0)
	st, err := f.FetchStatus(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if st.Score != 31 {
		t.Fatalf("expected 31, got %d", st.Score)
	}
}

func TestMissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	h := New(filepath.Join(dir, "risk_status.json"), filepath.Join(dir, "agent_logs.txt"), nil).Handler()

	for _, path := range []string{"/risk_status.json", "/agent_logs.txt", "/nope"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h := New("/tmp/a/risk_status.json", "/tmp/a/agent_logs.txt", nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}
