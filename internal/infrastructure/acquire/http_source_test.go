package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const indexPage = `<html><body>
<ul>
  <li><a href="files/mental_health.csv">mental_health.csv</a></li>
  <li><a href="/other/readme.txt">readme</a></li>
  <li><a href="https://elsewhere.example/mental_health.csv">mirror</a></li>
  <li><a href="files/extra_data.csv">extra</a></li>
</ul>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/datasets/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/datasets/files/mental_health.csv", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("User_ID,Age\nU1,20\n"))
	})
	mux.HandleFunc("/datasets/files/extra_data.csv", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("a\n1\n"))
	})
	mux.HandleFunc("/broken.csv", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFromIndex(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	dir := t.TempDir()
	src := NewHTTPSource(srv.URL+"/datasets/", srv.Client(), nil)

	saved, err := src.Fetch(context.Background(), dir, []string{"mental_health.csv", "extra_data.csv", "absent.csv"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 files, got %v", saved)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "mental_health.csv"))
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if !strings.HasPrefix(string(raw), "User_ID,Age") {
		t.Fatalf("unexpected content: %q", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, "extra_data.csv")); err != nil {
		t.Fatalf("second link not downloaded: %v", err)
	}
}

func TestFetchDirectFile(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	dir := t.TempDir()
	src := NewHTTPSource(srv.URL+"/datasets/files/mental_health.csv", srv.Client(), nil)

	saved, err := src.Fetch(context.Background(), dir, []string{"mental_health.csv"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := filepath.Join(dir, "mental_health.csv")
	if len(saved) != 1 || saved[0] != want {
		t.Fatalf("unexpected paths: %v", saved)
	}
}

func TestFetchErrors(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	if _, err := NewHTTPSource(srv.URL+"/broken.csv", srv.Client(), nil).Fetch(context.Background(), t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := NewHTTPSource("", nil, nil).Fetch(context.Background(), t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestIndexLinksFirstMatchWins(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexPage))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	base, _ := url.Parse("https://data.example/datasets/")

	links := indexLinks(doc, base, []string{"mental_health.csv", "readme.txt"})
	if got := links["mental_health.csv"]; got != "https://data.example/datasets/files/mental_health.csv" {
		t.Fatalf("unexpected link: %s", got)
	}
	if got := links["readme.txt"]; got != "https://data.example/other/readme.txt" {
		t.Fatalf("unexpected link: %s", got)
	}
	if m := missing(links, []string{"mental_health.csv", "nope.csv"}); len(m) != 1 || m[0] != "nope.csv" {
		t.Fatalf("unexpected missing: %v", m)
	}
}

func TestIsHTML(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"text/html; charset=utf-8": true,
		"application/xhtml+xml":    true,
		"text/csv":                 false,
		"":                         false,
	}
	for in, want := range cases {
		if got := isHTML(in); got != want {
			t.Fatalf("isHTML(%q) = %v, want %v", in, got, want)
		}
	}
}
