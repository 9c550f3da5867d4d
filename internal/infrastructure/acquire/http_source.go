// Package acquire downloads raw dataset files over HTTP.
package acquire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"DataPipeline/internal/fsutil"
	"DataPipeline/internal/ports"
)

const (
	userAgent        = "DataPipeline/1.0"
	maxParallelFetch = 4
)

// HTTPSource fetches dataset files from a URL. The URL either serves a
// file directly or an HTML index whose links name the wanted files.
type HTTPSource struct {
	sourceURL string
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.DatasetSource = (*HTTPSource)(nil)

// NewHTTPSource wires an HTTP client; nil gets a client with a 60s timeout.
func NewHTTPSource(sourceURL string, client *http.Client, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPSource{sourceURL: sourceURL, client: client, logger: logger}
}

// Fetch downloads the wanted files into destDir and returns their paths.
// Files the index does not list are logged and skipped; the file check of
// the validation stage reports them.
func (s *HTTPSource) Fetch(ctx context.Context, destDir string, files []string) ([]string, error) {
	if s.sourceURL == "" {
		return nil, fmt.Errorf("source url is not configured")
	}
	base, err := url.Parse(s.sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	resp, err := s.get(ctx, s.sourceURL)
	if err != nil {
		return nil, err
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		defer resp.Body.Close()
		name := path.Base(base.Path)
		if name == "" || name == "/" || name == "." {
			if len(files) == 0 {
				return nil, fmt.Errorf("cannot name download from %s", s.sourceURL)
			}
			name = files[0]
		}
		dest := filepath.Join(destDir, name)
		if err := save(ctx, dest, resp.Body); err != nil {
			return nil, err
		}
		s.logger.Info("dataset downloaded", "url", s.sourceURL, "path", dest)
		return []string{dest}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	links := indexLinks(doc, base, files)
	s.logger.Debug("index scanned", "url", s.sourceURL, "matched", len(links), "wanted", len(files))
	for _, name := range missing(links, files) {
		s.logger.Warn("file not listed in index", "file", name, "url", s.sourceURL)
	}

	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)

	saved := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)
	for i, name := range names {
		g.Go(func() error {
			dest := filepath.Join(destDir, name)
			if err := s.download(gctx, links[name], dest); err != nil {
				return fmt.Errorf("download %s: %w", name, err)
			}
			saved[i] = dest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("dataset files downloaded", "count", len(saved), "dir", destDir)
	return saved, nil
}

func (s *HTTPSource) download(ctx context.Context, fileURL, dest string) error {
	resp, err := s.get(ctx, fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := save(ctx, dest, resp.Body); err != nil {
		return err
	}
	s.logger.Debug("file downloaded", "url", fileURL, "path", dest)
	return nil
}

func (s *HTTPSource) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}
	return resp, nil
}

func save(ctx context.Context, dest string, body io.Reader) error {
	return fsutil.WriteFile(ctx, dest, func(w io.Writer) error {
		if _, err := io.Copy(w, body); err != nil {
			return fmt.Errorf("copy body: %w", err)
		}
		return nil
	})
}

// indexLinks maps each wanted file name to the absolute URL of the first
// link whose path ends in that name.
func indexLinks(doc *goquery.Document, base *url.URL, files []string) map[string]string {
	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[f] = true
	}

	found := map[string]string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		name, err := url.PathUnescape(path.Base(abs.Path))
		if err != nil || !wanted[name] {
			return
		}
		if _, dup := found[name]; !dup {
			found[name] = abs.String()
		}
	})
	return found
}

func missing(found map[string]string, files []string) []string {
	var out []string
	for _, f := range files {
		if _, ok := found[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
