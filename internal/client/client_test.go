package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/cache"
	"github.com/Belphemur/SubMatch/internal/config"
)

func newTestClient(t *testing.T, pages cache.Cache) Client {
	t.Helper()
	cfg := config.Default()
	cfg.RequestsPerSecond = 0
	c := NewClient(cfg, pages, zerolog.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newPageCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New("memory", cache.ProviderConfig{Size: 16, TTL: time.Minute})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return c
}

func TestClient_Fetch_SendsUserAgent(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != config.DefaultUserAgent {
			t.Errorf("Expected User-Agent %q, got %q", config.DefaultUserAgent, got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := newTestClient(t, nil).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got %q", body)
	}
}

func TestClient_Fetch_NonOKStatus(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, nil).Fetch(context.Background(), server.URL)
	var fetchErr *apperrors.ErrFetch
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected ErrFetch, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", fetchErr.StatusCode)
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, nil).Fetch(context.Background(), url)
	if !errors.Is(err, &apperrors.ErrFetch{}) {
		t.Fatalf("Expected ErrFetch, got %v", err)
	}
}

func TestClient_Fetch_RejectsOversizedPage(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("body")))
	}))
	defer server.Close()

	pages := newPageCache(t)
	c := newTestClient(t, pages)
	c.(*client).maxPageSize = 8

	body, err := c.Fetch(context.Background(), server.URL+"?body=12345678")
	if err != nil {
		t.Fatalf("Expected a page at the limit to be accepted, got %v", err)
	}
	if string(body) != "12345678" {
		t.Errorf("Expected '12345678', got %q", body)
	}

	tooLarge := server.URL + "?body=123456789"
	_, err = c.Fetch(context.Background(), tooLarge)
	if !errors.Is(err, &apperrors.ErrFetch{}) {
		t.Fatalf("Expected ErrFetch, got %v", err)
	}
	if _, ok := pages.Get(cache.PageKey(tooLarge)); ok {
		t.Error("Expected an oversized page not to be cached")
	}
}

func TestClient_Fetch_UsesPageCache(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("listing"))
	}))
	defer server.Close()

	c := newTestClient(t, newPageCache(t))
	for range 3 {
		body, err := c.Fetch(context.Background(), server.URL+"/search")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if string(body) != "listing" {
			t.Fatalf("Expected 'listing', got %q", body)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("Expected 1 upstream request, got %d", hits.Load())
	}
}

func TestClient_Fetch_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	c := newTestClient(t, newPageCache(t))
	if _, err := c.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected first fetch to fail")
	}
	body, err := c.Fetch(context.Background(), server.URL)
	if err != nil || string(body) != "recovered" {
		t.Fatalf("Expected second fetch to reach the server, got %q, %v", body, err)
	}
}

func TestClient_FetchDocument_NormalisesCharset(t *testing.T) {
	t.Parallel()
	page := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body><p class=\"title\">Caf\xe9 cr\xe8me</p></body></html>")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(page)
	}))
	defer server.Close()

	doc, err := newTestClient(t, nil).FetchDocument(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if got := doc.Find("p.title").Text(); got != "Café crème" {
		t.Errorf("Expected 'Café crème', got %q", got)
	}
	if doc.Url == nil || doc.Url.String() != server.URL {
		t.Errorf("Expected document URL %s, got %v", server.URL, doc.Url)
	}
}

func TestClient_FetchDocument_Compressed(t *testing.T) {
	t.Parallel()
	page := []byte(`<html><body><div class="msg warn">Aucun résultat</div></body></html>`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(compress(t, "br", page))
	}))
	defer server.Close()

	doc, err := newTestClient(t, nil).FetchDocument(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if doc.Find(".msg.warn").Length() != 1 {
		t.Error("Expected the decompressed page to contain .msg.warn")
	}
}

func TestClient_Download(t *testing.T) {
	t.Parallel()
	archive := []byte("PK\x03\x04 fake archive bytes")
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	c := newTestClient(t, newPageCache(t))
	for range 2 {
		var buf bytes.Buffer
		n, err := c.Download(context.Background(), server.URL, &buf)
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if n != int64(len(archive)) || !bytes.Equal(buf.Bytes(), archive) {
			t.Fatalf("Expected %d archive bytes, got %d", len(archive), n)
		}
	}
	if hits.Load() != 2 {
		t.Errorf("Expected downloads to bypass the page cache, got %d requests", hits.Load())
	}
}

func TestClient_InvalidProxyIsIgnored(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("direct"))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.ProxyConnectionString = "://bad proxy"
	cfg.ClientTimeout = "not-a-duration"
	c := NewClient(cfg, nil, zerolog.Nop())
	defer c.Close()

	body, err := c.Fetch(context.Background(), server.URL)
	if err != nil || string(body) != "direct" {
		t.Fatalf("Expected direct fetch, got %q, %v", body, err)
	}
}

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	if newHostLimiter(0) != nil {
		t.Fatal("Expected a disabled limiter for rps 0")
	}
	var disabled *hostLimiter
	if err := disabled.Wait(context.Background(), "example.com"); err != nil {
		t.Fatalf("Expected disabled limiter not to wait, got %v", err)
	}

	lim := newHostLimiter(0.01)
	if err := lim.Wait(context.Background(), "a.example"); err != nil {
		t.Fatalf("First request should pass the burst: %v", err)
	}
	if err := lim.Wait(context.Background(), "b.example"); err != nil {
		t.Fatalf("Other hosts have their own budget: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := lim.Wait(ctx, "a.example"); err == nil {
		t.Fatal("Expected second request to the same host to be limited")
	}
}
