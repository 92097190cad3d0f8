package sources

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/client"
	"github.com/Belphemur/SubMatch/internal/config"
	"github.com/Belphemur/SubMatch/internal/models"
)

// newTestSource starts a server for handler and builds the named adapter
// against it, together with the fetcher it uses.
func newTestSource(t *testing.T, name string, handler http.Handler) (Adapter, DocumentFetcher) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.RequestsPerSecond = 0
	c := client.NewClient(cfg, nil, zerolog.Nop())

	adapters, err := Build([]string{name}, Dependencies{
		Fetcher:  c,
		Logger:   zerolog.Nop(),
		BaseURLs: map[string]string{name: server.URL},
	})
	if err != nil {
		t.Fatalf("Failed to build %s: %v", name, err)
	}
	return adapters[0], c
}

// newMediaRequest creates a media file of size bytes and the request for it.
func newMediaRequest(t *testing.T, language, fileName string, size int) *models.MediaRequest {
	t.Helper()

	path := filepath.Join(t.TempDir(), fileName)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("Failed to create media file: %v", err)
	}
	return models.NewMediaRequest(language, path)
}

func serveHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func testOptions() Options {
	return Options{PageConcurrency: 2, Logger: zerolog.Nop()}
}
