package sources

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
	"github.com/Belphemur/SubMatch/internal/testutil"
)

func TestFeliratok_BuildQuery(t *testing.T) {
	t.Parallel()

	adapter := NewFeliratok(Dependencies{})

	got, err := adapter.BuildQuery(models.NewMediaRequest("hun", "/media/The.Show.S01E02.720p.mkv"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "https://feliratok.eu/index.php?search=the+show&nyelv=Magyar&evad=1&epizod1=2&complexsearch=true&tab=all"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	got, err = adapter.BuildQuery(models.NewMediaRequest("ger", "/media/Movie.Name.2010.mkv"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want = "https://feliratok.eu/index.php?search=movie+name+2010&nyelv=N%C3%A9met&complexsearch=true&tab=all"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	if _, err := adapter.BuildQuery(models.NewMediaRequest("hun", "/media/S01E01.mkv")); !errors.Is(err, &apperrors.ErrRequest{}) {
		t.Errorf("Expected ErrRequest for empty query, got %v", err)
	}
}

type feliratokSite struct {
	search       string
	detailServed atomic.Int32
}

func (s *feliratokSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("tipus") != "adatlap" {
		serveHTML(w, s.search)
		return
	}

	s.detailServed.Add(1)
	switch q.Get("azon") {
	case "a_1001":
		serveHTML(w, testutil.GenerateFeliratokDetailHTML(testutil.FeliratokDetailOptions{
			SubtitleID:   1001,
			FileName:     "The.Show.S01E02.720p.srt",
			Uploader:     "Anonymus",
			UploaderBold: true,
		}))
	case "a_1002":
		serveHTML(w, testutil.GenerateFeliratokDetailHTML(testutil.FeliratokDetailOptions{
			SubtitleID: 1002,
			FileName:   "The.Show.S01E02.HDTV.srt",
			Uploader:   "someone",
		}))
	default:
		http.NotFound(w, r)
	}
}

func TestFeliratok_Search_Listing(t *testing.T) {
	t.Parallel()

	site := &feliratokSite{search: testutil.GenerateFeliratokListingHTML([]testutil.FeliratokRowOptions{
		{SubtitleID: 1001, MagyarTitle: "A sorozat - 1x02", EredetiTitle: "The Show - 1x02 (720p)", Uploader: "Anonymus", UploaderBold: true, DownloadFilename: "The.Show.S01E02.720p.srt"},
		{SubtitleID: 1002, MagyarTitle: "A sorozat - 1x02", EredetiTitle: "The Show - 1x02 (HDTV)", Uploader: "someone", DownloadFilename: "The.Show.S01E02.HDTV.srt"},
	})}
	adapter, fetcher := newTestSource(t, "feliratok", site)
	req := newMediaRequest(t, "hun", "The.Show.S01E02.720p.mkv", 4096)

	results, err := Search(context.Background(), adapter, fetcher, req, testOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if served := site.detailServed.Load(); served != 2 {
		t.Errorf("Expected each detail sheet to be fetched once, got %d fetches", served)
	}

	trusted := results[0]
	if trusted.RemoteID != "1001" || !trusted.Trusted {
		t.Errorf("Expected trusted result 1001, got %s (trusted=%v)", trusted.RemoteID, trusted.Trusted)
	}
	if !strings.Contains(trusted.DownloadURL, "felirat=1001") {
		t.Errorf("Expected download URL for 1001, got %s", trusted.DownloadURL)
	}
	if len(trusted.Files) != 1 || trusted.Files[0].KnownFileNames[0] != "The.Show.S01E02.720p.srt" {
		t.Errorf("Expected the detail file name, got %+v", trusted.Files)
	}
	// Distance 3 over 24 runes gives 12, then (12*5 + 50*2) / 7 = 22, trusted 20.
	if trusted.Score != 20 {
		t.Errorf("Expected score 20, got %d", trusted.Score)
	}

	if results[1].Trusted {
		t.Error("Expected result 1002 not to be trusted")
	}
	if results[1].Score <= trusted.Score {
		t.Errorf("Expected result 1002 to score worse than %d, got %d", trusted.Score, results[1].Score)
	}
}

func TestFeliratok_Search_DetailPage(t *testing.T) {
	t.Parallel()

	site := &feliratokSite{search: testutil.GenerateFeliratokDetailHTML(testutil.FeliratokDetailOptions{
		SubtitleID: 42,
		FileName:   "The.Show.S01E02.720p.srt",
		Uploader:   "someone",
	})}
	adapter, fetcher := newTestSource(t, "feliratok", site)
	req := newMediaRequest(t, "hun", "The.Show.S01E02.720p.mkv", 4096)

	results, err := Search(context.Background(), adapter, fetcher, req, testOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].RemoteID != "42" {
		t.Fatalf("Expected the single result 42, got %v", results)
	}
	if site.detailServed.Load() != 0 {
		t.Error("Expected the search page to be reused as the detail page")
	}
}

func TestFeliratok_Search_NoResults(t *testing.T) {
	t.Parallel()

	adapter, fetcher := newTestSource(t, "feliratok", &feliratokSite{search: testutil.GenerateFeliratokNoResultHTML()})
	req := newMediaRequest(t, "hun", "The.Show.S01E02.720p.mkv", 4096)

	if _, err := Search(context.Background(), adapter, fetcher, req, testOptions()); !errors.Is(err, &apperrors.ErrNoResults{}) {
		t.Errorf("Expected ErrNoResults, got %v", err)
	}
}

func TestFeliratok_Search_MissingDetail(t *testing.T) {
	t.Parallel()

	site := &feliratokSite{search: testutil.GenerateFeliratokListingHTML([]testutil.FeliratokRowOptions{
		{SubtitleID: 1001, DownloadFilename: "a.srt"},
		{SubtitleID: 3003, DownloadFilename: "b.srt"},
	})}
	adapter, fetcher := newTestSource(t, "feliratok", site)
	req := newMediaRequest(t, "hun", "The.Show.S01E02.720p.mkv", 4096)

	_, err := Search(context.Background(), adapter, fetcher, req, testOptions())
	if !errors.Is(err, &apperrors.ErrFetch{}) {
		t.Errorf("Expected ErrFetch for the missing detail sheet, got %v", err)
	}
}
