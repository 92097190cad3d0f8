package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/failsafe-go/failsafe-go/timeout"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/metrics"
	"github.com/Belphemur/SubMatch/internal/models"
	"github.com/Belphemur/SubMatch/internal/sources"
)

// fakeAdapter lists a fixed number of candidate pages, each scored 50.
type fakeAdapter struct {
	name    string
	results int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) BuildQuery(*models.MediaRequest) (string, error) {
	return "fake://" + a.name + "/search", nil
}

func (a *fakeAdapter) HasResults(*goquery.Document) bool { return a.results > 0 }

func (a *fakeAdapter) CandidatePages(pageURL string, _ *goquery.Document) ([]string, error) {
	pages := make([]string, a.results)
	for i := range pages {
		pages[i] = fmt.Sprintf("fake://%s/%d", a.name, i)
	}
	return pages, nil
}

func (a *fakeAdapter) ParseCandidate(_ context.Context, pageURL string, _ *goquery.Document, _ *models.MediaRequest) (*models.SearchResult, error) {
	return &models.SearchResult{Source: a.name, RemoteID: pageURL, Score: 50}, nil
}

// fakeFetcher fails or blocks for the sources it is told about.
type fakeFetcher struct {
	failing map[string]error
	hanging map[string]bool
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	source := strings.SplitN(strings.TrimPrefix(pageURL, "fake://"), "/", 2)[0]
	if f.hanging[source] {
		<-ctx.Done()
		return nil, apperrors.NewFetchError(pageURL, ctx.Err())
	}
	if err := f.failing[source]; err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader("<html></html>"))
}

func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	var m dto.Metric
	if err := cv.WithLabelValues(labels...).Write(&m); err != nil {
		t.Fatalf("Failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func newCoordinator(fetcher *fakeFetcher, opts CoordinatorOptions, adapters ...sources.Adapter) *SearchCoordinator {
	return NewSearchCoordinator(adapters, fetcher, opts, zerolog.Nop())
}

func testRequest() *models.MediaRequest {
	return &models.MediaRequest{LanguageCode: "fre", Query: "movie", FileName: "movie.mkv"}
}

func TestSearchCoordinator_PartialFailure(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{failing: map[string]error{
		"partial-a": apperrors.NewFetchStatusError("fake://partial-a/search", 500),
		"partial-c": apperrors.NewFetchError("fake://partial-c/search", errors.New("connection reset")),
	}}
	c := newCoordinator(fetcher, CoordinatorOptions{SourceTimeout: time.Second},
		&fakeAdapter{name: "partial-a"},
		&fakeAdapter{name: "partial-b", results: 3},
		&fakeAdapter{name: "partial-c"},
	)

	outcome, err := c.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(outcome.Results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(outcome.Results))
	}
	if len(outcome.Failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d", len(outcome.Failures))
	}
	if outcome.Failures[0].Source != "partial-a" || outcome.Failures[1].Source != "partial-c" {
		t.Errorf("Expected failures in adapter order, got %s, %s", outcome.Failures[0].Source, outcome.Failures[1].Source)
	}
	for _, f := range outcome.Failures {
		if !errors.Is(f.Err, &apperrors.ErrFetch{}) {
			t.Errorf("Expected ErrFetch for %s, got %v", f.Source, f.Err)
		}
	}

	if got := counterValue(t, metrics.SourceSearchesTotal, "partial-b", metrics.StatusSuccess); got != 1 {
		t.Errorf("Expected 1 successful search for partial-b, got %v", got)
	}
	if got := counterValue(t, metrics.SourceResultsTotal, "partial-b"); got != 3 {
		t.Errorf("Expected 3 results counted for partial-b, got %v", got)
	}
}

func TestSearchCoordinator_AllFail(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{failing: map[string]error{
		"down-a": apperrors.NewFetchStatusError("fake://down-a/search", 502),
		"down-b": apperrors.NewFetchStatusError("fake://down-b/search", 503),
	}}
	c := newCoordinator(fetcher, CoordinatorOptions{},
		&fakeAdapter{name: "down-a", results: 1},
		&fakeAdapter{name: "down-b", results: 1},
	)

	outcome, err := c.Search(context.Background(), testRequest())
	var aggregate *apperrors.ErrAggregate
	if !errors.As(err, &aggregate) {
		t.Fatalf("Expected ErrAggregate, got %v", err)
	}
	if len(aggregate.Errors) != 2 {
		t.Fatalf("Expected 2 aggregated errors, got %d", len(aggregate.Errors))
	}
	var first *apperrors.ErrFetch
	if !errors.As(aggregate.Errors[0], &first) || first.StatusCode != 502 {
		t.Errorf("Expected the first error to come from down-a, got %v", aggregate.Errors[0])
	}
	if outcome == nil || len(outcome.Results) != 0 || len(outcome.Failures) != 2 {
		t.Errorf("Expected an empty outcome with 2 failures, got %+v", outcome)
	}
}

func TestSearchCoordinator_NoResultsIsSuccess(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{failing: map[string]error{
		"empty-b": apperrors.NewFetchStatusError("fake://empty-b/search", 500),
	}}
	c := newCoordinator(fetcher, CoordinatorOptions{},
		&fakeAdapter{name: "empty-a"},
		&fakeAdapter{name: "empty-b", results: 2},
	)

	outcome, err := c.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if len(outcome.Results) != 0 || len(outcome.Failures) != 1 {
		t.Errorf("Expected no results and 1 failure, got %d and %d", len(outcome.Results), len(outcome.Failures))
	}
	if got := counterValue(t, metrics.SourceSearchesTotal, "empty-a", metrics.StatusNoResults); got != 1 {
		t.Errorf("Expected 1 no_results search for empty-a, got %v", got)
	}
}

func TestSearchCoordinator_SourceTimeout(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{hanging: map[string]bool{"slow": true}}
	c := newCoordinator(fetcher, CoordinatorOptions{SourceTimeout: 50 * time.Millisecond},
		&fakeAdapter{name: "slow", results: 1},
		&fakeAdapter{name: "fast", results: 2},
	)

	start := time.Now()
	outcome, err := c.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Expected the slow source to be cut off, search took %v", elapsed)
	}
	if len(outcome.Results) != 2 {
		t.Errorf("Expected 2 results from the fast source, got %d", len(outcome.Results))
	}
	if len(outcome.Failures) != 1 || outcome.Failures[0].Source != "slow" {
		t.Fatalf("Expected the slow source to fail, got %+v", outcome.Failures)
	}
	if !errors.Is(outcome.Failures[0].Err, timeout.ErrExceeded) {
		t.Errorf("Expected timeout error, got %v", outcome.Failures[0].Err)
	}
	if got := counterValue(t, metrics.SourceSearchesTotal, "slow", metrics.StatusTimeout); got != 1 {
		t.Errorf("Expected 1 timed out search, got %v", got)
	}
}

func TestSearchCoordinator_NoSources(t *testing.T) {
	t.Parallel()

	_, err := newCoordinator(&fakeFetcher{}, CoordinatorOptions{}).Search(context.Background(), testRequest())
	if !errors.Is(err, &apperrors.ErrRequest{}) {
		t.Errorf("Expected ErrRequest, got %v", err)
	}
}

func TestSearchCoordinator_ResultsInAdapterOrder(t *testing.T) {
	t.Parallel()

	c := newCoordinator(&fakeFetcher{}, CoordinatorOptions{PageConcurrency: 2},
		&fakeAdapter{name: "order-a", results: 2},
		&fakeAdapter{name: "order-b", results: 1},
	)

	outcome, err := c.Search(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{"fake://order-a/0", "fake://order-a/1", "fake://order-b/0"}
	for i, r := range outcome.Results {
		if r.RemoteID != want[i] {
			t.Errorf("Expected result %d to be %s, got %s", i, want[i], r.RemoteID)
		}
	}

	// Equal scores: the first adapter's first result wins.
	best, _ := SelectBest(outcome.Results)
	if best.RemoteID != "fake://order-a/0" {
		t.Errorf("Expected fake://order-a/0, got %s", best.RemoteID)
	}
}
