package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
)

const (
	podnapisiName    = "podnapisi"
	podnapisiBaseURL = "http://www.podnapisi.net"

	pnHasResultSelector = ".premium_download"
	pnListingSelector   = ".subtitle_page_link"
	pnDownloadSelector  = ".big.download.button"
	pnInfoSelector      = ".information.parallel"
)

// Podnapisi searches podnapisi.net. The catalog exposes neither file sizes
// nor an uploader rank, so every file is scored on its name alone and no
// result is trusted.
type Podnapisi struct {
	baseURL string
}

// NewPodnapisi builds the podnapisi.net adapter.
func NewPodnapisi(deps Dependencies) Adapter {
	return &Podnapisi{baseURL: deps.baseURL(podnapisiBaseURL)}
}

func (p *Podnapisi) Name() string { return podnapisiName }

func (p *Podnapisi) BuildQuery(req *models.MediaRequest) (string, error) {
	if err := requireRequest(podnapisiName, req); err != nil {
		return "", err
	}
	query, err := encodeQuery(podnapisiName, req.Query)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(p.baseURL)
	sb.WriteString("/fr/ppodnapisi/search?sT=1&sJ=")
	sb.WriteString(podnapisiLanguages.lookup(req.LanguageCode))
	if req.Season != nil {
		fmt.Fprintf(&sb, "&sTS=%d", *req.Season)
	}
	if req.Episode != nil {
		fmt.Fprintf(&sb, "&sTE=%d", *req.Episode)
	}
	sb.WriteString("&sK=")
	sb.WriteString(query)
	return sb.String(), nil
}

func (p *Podnapisi) HasResults(page *goquery.Document) bool {
	return page.Find(pnHasResultSelector).Length() > 0
}

func (p *Podnapisi) CandidatePages(pageURL string, page *goquery.Document) ([]string, error) {
	if page.Find(pnDownloadSelector).Length() > 0 {
		return []string{pageURL}, nil
	}

	var pages []string
	page.Find(pnListingSelector).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if abs, err := resolve(p.baseURL, href); err == nil {
			pages = append(pages, abs)
		}
	})
	if len(pages) == 0 {
		return nil, apperrors.NewParseError(podnapisiName, pageURL, pnListingSelector)
	}
	return pages, nil
}

func (p *Podnapisi) ParseCandidate(_ context.Context, pageURL string, page *goquery.Document, req *models.MediaRequest) (*models.SearchResult, error) {
	href, ok := page.Find(pnDownloadSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, apperrors.NewParseError(podnapisiName, pageURL, pnDownloadSelector)
	}
	downloadURL, err := resolve(p.baseURL, href)
	if err != nil {
		return nil, apperrors.NewParseError(podnapisiName, pageURL, pnDownloadSelector)
	}

	info := page.Find(pnInfoSelector).First()
	id := strings.TrimSpace(info.Find("p").First().Find("span").Eq(1).Text())
	if id == "" {
		return nil, apperrors.NewParseError(podnapisiName, pageURL, pnInfoSelector+" p span")
	}

	result := &models.SearchResult{
		Source:      podnapisiName,
		RemoteID:    id,
		DownloadURL: downloadURL,
	}

	// One file per release name, identified by that name.
	page.Find(pnInfoSelector).Next().Filter("fieldset").Not(pnInfoSelector).Find("p a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}
		result.AddFile(req, models.CandidateFile{
			RemoteID:       name,
			KnownFileNames: []string{name},
		})
	})

	result.ComputeScore()
	return result, nil
}
