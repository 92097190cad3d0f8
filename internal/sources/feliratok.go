package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
)

const (
	feliratokName    = "feliratok"
	feliratokBaseURL = "https://feliratok.eu"

	ftListingSelector  = "table.result td[onclick]"
	ftDetailSelector   = "div.adatlapTabla"
	ftRowSelector      = "div.adatlapRow"
	ftDownloadSelector = `a[href*="action=letolt"]`

	ftFileNameLabel = "Fájlnév:"
	ftUploaderLabel = "Feltöltő:"
)

var detailOpenPattern = regexp.MustCompile(`adatlapnyitas\('a_(\d+)'\)`)

// Feliratok searches feliratok.eu. Listing rows open an inline detail sheet
// that is also reachable on its own; uploaders vetted by the site are
// rendered in bold.
type Feliratok struct {
	baseURL string
}

// NewFeliratok builds the feliratok.eu adapter.
func NewFeliratok(deps Dependencies) Adapter {
	return &Feliratok{baseURL: deps.baseURL(feliratokBaseURL)}
}

func (f *Feliratok) Name() string { return feliratokName }

func (f *Feliratok) BuildQuery(req *models.MediaRequest) (string, error) {
	if err := requireRequest(feliratokName, req); err != nil {
		return "", err
	}
	query, err := encodeQuery(feliratokName, req.Query)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(f.baseURL)
	sb.WriteString("/index.php?search=")
	sb.WriteString(query)
	sb.WriteString("&nyelv=")
	sb.WriteString(url.QueryEscape(feliratokLanguages.lookup(req.LanguageCode)))
	if req.Season != nil {
		fmt.Fprintf(&sb, "&evad=%d", *req.Season)
	}
	if req.Episode != nil {
		fmt.Fprintf(&sb, "&epizod1=%d", *req.Episode)
	}
	sb.WriteString("&complexsearch=true&tab=all")
	return sb.String(), nil
}

func (f *Feliratok) HasResults(page *goquery.Document) bool {
	return page.Find(ftListingSelector).Length() > 0 || page.Find(ftDetailSelector).Length() > 0
}

func (f *Feliratok) CandidatePages(pageURL string, page *goquery.Document) ([]string, error) {
	if page.Find(ftDetailSelector).Length() > 0 {
		return []string{pageURL}, nil
	}

	// Every cell of a row carries the same onclick handler.
	seen := make(map[string]bool)
	var pages []string
	page.Find(ftListingSelector).Each(func(_ int, cell *goquery.Selection) {
		onclick, _ := cell.Attr("onclick")
		m := detailOpenPattern.FindStringSubmatch(onclick)
		if m == nil || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		pages = append(pages, f.baseURL+"/index.php?tipus=adatlap&azon=a_"+m[1])
	})
	if len(pages) == 0 {
		return nil, apperrors.NewParseError(feliratokName, pageURL, ftListingSelector)
	}
	return pages, nil
}

func (f *Feliratok) ParseCandidate(_ context.Context, pageURL string, page *goquery.Document, req *models.MediaRequest) (*models.SearchResult, error) {
	href, ok := page.Find(ftDownloadSelector).First().Attr("href")
	if !ok {
		return nil, apperrors.NewParseError(feliratokName, pageURL, ftDownloadSelector)
	}
	downloadURL, err := resolve(f.baseURL, href)
	if err != nil {
		return nil, apperrors.NewParseError(feliratokName, pageURL, ftDownloadSelector)
	}
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return nil, apperrors.NewParseError(feliratokName, pageURL, ftDownloadSelector)
	}
	params := parsed.Query()
	id := params.Get("felirat")
	if id == "" {
		return nil, apperrors.NewParseError(feliratokName, pageURL, ftDownloadSelector+" felirat")
	}

	result := &models.SearchResult{
		Source:      feliratokName,
		RemoteID:    id,
		DownloadURL: downloadURL,
	}

	fileName := params.Get("fnev")
	page.Find(ftRowSelector).Each(func(_ int, row *goquery.Selection) {
		spans := row.ChildrenFiltered("span")
		value := spans.Eq(1)
		switch strings.TrimSpace(spans.First().Text()) {
		case ftFileNameLabel:
			if name := strings.TrimSpace(value.Text()); name != "" {
				fileName = name
			}
		case ftUploaderLabel:
			result.Trusted = value.Find("b").Length() > 0
		}
	})

	file := models.CandidateFile{RemoteID: id}
	if fileName != "" {
		file.KnownFileNames = []string{fileName}
	}
	result.AddFile(req, file)
	result.ComputeScore()
	return result, nil
}
