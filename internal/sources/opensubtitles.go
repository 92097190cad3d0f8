package sources

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/apperrors"
	"github.com/Belphemur/SubMatch/internal/models"
)

const (
	openSubtitlesName    = "opensubtitles"
	openSubtitlesBaseURL = "http://www.opensubtitles.org"

	osNoResultSelector  = ".msg.warn"
	osDetailSelector    = "#app_link"
	osListingSelector   = ".change.expandable a.bnone"
	osDownloadSelector  = ".msg h1 a"
	osFileSizeSelector  = "#sub_subtitle_preview + div img:not([style])[alt] ~ a[title*=Taille]"
	osTrustedSelector   = `img[src$="/gfx/icons/ranks/trusted.png"]`
	osFileNamesSelector = "a"
)

var toggleFileNamePattern = regexp.MustCompile(`ToggleMovieFileName\('(\d+)'\)`)

// OpenSubtitles searches opensubtitles.org. Search parameters are path
// segments; every subtitle file lists the media file names it was synced
// against on a separate page.
type OpenSubtitles struct {
	baseURL string
	fetcher DocumentFetcher
	logger  zerolog.Logger
}

// NewOpenSubtitles builds the opensubtitles.org adapter.
func NewOpenSubtitles(deps Dependencies) Adapter {
	return &OpenSubtitles{
		baseURL: deps.baseURL(openSubtitlesBaseURL),
		fetcher: deps.Fetcher,
		logger:  deps.Logger.With().Str("source", openSubtitlesName).Logger(),
	}
}

func (o *OpenSubtitles) Name() string { return openSubtitlesName }

func (o *OpenSubtitles) BuildQuery(req *models.MediaRequest) (string, error) {
	if err := requireRequest(openSubtitlesName, req); err != nil {
		return "", err
	}
	query, err := encodeQuery(openSubtitlesName, req.Query)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(o.baseURL)
	sb.WriteString("/fr/search2/sublanguageid-")
	sb.WriteString(req.LanguageCode)
	if req.Season != nil {
		fmt.Fprintf(&sb, "/season-%d", *req.Season)
	}
	if req.Episode != nil {
		fmt.Fprintf(&sb, "/episode-%d", *req.Episode)
	}
	sb.WriteString("/subformat-srt/moviename-")
	sb.WriteString(query)
	return sb.String(), nil
}

func (o *OpenSubtitles) HasResults(page *goquery.Document) bool {
	return page.Find(osNoResultSelector).Length() == 0
}

func (o *OpenSubtitles) CandidatePages(pageURL string, page *goquery.Document) ([]string, error) {
	if page.Find(osDetailSelector).Length() > 0 {
		return []string{pageURL}, nil
	}

	var pages []string
	page.Find(osListingSelector).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if abs, err := resolve(o.baseURL, href); err == nil {
			pages = append(pages, abs)
		}
	})
	if len(pages) == 0 {
		return nil, apperrors.NewParseError(openSubtitlesName, pageURL, osListingSelector)
	}
	return pages, nil
}

func (o *OpenSubtitles) ParseCandidate(ctx context.Context, pageURL string, page *goquery.Document, req *models.MediaRequest) (*models.SearchResult, error) {
	href, ok := page.Find(osDownloadSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, apperrors.NewParseError(openSubtitlesName, pageURL, osDownloadSelector)
	}
	downloadURL, err := resolve(o.baseURL, href)
	if err != nil {
		return nil, apperrors.NewParseError(openSubtitlesName, pageURL, osDownloadSelector)
	}

	result := &models.SearchResult{
		Source:      openSubtitlesName,
		RemoteID:    lastPathSegment(href),
		DownloadURL: downloadURL,
		Trusted:     page.Find(osTrustedSelector).Length() > 0,
	}

	var files []models.CandidateFile
	page.Find(osFileSizeSelector).Each(func(_ int, sizeLink *goquery.Selection) {
		file := models.CandidateFile{}
		if size, err := strconv.ParseInt(strings.TrimSpace(sizeLink.Text()), 10, 64); err == nil {
			file.Size = &size
		} else {
			o.logger.Debug().Str("size", sizeLink.Text()).Str("url", pageURL).Msg("Ignoring unparsable file size")
		}
		onclick, _ := sizeLink.Next().Attr("onclick")
		if m := toggleFileNamePattern.FindStringSubmatch(onclick); m != nil {
			file.RemoteID = m[1]
		}
		files = append(files, file)
	})

	for _, file := range files {
		if file.RemoteID != "" {
			names, err := o.fileNames(ctx, file.RemoteID)
			if err != nil {
				return nil, err
			}
			file.KnownFileNames = names
		}
		result.AddFile(req, file)
	}

	result.ComputeScore()
	return result, nil
}

// fileNames fetches the media file names a subtitle file was synced against.
func (o *OpenSubtitles) fileNames(ctx context.Context, fileID string) ([]string, error) {
	doc, err := o.fetcher.FetchDocument(ctx, o.baseURL+"/fr/moviefilename?idsubmoviefile="+fileID)
	if err != nil {
		return nil, fmt.Errorf("%s: file names of %s: %w", openSubtitlesName, fileID, err)
	}

	var names []string
	doc.Find(osFileNamesSelector).Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			names = append(names, name)
		}
	})
	return names, nil
}

func lastPathSegment(href string) string {
	href = strings.TrimRight(href, "/")
	return href[strings.LastIndex(href, "/")+1:]
}
