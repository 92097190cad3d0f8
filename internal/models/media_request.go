package models

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// seriesPattern matches "<title><S><season><E|X><episode>..." file names,
// e.g. The.Big.Bang.Theory.S05E23.720p.mkv
var seriesPattern = regexp.MustCompile(`^([A-Za-z0-9 .]*)[Ss]([0-9]{1,2})[EeXx]([0-9]{1,2}).*$`)

// MediaRequest describes the local media file a subtitle is searched for.
// It is built once per run and treated as read-only afterwards.
type MediaRequest struct {
	LanguageCode string
	Folder       string
	FileName     string
	Query        string
	Season       *int
	Episode      *int
	FileSize     *int64 // nil when the file does not exist locally
}

// NewMediaRequest builds a MediaRequest from a language code and a media path.
// It never fails: mandatory fields are validated by each source when it builds
// its query, since sources differ in what they require.
func NewMediaRequest(languageCode, path string) *MediaRequest {
	req := &MediaRequest{
		LanguageCode: languageCode,
		Folder:       ".",
		FileName:     path,
	}

	if idx := strings.LastIndexAny(path, "/"+string(os.PathSeparator)); idx != -1 {
		req.Folder = path[:idx]
		if req.Folder == "" {
			req.Folder = string(os.PathSeparator)
		}
		req.FileName = path[idx+1:]
	}

	if matches := seriesPattern.FindStringSubmatch(req.FileName); matches != nil {
		req.Query = normalizeQuery(matches[1])
		season, _ := strconv.Atoi(matches[2])
		episode, _ := strconv.Atoi(matches[3])
		req.Season = &season
		req.Episode = &episode
	} else {
		req.Query = normalizeQuery(stem(req.FileName))
	}

	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		size := info.Size()
		req.FileSize = &size
	}

	return req
}

// IsEpisode reports whether the file name carried season/episode markers.
func (r *MediaRequest) IsEpisode() bool {
	return r.Season != nil && r.Episode != nil
}

// SubtitlePath returns the path of the subtitle file written next to the media file.
func (r *MediaRequest) SubtitlePath() string {
	return filepath.Join(r.Folder, stem(r.FileName)+".srt")
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *MediaRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("language", r.LanguageCode).
		Str("folder", r.Folder).
		Str("filename", r.FileName).
		Str("query", r.Query)
	if r.IsEpisode() {
		e.Int("season", *r.Season).Int("episode", *r.Episode)
	}
	if r.FileSize != nil {
		e.Int64("filesize", *r.FileSize)
	}
}

// stem strips the last extension from a file name.
func stem(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx != -1 {
		return fileName[:idx]
	}
	return fileName
}

// normalizeQuery folds dots to spaces, trims and lower-cases.
func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ".", " ")))
}
