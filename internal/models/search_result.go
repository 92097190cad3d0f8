package models

import (
	"github.com/rs/zerolog"

	"github.com/Belphemur/SubMatch/internal/scoring"
)

// CandidateFile is one physical subtitle file offered by a remote result.
type CandidateFile struct {
	RemoteID       string
	Size           *int64   // nil when the source does not expose sizes
	KnownFileNames []string // media file names the source associates with this subtitle
	Score          int      // lower is better
}

// SearchResult is one remote subtitle package: a single download holding one
// or more candidate files.
type SearchResult struct {
	Source      string
	RemoteID    string
	DownloadURL string
	Trusted     bool
	Files       []CandidateFile
	Score       int // lower is better
}

// AddFile scores file against req and attaches it to the result.
func (r *SearchResult) AddFile(req *MediaRequest, file CandidateFile) {
	file.Score = scoring.FileScore(req.FileName, req.FileSize, file.KnownFileNames, file.Size)
	r.Files = append(r.Files, file)
}

// ComputeScore sets the result score from its files and trust flag.
// It must be called once every file has been attached.
func (r *SearchResult) ComputeScore() int {
	scores := make([]int, 0, len(r.Files))
	for _, f := range r.Files {
		scores = append(scores, f.Score)
	}
	r.Score = scoring.ResultScore(scores, r.Trusted)
	return r.Score
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *SearchResult) MarshalZerologObject(e *zerolog.Event) {
	e.Str("source", r.Source).
		Str("id", r.RemoteID).
		Str("downloadURL", r.DownloadURL).
		Bool("trusted", r.Trusted).
		Int("files", len(r.Files)).
		Int("score", r.Score)
}
