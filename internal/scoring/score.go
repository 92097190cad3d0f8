// Package scoring ranks subtitle candidates against the local media file.
// Every score is lower-is-better and uses integer arithmetic with truncation.
package scoring

import "unicode/utf8"

const (
	// DefaultFileNameScore is used when a candidate has no known file names.
	DefaultFileNameScore = 100
	// DefaultFileSizeScore is used when either side of the size comparison is unknown.
	DefaultFileSizeScore = 50
	// DefaultResultScore is used for a result without files.
	DefaultResultScore = 100

	fileNameWeight = 5
	fileSizeWeight = 2
	trustedPercent = 95
)

// FileNameScore returns the smallest edit distance between requestName and
// any of knownNames, as a percentage of the request name length.
func FileNameScore(requestName string, knownNames []string) int {
	length := utf8.RuneCountInString(requestName)
	if len(knownNames) == 0 || length == 0 {
		return DefaultFileNameScore
	}

	best := -1
	for _, name := range knownNames {
		if d := Distance(requestName, name); best < 0 || d < best {
			best = d
		}
	}
	return best * 100 / length
}

// FileSizeScore returns the size difference as a percentage of the request size.
func FileSizeScore(requestSize, candidateSize *int64) int {
	if requestSize == nil || candidateSize == nil || *requestSize <= 0 {
		return DefaultFileSizeScore
	}

	diff := *candidateSize - *requestSize
	if diff < 0 {
		diff = -diff
	}
	return int(diff * 100 / *requestSize)
}

// FileScore combines the name and size scores with a 5:2 weighting.
func FileScore(requestName string, requestSize *int64, knownNames []string, candidateSize *int64) int {
	nameScore := FileNameScore(requestName, knownNames)
	sizeScore := FileSizeScore(requestSize, candidateSize)
	return (nameScore*fileNameWeight + sizeScore*fileSizeWeight) / (fileNameWeight + fileSizeWeight)
}

// ResultScore keeps the best file score of a result and applies a 5% discount
// to trusted results.
func ResultScore(fileScores []int, trusted bool) int {
	score := DefaultResultScore
	if len(fileScores) > 0 {
		score = fileScores[0]
		for _, s := range fileScores[1:] {
			score = min(score, s)
		}
	}

	if trusted {
		score = score * trustedPercent / 100
	}
	return score
}
