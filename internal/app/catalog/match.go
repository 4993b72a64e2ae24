package catalog

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/deluan/sanitize"

	"github.com/osa030/surabhi/internal/domain/track"
)

// maxMatchDistance is the edit distance tolerated on short titles. Longer
// titles allow one more edit per lengthStep characters.
const (
	maxMatchDistance = 3
	lengthStep       = 8
)

var (
	bracketed       = regexp.MustCompile(`\s*[\(\[].*?[\)\]]`)
	featuring       = regexp.MustCompile(`\s+(feat\.?|ft\.?|featuring)\s.*$`)
	nonWord         = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	creditSeparator = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b|\bfeat\.?|\bft\.?|\bfeaturing\b)\s*`)
)

// normalizeForMatching lowercases s, folds accents and drops bracketed
// suffixes, featured artists and punctuation.
func normalizeForMatching(s string) string {
	s = strings.ToLower(sanitize.Accents(s))
	s = bracketed.ReplaceAllString(s, "")
	s = featuring.ReplaceAllString(s, "")
	if i := strings.Index(s, " - "); i > 0 {
		s = s[:i]
	}
	s = nonWord.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimPrefix(s, "the ")
}

// credits splits an artist credit into normalized names.
func credits(artist string) []string {
	var names []string
	for _, part := range creditSeparator.Split(artist, -1) {
		if n := normalizeForMatching(part); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// matchDistance scores how far candidate is from title and artist.
// Returns -1 when the candidate is not an acceptable match.
func matchDistance(candidate track.Track, title, artist string) int {
	wantTitle := normalizeForMatching(title)
	gotTitle := normalizeForMatching(candidate.Title)
	if wantTitle == "" || gotTitle == "" {
		return -1
	}

	titleDist := levenshtein.ComputeDistance(wantTitle, gotTitle)
	if titleDist > maxMatchDistance+len(wantTitle)/lengthStep {
		return -1
	}

	// Compilations credit several artists; any one of them may match
	wanted := credits(artist)
	if len(wanted) == 0 {
		return titleDist
	}
	artistDist := -1
	for _, got := range credits(candidate.Artist) {
		d := levenshtein.ComputeDistance(wanted[0], got)
		if artistDist < 0 || d < artistDist {
			artistDist = d
		}
	}
	if artistDist < 0 || artistDist > maxMatchDistance {
		return -1
	}

	return titleDist + artistDist
}

// bestMatch returns the candidate closest to title and artist.
// Ties keep the provider's order.
func bestMatch(candidates []track.Track, title, artist string) (track.Track, bool) {
	best, bestDist := track.Track{}, -1
	for _, c := range candidates {
		d := matchDistance(c, title, artist)
		if d < 0 {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}
