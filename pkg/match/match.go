// Package match estimates how well a candidate title matches a wanted title.
// It is used to attach a confidence level to metadata resolutions so callers
// can flag dubious matches.
package match

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence buckets a similarity score.
type Confidence int

const (
	None   Confidence = iota // score < 0.70
	Low                      // score >= 0.70
	Medium                   // score >= 0.85
	High                     // score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "none"
	}
}

// Score returns the Jaro-Winkler similarity of two titles after
// normalization, in [0, 1]. Jaro-Winkler favors shared prefixes, which
// suits consumer-facing media titles.
func Score(wanted, candidate string) float64 {
	return float64(edlib.JaroWinklerSimilarity(Normalize(wanted), Normalize(candidate)))
}

// Grade buckets a similarity score into a confidence level.
func Grade(score float64) Confidence {
	switch {
	case score >= 0.95:
		return High
	case score >= 0.85:
		return Medium
	case score >= 0.70:
		return Low
	}
	return None
}

// Normalize prepares a title for comparison: lowercase, accents stripped,
// leading articles removed, punctuation dropped, whitespace collapsed.
func Normalize(title string) string {
	s := strings.ToLower(title)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")

	// Subtitles after a colon keep their own leading article stripped
	// (e.g. "Léon: The Professional").
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
