// Package rank orders provider search candidates by relevance to a free-text
// query. The ranking is what lets a local title resolve to the right external
// identity without the caller knowing the provider's id.
package rank

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vmunix/streamgo/pkg/tmdb"
)

// TopN bounds the ranked output to cap downstream cost.
const TopN = 15

const (
	exactBonus     = 10000
	prefixBonus    = 5000
	substringBonus = 1000
	lengthBonusMax = 100
)

// Score computes the relevance of one candidate title for a query.
// Comparison is case-insensitive on trimmed strings. The text bonus is
// tiered (exact beats prefix beats substring, not cumulative), a length
// proximity bonus rewards titles close to the query's length, and the
// provider popularity is added unconditionally.
func Score(query, title string, popularity float64) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(title))

	var score float64
	switch {
	case t == q:
		score = exactBonus
	case strings.HasPrefix(t, q):
		score = prefixBonus
	case strings.Contains(t, q):
		score = substringBonus
	}

	diff := utf8.RuneCountInString(t) - utf8.RuneCountInString(q)
	if diff < 0 {
		diff = -diff
	}
	if diff > lengthBonusMax {
		diff = lengthBonusMax
	}
	score += float64(lengthBonusMax - diff)

	return score + popularity
}

// Rank orders candidates most relevant first and truncates to TopN.
// The result is deterministic for identical inputs: ties on score prefer
// the shorter candidate title, and remaining ties keep input order.
func Rank(query string, candidates []tmdb.SearchResult) []tmdb.SearchResult {
	ranked := make([]tmdb.SearchResult, len(candidates))
	copy(ranked, candidates)

	scores := make([]float64, len(ranked))
	for i, c := range ranked {
		scores[i] = Score(query, c.Title, c.Popularity)
	}

	// Indirect sort keeps scores aligned with candidates.
	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		// Shorter titles are more likely the plain consumer-facing name
		// than a long disambiguating one.
		return utf8.RuneCountInString(ranked[i].Title) < utf8.RuneCountInString(ranked[j].Title)
	})

	out := make([]tmdb.SearchResult, 0, min(len(ranked), TopN))
	for _, i := range idx {
		if len(out) == TopN {
			break
		}
		out = append(out, ranked[i])
	}
	return out
}
