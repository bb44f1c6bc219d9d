package importer

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParsedName is the structured form of a media filename.
type ParsedName struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

// IsEpisode reports whether the name carries a season/episode marker.
func (p ParsedName) IsEpisode() bool { return p.Season > 0 || p.Episode > 0 }

var (
	episodePattern   = regexp.MustCompile(`(?i)\bS(\d{1,2})[ ._-]?E(\d{1,3})\b`)
	parenYearPattern = regexp.MustCompile(`[(\[](19\d{2}|20\d{2})[)\]]`)
	yearPattern      = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// ParseName extracts title, year and episode numbering from a filename.
// It handles both library-style names ("Heat (1995).mkv") and scene-style
// names ("Heat.1995.1080p.BluRay.mkv", "Fargo.S01E02.mkv").
func ParseName(name string) ParsedName {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var p ParsedName
	rest := base

	if m := episodePattern.FindStringSubmatchIndex(base); m != nil {
		p.Season, _ = strconv.Atoi(base[m[2]:m[3]])
		p.Episode, _ = strconv.Atoi(base[m[4]:m[5]])
		rest = base[:m[0]]
	}

	// A parenthesized year is authoritative; a bare year-like token could
	// be part of the title ("Blade Runner 2049").
	if m := parenYearPattern.FindStringSubmatchIndex(rest); m != nil {
		p.Year, _ = strconv.Atoi(rest[m[2]:m[3]])
		rest = rest[:m[0]]
	} else if m := yearPattern.FindStringSubmatchIndex(rest); m != nil {
		p.Year, _ = strconv.Atoi(rest[m[2]:m[3]])
		rest = rest[:m[0]]
	}

	p.Title = cleanTitle(rest)
	return p
}

// cleanTitle turns separator characters into spaces and strips the
// parenthesis/bracket leftovers around a removed year.
func cleanTitle(s string) string {
	s = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(s)
	s = strings.Trim(s, " ([")
	s = strings.TrimRight(s, " )]")
	return strings.Join(strings.Fields(s), " ")
}

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".m4v":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
}

// isVideo reports whether the path has a recognized video extension.
func isVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
