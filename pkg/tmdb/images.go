package tmdb

// Image paths in API responses are relative ("/abc123.jpg"); URLs are
// composed from a fixed host plus a size bucket. Each image type has its
// own enumerated bucket set; an unsupported size falls back to the type's
// default instead of failing.

const imageBaseURL = "https://image.tmdb.org/t/p/"

const (
	DefaultPosterSize   = "w342"
	DefaultBackdropSize = "w780"
)

var posterSizes = map[string]bool{
	"w92": true, "w154": true, "w185": true, "w342": true,
	"w500": true, "w780": true, "original": true,
}

var backdropSizes = map[string]bool{
	"w300": true, "w780": true, "w1280": true, "original": true,
}

// PosterURL composes the absolute poster URL for a relative path.
// Returns "" for an empty path.
func PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	if !posterSizes[size] {
		size = DefaultPosterSize
	}
	return imageBaseURL + size + path
}

// BackdropURL composes the absolute backdrop URL for a relative path.
// Returns "" for an empty path.
func BackdropURL(path, size string) string {
	if path == "" {
		return ""
	}
	if !backdropSizes[size] {
		size = DefaultBackdropSize
	}
	return imageBaseURL + size + path
}
