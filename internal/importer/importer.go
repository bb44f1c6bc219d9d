// Package importer walks the library roots on disk and feeds what it
// finds into the catalog.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
)

// Config for the scanner.
type Config struct {
	MovieRoot  string
	SeriesRoot string
}

// Scanner discovers media files under the configured roots and registers
// titles, episodes and files in the catalog. Scans are idempotent: paths
// already known to the catalog are skipped.
type Scanner struct {
	fs    afero.Fs
	store *catalog.Store
	bus   *events.Bus
	cfg   Config
	log   *slog.Logger
}

// NewScanner creates a scanner over the given filesystem. Pass
// afero.NewOsFs() in production.
func NewScanner(fsys afero.Fs, store *catalog.Store, bus *events.Bus, cfg Config, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		fs:    fsys,
		store: store,
		bus:   bus,
		cfg:   cfg,
		log:   log.With("component", "scanner"),
	}
}

// Result summarizes one scan pass.
type Result struct {
	TitlesAdded   int
	EpisodesAdded int
	FilesAdded    int
	Skipped       int
}

// Scan walks both library roots. A missing root is skipped, not an
// error, so a movies-only setup works without a series directory.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	res := &Result{}

	if s.cfg.MovieRoot != "" {
		if err := s.scanRoot(ctx, s.cfg.MovieRoot, res, s.addMovieFile); err != nil {
			return res, fmt.Errorf("scan movies: %w", err)
		}
	}
	if s.cfg.SeriesRoot != "" {
		if err := s.scanRoot(ctx, s.cfg.SeriesRoot, res, s.addSeriesFile); err != nil {
			return res, fmt.Errorf("scan series: %w", err)
		}
	}

	s.log.Info("scan complete",
		"titles_added", res.TitlesAdded,
		"episodes_added", res.EpisodesAdded,
		"files_added", res.FilesAdded,
		"skipped", res.Skipped)
	return res, nil
}

type fileHandler func(ctx context.Context, root, path string, size int64, res *Result) error

func (s *Scanner) scanRoot(ctx context.Context, root string, res *Result, handle fileHandler) error {
	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return err
	}
	if !exists {
		s.log.Warn("library root missing, skipping", "root", root)
		return nil
	}

	return afero.Walk(s.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() || !isVideo(path) {
			return nil
		}

		if _, err := s.store.GetFileByPath(path); err == nil {
			res.Skipped++
			return nil
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return err
		}

		if err := handle(ctx, root, path, info.Size(), res); err != nil {
			// One unparseable or conflicting file must not abort the walk.
			s.log.Warn("skipping file", "path", path, "error", err)
			res.Skipped++
		}
		return nil
	})
}

func (s *Scanner) addMovieFile(ctx context.Context, root, path string, size int64, res *Result) error {
	parsed := ParseName(path)
	if parsed.Title == "" {
		return fmt.Errorf("no title in %q", filepath.Base(path))
	}
	if parsed.IsEpisode() {
		return fmt.Errorf("episode numbering in movie root: %q", filepath.Base(path))
	}

	title, err := s.findOrAddTitle(ctx, catalog.KindMovie, parsed.Title, parsed.Year, res)
	if err != nil {
		return err
	}

	return s.addFile(ctx, catalog.MovieTarget(title.ID), title.ID, path, size, res)
}

func (s *Scanner) addSeriesFile(ctx context.Context, root, path string, size int64, res *Result) error {
	parsed := ParseName(path)
	if !parsed.IsEpisode() {
		return fmt.Errorf("no episode numbering in %q", filepath.Base(path))
	}

	seriesName, seriesYear := parsed.Title, parsed.Year
	if dir := seriesDir(root, path); dir != "" {
		dirParsed := ParseName(dir)
		if dirParsed.Title != "" {
			seriesName, seriesYear = dirParsed.Title, dirParsed.Year
		}
	}
	if seriesName == "" {
		return fmt.Errorf("no series name for %q", filepath.Base(path))
	}

	series, err := s.findOrAddTitle(ctx, catalog.KindSeries, seriesName, seriesYear, res)
	if err != nil {
		return err
	}

	episode, err := s.store.GetEpisodeByNumber(series.ID, parsed.Season, parsed.Episode)
	if errors.Is(err, catalog.ErrNotFound) {
		episode = &catalog.Episode{SeriesID: series.ID, Season: parsed.Season, Episode: parsed.Episode}
		if err := s.store.AddEpisode(episode); err != nil {
			return err
		}
		res.EpisodesAdded++
	} else if err != nil {
		return err
	}

	return s.addFile(ctx, catalog.EpisodeTarget(episode.ID), series.ID, path, size, res)
}

func (s *Scanner) findOrAddTitle(ctx context.Context, kind catalog.TitleKind, name string, year int, res *Result) (*catalog.Title, error) {
	title, err := s.store.GetByTitleYear(kind, name, year)
	if err != nil {
		return nil, err
	}
	if title != nil {
		return title, nil
	}

	title = &catalog.Title{Kind: kind, Title: name, Year: year}
	if err := s.store.AddTitle(title); err != nil {
		return nil, err
	}
	res.TitlesAdded++

	s.publish(ctx, &events.TitleAdded{
		BaseEvent: events.NewBaseEvent(events.EventTitleAdded, events.EntityTitle, title.ID),
		TitleID:   title.ID,
		Kind:      string(kind),
		Title:     name,
		Year:      year,
	})
	return title, nil
}

func (s *Scanner) addFile(ctx context.Context, target catalog.Target, titleID int64, path string, size int64, res *Result) error {
	file := &catalog.MediaFile{Target: target, Path: path, SizeBytes: size}
	if err := s.store.AddFile(file); err != nil {
		return err
	}
	res.FilesAdded++

	s.publish(ctx, &events.FileDetected{
		BaseEvent: events.NewBaseEvent(events.EventFileDetected, events.EntityTitle, titleID),
		TitleID:   titleID,
		Path:      path,
	})
	return nil
}

func (s *Scanner) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Warn("publish failed", "type", e.EventType(), "error", err)
	}
}

// seriesDir returns the top-level directory of path relative to root, or
// "" when the file sits directly in the root.
func seriesDir(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
