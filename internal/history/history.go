// Package history derives user-facing views from watch progress rows:
// the continue-watching rail and the locally derived popularity ordering.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vmunix/streamgo/internal/catalog"
	"github.com/vmunix/streamgo/internal/events"
)

const (
	continueWatchingLimit = 20
	popularLimit          = 30
)

// Service aggregates watch progress over the catalog store.
type Service struct {
	store *catalog.Store
	bus   *events.Bus
	log   *slog.Logger
}

// NewService creates a history service. The bus is optional; pass nil to
// skip event publication.
func NewService(store *catalog.Store, bus *events.Bus, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: store,
		bus:   bus,
		log:   log.With("component", "history"),
	}
}

// ContinueWatching returns the user's in-progress positions of the given
// target kind, most recently watched first, capped at 20. A position
// qualifies when playback has started and the target is not finished.
// The store holds one row per (user, target), so each target appears at
// most once.
func (s *Service) ContinueWatching(userID int64, kind catalog.TargetKind) ([]*catalog.WatchProgress, error) {
	notCompleted := false
	rows, err := s.store.ListProgress(catalog.ProgressFilter{
		UserID:     &userID,
		TargetKind: &kind,
		Completed:  &notCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("continue watching for user %d: %w", userID, err)
	}

	out := make([]*catalog.WatchProgress, 0, continueWatchingLimit)
	for _, p := range rows {
		if p.ElapsedSeconds <= 0 {
			continue
		}
		out = append(out, p)
		if len(out) == continueWatchingLimit {
			break
		}
	}
	return out, nil
}

// PopularTitles returns titles of the given kind ordered by how many
// watch progress rows reference them, descending. Episode rows roll up to
// their parent series. Ties and zero-count titles order by ascending id,
// so the result is deterministic and still shows the whole collection.
// Capped at 30.
func (s *Service) PopularTitles(kind catalog.TitleKind) ([]*catalog.Title, error) {
	counts, err := s.store.ProgressCountsByTitle(kind)
	if err != nil {
		return nil, fmt.Errorf("popular titles: %w", err)
	}

	titles, _, err := s.store.ListTitles(catalog.TitleFilter{Kind: &kind})
	if err != nil {
		return nil, fmt.Errorf("popular titles: %w", err)
	}

	// ListTitles orders by id, so a stable sort on count alone preserves
	// the id tie-break.
	sort.SliceStable(titles, func(i, j int) bool {
		return counts[titles[i].ID] > counts[titles[j].ID]
	})

	if len(titles) > popularLimit {
		titles = titles[:popularLimit]
	}
	return titles, nil
}

// Record persists a playback heartbeat and announces it on the bus.
// The write overwrites any previous position for the same (user, target).
func (s *Service) Record(ctx context.Context, p *catalog.WatchProgress) error {
	if err := s.store.UpsertProgress(p); err != nil {
		return fmt.Errorf("record progress: %w", err)
	}

	if s.bus != nil {
		e := &events.ProgressUpdated{
			BaseEvent:      events.NewBaseEvent(events.EventProgressUpdated, events.EntityProgress, p.ID),
			UserID:         p.UserID,
			TargetKind:     string(p.Target.Kind()),
			TargetID:       p.Target.ID(),
			ElapsedSeconds: p.ElapsedSeconds,
			Completed:      p.Completed,
		}
		if err := s.bus.Publish(ctx, e); err != nil {
			s.log.Warn("publish progress event failed", "progress_id", p.ID, "error", err)
		}
	}
	return nil
}
