package catalog

import (
	"fmt"
	"strings"
	"time"
)

// UpsertProgress records a playback heartbeat. One row exists per
// (user, target): an existing row is overwritten, so the stored row is
// always the latest event. A zero Target is rejected with ErrInvariant.
// Sets ID and UpdatedAt on the struct.
func (s *Store) UpsertProgress(p *WatchProgress) error {
	if p.Target.IsZero() {
		return fmt.Errorf("upsert progress for user %d: %w", p.UserID, ErrInvariant)
	}
	movieID, episodeID := p.Target.columns()
	now := time.Now()

	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	targetCol := "movie_id"
	if episodeID != nil {
		targetCol = "episode_id"
	}
	result, err := tx.tx.Exec(
		"UPDATE watch_progress SET elapsed_seconds = ?, completed = ?, updated_at = ? WHERE user_id = ? AND "+targetCol+" = ?",
		p.ElapsedSeconds, p.Completed, now, p.UserID, p.Target.ID(),
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if rows == 0 {
		result, err = tx.tx.Exec(`
			INSERT INTO watch_progress (user_id, movie_id, episode_id, elapsed_seconds, completed, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.UserID, movieID, episodeID, p.ElapsedSeconds, p.Completed, now,
		)
		if err != nil {
			return fmt.Errorf("insert progress: %w", mapSQLiteError(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
		p.ID = id
	} else {
		var id int64
		err = tx.tx.QueryRow(
			"SELECT id FROM watch_progress WHERE user_id = ? AND "+targetCol+" = ?",
			p.UserID, p.Target.ID(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("reread progress id: %w", mapSQLiteError(err))
		}
		p.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit progress: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// ListProgress returns watch progress rows matching the filter, most
// recently updated first.
func (s *Store) ListProgress(f ProgressFilter) ([]*WatchProgress, error) {
	var conditions []string
	var args []any

	if f.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.TargetKind != nil {
		switch *f.TargetKind {
		case TargetMovie:
			conditions = append(conditions, "movie_id IS NOT NULL")
		case TargetEpisode:
			conditions = append(conditions, "episode_id IS NOT NULL")
		}
	}
	if f.Completed != nil {
		conditions = append(conditions, "completed = ?")
		args = append(args, *f.Completed)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT id, user_id, movie_id, episode_id, elapsed_seconds, completed, updated_at FROM watch_progress " +
		whereClause + " ORDER BY updated_at DESC, id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*WatchProgress
	for rows.Next() {
		p := &WatchProgress{}
		var movieID, episodeID *int64
		if err := rows.Scan(&p.ID, &p.UserID, &movieID, &episodeID, &p.ElapsedSeconds, &p.Completed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		target, err := targetFrom(movieID, episodeID)
		if err != nil {
			return nil, err
		}
		p.Target = target
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return results, nil
}

// ProgressCountsByTitle returns the number of watch progress events per
// title of the given kind. Episode events are rolled up to their parent
// series. Titles with no events are absent from the map.
func (s *Store) ProgressCountsByTitle(kind TitleKind) (map[int64]int, error) {
	var query string
	switch kind {
	case KindMovie:
		query = `
			SELECT movie_id, COUNT(*)
			FROM watch_progress
			WHERE movie_id IS NOT NULL
			GROUP BY movie_id`
	case KindSeries:
		query = `
			SELECT e.series_id, COUNT(*)
			FROM watch_progress wp
			JOIN episodes e ON wp.episode_id = e.id
			GROUP BY e.series_id`
	default:
		return nil, fmt.Errorf("progress counts: unknown kind %q", kind)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("progress counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan progress count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress counts: %w", err)
	}
	return counts, nil
}
