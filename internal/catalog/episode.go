package catalog

import (
	"fmt"
	"strings"
)

const episodeCols = "id, series_id, season, episode, title, runtime_minutes"

func addEpisode(q querier, e *Episode) error {
	result, err := q.Exec(`
		INSERT INTO episodes (series_id, season, episode, title, runtime_minutes)
		VALUES (?, ?, ?, ?, ?)`,
		e.SeriesID, e.Season, e.Episode, e.Title, e.RuntimeMinutes,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// AddEpisode inserts a new episode into the catalog.
// Sets ID on the struct. Returns ErrDuplicate if the series already has an
// episode with the same (season, episode) pair.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts a new episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

func getEpisode(q querier, id int64) (*Episode, error) {
	e := &Episode{}
	err := q.QueryRow("SELECT "+episodeCols+" FROM episodes WHERE id = ?", id).
		Scan(&e.ID, &e.SeriesID, &e.Season, &e.Episode, &e.Title, &e.RuntimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisode retrieves an episode by ID.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(id int64) (*Episode, error) { return getEpisode(s.db, id) }

// GetEpisode retrieves an episode by ID within a transaction.
func (t *Tx) GetEpisode(id int64) (*Episode, error) { return getEpisode(t.tx, id) }

// GetEpisodeByNumber retrieves an episode by its (series, season, episode)
// triple. Returns ErrNotFound if it does not exist.
func (s *Store) GetEpisodeByNumber(seriesID int64, season, episode int) (*Episode, error) {
	e := &Episode{}
	err := s.db.QueryRow(
		"SELECT "+episodeCols+" FROM episodes WHERE series_id = ? AND season = ? AND episode = ?",
		seriesID, season, episode,
	).Scan(&e.ID, &e.SeriesID, &e.Season, &e.Episode, &e.Title, &e.RuntimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("get episode s%02de%02d of series %d: %w", season, episode, seriesID, mapSQLiteError(err))
	}
	return e, nil
}

func listEpisodes(q querier, f EpisodeFilter) ([]*Episode, int, error) {
	var conditions []string
	var args []any

	if f.SeriesID != nil {
		conditions = append(conditions, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.Season != nil {
		conditions = append(conditions, "season = ?")
		args = append(args, *f.Season)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM episodes "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", err)
	}

	query := "SELECT " + episodeCols + " FROM episodes " + whereClause + " ORDER BY season, episode"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e := &Episode{}
		if err := rows.Scan(&e.ID, &e.SeriesID, &e.Season, &e.Episode, &e.Title, &e.RuntimeMinutes); err != nil {
			return nil, 0, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate episodes: %w", err)
	}

	return results, total, nil
}

// ListEpisodes returns episodes matching the filter, ordered by season and
// episode number. Returns (results, totalCount, error).
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(s.db, f) }

// ListEpisodes returns episodes matching the filter within a transaction.
func (t *Tx) ListEpisodes(f EpisodeFilter) ([]*Episode, int, error) { return listEpisodes(t.tx, f) }
