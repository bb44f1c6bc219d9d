package catalog

import (
	"fmt"
	"strings"
	"time"
)

const (
	searchLimit = 20
	recentLimit = 30
)

const titleCols = "id, kind, tmdb_id, title, year, runtime_minutes, release_date, added_at, updated_at"

func scanTitle(row interface{ Scan(...any) error }) (*Title, error) {
	t := &Title{}
	err := row.Scan(&t.ID, &t.Kind, &t.TMDBID, &t.Title, &t.Year, &t.RuntimeMinutes, &t.ReleaseDate, &t.AddedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func addTitle(q querier, t *Title) error {
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO titles (kind, tmdb_id, title, year, runtime_minutes, release_date, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Kind, t.TMDBID, t.Title, t.Year, t.RuntimeMinutes, t.ReleaseDate, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert title: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	t.ID = id
	t.AddedAt = now
	t.UpdatedAt = now
	return nil
}

// AddTitle inserts a new title into the catalog.
// Sets ID, AddedAt, and UpdatedAt on the struct.
func (s *Store) AddTitle(t *Title) error { return addTitle(s.db, t) }

// AddTitle inserts a new title within a transaction.
func (t *Tx) AddTitle(title *Title) error { return addTitle(t.tx, title) }

func getTitle(q querier, id int64) (*Title, error) {
	t, err := scanTitle(q.QueryRow("SELECT "+titleCols+" FROM titles WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get title %d: %w", id, mapSQLiteError(err))
	}
	return t, nil
}

// GetTitle retrieves a title by ID.
// Returns ErrNotFound if the title does not exist.
func (s *Store) GetTitle(id int64) (*Title, error) { return getTitle(s.db, id) }

// GetTitle retrieves a title by ID within a transaction.
func (t *Tx) GetTitle(id int64) (*Title, error) { return getTitle(t.tx, id) }

// GetByTitleYear finds a title by display title and year.
// Returns nil, nil if not found.
func (s *Store) GetByTitleYear(kind TitleKind, title string, year int) (*Title, error) {
	titles, _, err := s.ListTitles(TitleFilter{Kind: &kind, Title: &title, Year: &year, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}
	return titles[0], nil
}

func listTitles(q querier, f TitleFilter) ([]*Title, int, error) {
	var conditions []string
	var args []any

	if f.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *f.Kind)
	}
	if f.TMDBID != nil {
		conditions = append(conditions, "tmdb_id = ?")
		args = append(args, *f.TMDBID)
	}
	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, *f.Title)
	}
	if f.Year != nil {
		conditions = append(conditions, "year = ?")
		args = append(args, *f.Year)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM titles "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query := "SELECT " + titleCols + " FROM titles " + whereClause + " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan title: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate titles: %w", err)
	}

	return results, total, nil
}

// ListTitles returns titles matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListTitles(f TitleFilter) ([]*Title, int, error) { return listTitles(s.db, f) }

// ListTitles returns titles matching the filter within a transaction.
func (t *Tx) ListTitles(f TitleFilter) ([]*Title, int, error) { return listTitles(t.tx, f) }

func updateTitle(q querier, t *Title) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE titles SET title = ?, year = ?, runtime_minutes = ?, release_date = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Year, t.RuntimeMinutes, t.ReleaseDate, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update title %d: %w", t.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update title %d: %w", t.ID, ErrNotFound)
	}
	t.UpdatedAt = now
	return nil
}

// UpdateTitle updates a title's display fields. The kind and external id are
// fixed; use SetTitleTMDBID for the latter.
// Returns ErrNotFound if the title does not exist.
func (s *Store) UpdateTitle(t *Title) error { return updateTitle(s.db, t) }

// UpdateTitle updates a title within a transaction.
func (t *Tx) UpdateTitle(title *Title) error { return updateTitle(t.tx, title) }

func setTitleTMDBID(q querier, id, tmdbID int64) error {
	result, err := q.Exec(`
		UPDATE titles SET tmdb_id = ?, updated_at = ?
		WHERE id = ? AND (tmdb_id IS NULL OR tmdb_id = ?)`,
		tmdbID, time.Now(), id, tmdbID,
	)
	if err != nil {
		return fmt.Errorf("set tmdb id for title %d: %w", id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := getTitle(q, id); err != nil {
			return err
		}
		return fmt.Errorf("title %d already has a different tmdb id: %w", id, ErrConstraint)
	}
	return nil
}

// SetTitleTMDBID assigns the external catalog identifier to a title.
// The id is immutable once set: re-assigning the same value is a no-op,
// assigning a different value returns ErrConstraint, and assigning an id
// held by another title of the same kind returns ErrDuplicate.
func (s *Store) SetTitleTMDBID(id, tmdbID int64) error { return setTitleTMDBID(s.db, id, tmdbID) }

// SetTitleTMDBID assigns the external id within a transaction.
func (t *Tx) SetTitleTMDBID(id, tmdbID int64) error { return setTitleTMDBID(t.tx, id, tmdbID) }

// SearchTitles performs a case-insensitive substring match on stored title
// text, ordered alphabetically, capped at 20 results. This is the local
// catalog search, distinct from provider-backed resolution.
func (s *Store) SearchTitles(term string, kind *TitleKind) ([]*Title, error) {
	conditions := []string{"instr(lower(title), lower(?)) > 0"}
	args := []any{term}
	if kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *kind)
	}

	query := "SELECT " + titleCols + " FROM titles WHERE " + strings.Join(conditions, " AND ") +
		fmt.Sprintf(" ORDER BY title COLLATE NOCASE, id LIMIT %d", searchLimit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return results, nil
}

// RecentTitles returns the most recently added titles of a kind, newest
// first, capped at 30.
func (s *Store) RecentTitles(kind TitleKind) ([]*Title, error) {
	rows, err := s.db.Query(
		"SELECT "+titleCols+" FROM titles WHERE kind = ? ORDER BY id DESC LIMIT ?",
		kind, recentLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	return results, nil
}
