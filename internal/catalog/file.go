package catalog

import (
	"fmt"
	"strings"
	"time"
)

func addFile(q querier, f *MediaFile) error {
	if f.Target.IsZero() {
		return fmt.Errorf("add file %q: %w", f.Path, ErrInvariant)
	}
	movieID, episodeID := f.Target.columns()
	now := time.Now()
	result, err := q.Exec(`
		INSERT INTO media_files (movie_id, episode_id, path, size_bytes, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		movieID, episodeID, f.Path, f.SizeBytes, now,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	f.ID = id
	f.AddedAt = now
	return nil
}

// AddFile inserts a new media file into the catalog.
// Sets ID and AddedAt on the struct. A file with a zero Target is rejected
// with ErrInvariant.
func (s *Store) AddFile(f *MediaFile) error { return addFile(s.db, f) }

// AddFile inserts a new media file within a transaction.
func (t *Tx) AddFile(f *MediaFile) error { return addFile(t.tx, f) }

func scanFile(row interface{ Scan(...any) error }) (*MediaFile, error) {
	f := &MediaFile{}
	var movieID, episodeID *int64
	if err := row.Scan(&f.ID, &movieID, &episodeID, &f.Path, &f.SizeBytes, &f.AddedAt); err != nil {
		return nil, err
	}
	target, err := targetFrom(movieID, episodeID)
	if err != nil {
		return nil, err
	}
	f.Target = target
	return f, nil
}

func getFile(q querier, id int64) (*MediaFile, error) {
	f, err := scanFile(q.QueryRow(
		"SELECT id, movie_id, episode_id, path, size_bytes, added_at FROM media_files WHERE id = ?", id,
	))
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", id, mapSQLiteError(err))
	}
	return f, nil
}

// GetFile retrieves a media file by ID.
// Returns ErrNotFound if the file does not exist.
func (s *Store) GetFile(id int64) (*MediaFile, error) { return getFile(s.db, id) }

// GetFile retrieves a media file by ID within a transaction.
func (t *Tx) GetFile(id int64) (*MediaFile, error) { return getFile(t.tx, id) }

// GetFileByPath retrieves a media file by its path.
// Returns ErrNotFound if no file with that path exists.
func (s *Store) GetFileByPath(path string) (*MediaFile, error) {
	f, err := scanFile(s.db.QueryRow(
		"SELECT id, movie_id, episode_id, path, size_bytes, added_at FROM media_files WHERE path = ?", path,
	))
	if err != nil {
		return nil, fmt.Errorf("get file %q: %w", path, mapSQLiteError(err))
	}
	return f, nil
}

func listFiles(q querier, f FileFilter) ([]*MediaFile, int, error) {
	var conditions []string
	var args []any

	if f.Target != nil {
		movieID, episodeID := f.Target.columns()
		switch {
		case movieID != nil:
			conditions = append(conditions, "movie_id = ?")
			args = append(args, *movieID)
		case episodeID != nil:
			conditions = append(conditions, "episode_id = ?")
			args = append(args, *episodeID)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM media_files "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count files: %w", err)
	}

	query := "SELECT id, movie_id, episode_id, path, size_bytes, added_at FROM media_files " + whereClause + " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*MediaFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan file: %w", err)
		}
		results = append(results, file)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate files: %w", err)
	}

	return results, total, nil
}

// ListFiles returns media files matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) ListFiles(f FileFilter) ([]*MediaFile, int, error) { return listFiles(s.db, f) }

// ListFiles returns media files matching the filter within a transaction.
func (t *Tx) ListFiles(f FileFilter) ([]*MediaFile, int, error) { return listFiles(t.tx, f) }

func deleteFile(q querier, id int64) error {
	_, err := q.Exec("DELETE FROM media_files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete file %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteFile removes a media file by ID.
// This operation is idempotent - no error is returned if the file does not exist.
func (s *Store) DeleteFile(id int64) error { return deleteFile(s.db, id) }

// DeleteFile removes a media file within a transaction.
func (t *Tx) DeleteFile(id int64) error { return deleteFile(t.tx, id) }
