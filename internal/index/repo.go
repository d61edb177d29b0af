package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProjectRow represents a row in the projects table.
type ProjectRow struct {
	Path      string
	Title     string
	Status    string
	Priority  string
	Tags      []string
	OpenTasks int
	DoneTasks int
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// ListOptions filters and pages a project listing. Zero values mean no
// filter; Limit <= 0 falls back to a default page size.
type ListOptions struct {
	Limit  int
	Offset int
	Tag    string
	Status string
	Sort   string // "updated" (default), "title", "path"
}

// UpsertProject inserts or replaces a project and its FTS entry within
// a transaction.
func (db *DB) UpsertProject(p ProjectRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(p.Tags)

	// Upsert projects table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO projects (path, title, status, priority, tags, body, open_tasks, done_tasks, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			status     = excluded.status,
			priority   = excluded.priority,
			tags       = excluded.tags,
			body       = excluded.body,
			open_tasks = excluded.open_tasks,
			done_tasks = excluded.done_tasks,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p.Path, p.Title, p.Status, p.Priority, string(tagsJSON), body, p.OpenTasks, p.DoneTasks, p.Checksum, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert project: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body, p.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteProject removes a project and its FTS entry. Pins pointing at
// the removed document are kept but flipped to lost, so the caller can
// still list and clean them up.
func (db *DB) DeleteProject(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`UPDATE pins SET state = 'lost' WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM projects WHERE path = ?`, path)

	return tx.Commit()
}

// GetProject returns one project row, or nil when the path is not indexed.
func (db *DB) GetProject(path string) (*ProjectRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, status, priority, tags, open_tasks, done_tasks, checksum, updated_at
		FROM projects WHERE path = ?
	`, path)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get project: %w", err)
	}
	return p, nil
}

// GetChecksum returns the stored checksum for a project, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM projects WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed project.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListProjects returns a page of projects plus the total count for the
// same filter.
func (db *DB) ListProjects(opts ListOptions) ([]ProjectRow, int, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	where := "1=1"
	args := []any{}
	if opts.Tag != "" {
		// Tags are stored as a JSON array; match the quoted element.
		where += ` AND tags LIKE ?`
		args = append(args, `%"`+opts.Tag+`"%`)
	}
	if opts.Status != "" {
		where += ` AND status = ?`
		args = append(args, opts.Status)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM projects WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count projects: %w", err)
	}

	order := "updated_at DESC"
	switch opts.Sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "path":
		order = "path ASC"
	}

	query := `
		SELECT path, title, status, priority, tags, open_tasks, done_tasks, checksum, updated_at
		FROM projects WHERE ` + where + ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectRow
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (*ProjectRow, error) {
	var p ProjectRow
	var tagsJSON string
	if err := r.Scan(&p.Path, &p.Title, &p.Status, &p.Priority, &tagsJSON, &p.OpenTasks, &p.DoneTasks, &p.Checksum, &p.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
	return &p, nil
}
