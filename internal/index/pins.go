package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// SavePin inserts or replaces a pin row.
func (db *DB) SavePin(p models.Pin) error {
	_, err := db.conn.Exec(`
		INSERT INTO pins (id, path, line, content, display_text, label, state, created_at, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path         = excluded.path,
			line         = excluded.line,
			content      = excluded.content,
			display_text = excluded.display_text,
			label        = excluded.label,
			state        = excluded.state,
			checked_at   = excluded.checked_at
	`, p.ID, p.Path, p.Line, p.Content, p.DisplayText, p.Label, p.State, p.CreatedAt, p.CheckedAt)
	if err != nil {
		return fmt.Errorf("index: save pin: %w", err)
	}
	return nil
}

// GetPin returns one pin, or nil when the id is unknown.
func (db *DB) GetPin(id string) (*models.Pin, error) {
	row := db.conn.QueryRow(`
		SELECT id, path, line, content, display_text, label, state, created_at, checked_at
		FROM pins WHERE id = ?
	`, id)
	p, err := scanPin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get pin: %w", err)
	}
	return p, nil
}

// ListPins returns all pins, optionally filtered by state, oldest first.
func (db *DB) ListPins(state string) ([]models.Pin, error) {
	query := `
		SELECT id, path, line, content, display_text, label, state, created_at, checked_at
		FROM pins`
	args := []any{}
	if state != "" {
		query += ` WHERE state = ?`
		args = append(args, state)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list pins: %w", err)
	}
	defer rows.Close()
	return collectPins(rows)
}

// PinsForPath returns every pin anchored into the given document.
func (db *DB) PinsForPath(path string) ([]models.Pin, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, line, content, display_text, label, state, created_at, checked_at
		FROM pins WHERE path = ? ORDER BY line ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: pins for path: %w", err)
	}
	defer rows.Close()
	return collectPins(rows)
}

// UpdatePinResolution records the outcome of a revalidation pass: the
// pin's current state, its (possibly shifted) line, and when it was
// checked.
func (db *DB) UpdatePinResolution(id, state string, line int, checkedAt time.Time) error {
	_, err := db.conn.Exec(`
		UPDATE pins SET state = ?, line = ?, checked_at = ? WHERE id = ?
	`, state, line, checkedAt, id)
	if err != nil {
		return fmt.Errorf("index: update pin: %w", err)
	}
	return nil
}

// DeletePin removes a pin row.
func (db *DB) DeletePin(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM pins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete pin: %w", err)
	}
	return nil
}

func collectPins(rows *sql.Rows) ([]models.Pin, error) {
	var out []models.Pin
	for rows.Next() {
		p, err := scanPin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPin(r rowScanner) (*models.Pin, error) {
	var p models.Pin
	if err := r.Scan(&p.ID, &p.Path, &p.Line, &p.Content, &p.DisplayText, &p.Label, &p.State, &p.CreatedAt, &p.CheckedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
