//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// notes_fts mirrors the notes table for ranked search. Tags are stored as
// one space-separated column so ":work:" notes match a plain "work" query.
func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			path UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	if err != nil {
		return fmt.Errorf("index: create notes_fts: %w", err)
	}
	return nil
}

func ftsUpsert(tx *sql.Tx, notePath, title, body string, tags []string) error {
	ftsDelete(tx, notePath)
	if _, err := tx.Exec(`INSERT INTO notes_fts (path, title, body, tags) VALUES (?, ?, ?, ?)`,
		notePath, title, body, strings.Join(tags, " ")); err != nil {
		return fmt.Errorf("index: fts row for %s: %w", notePath, err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, notePath string) {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE path = ?`, notePath)
}

// Search ranks notes against an FTS5 match expression. The snippet comes
// from the note body with hits wrapped in <b>.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path, title, snippet(notes_fts, 2, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search %q: %w", query, err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan search hit: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
