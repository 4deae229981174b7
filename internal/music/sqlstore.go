package music

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLStore serves lookups from a SQLite database with a single `records`
// table carrying the five record fields. The file is opened read-only.
type SQLStore struct {
	db    *sql.DB
	total int
}

// OpenSQL connects to a SQLite database at path and verifies the schema.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&total); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify records table: %w", err)
	}
	return &SQLStore{db: db, total: total}, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) Len() int { return s.total }

func (s *SQLStore) Find(ctx context.Context, c Criteria, limit int) ([]Record, error) {
	query := `SELECT title, genre, authors, country, year FROM records`
	var (
		clauses []string
		args    []any
	)
	like := func(column, value string) {
		clauses = append(clauses, fmt.Sprintf("lower(%s) LIKE ?", column))
		args = append(args, "%"+strings.ToLower(value)+"%")
	}
	if c.Title != "" {
		like("title", c.Title)
	}
	if c.Genre != "" {
		like("genre", c.Genre)
	}
	if c.Authors != "" {
		like("authors", c.Authors)
	}
	if c.Country != "" {
		like("country", c.Country)
	}
	if c.Year != 0 {
		clauses = append(clauses, "year = ?")
		args = append(args, c.Year)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	// rowid preserves insertion order, which is the store's original order.
	query += " ORDER BY rowid"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Title, &r.Genre, &r.Authors, &r.Country, &r.Year); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
