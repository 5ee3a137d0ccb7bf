// Package storage persists publications, authors, and byline position links
// in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per publication, keyed by its source identifier
		CREATE TABLE IF NOT EXISTS publications (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT    NOT NULL UNIQUE,
			title       TEXT,
			year        INTEGER NOT NULL,
			journal     TEXT,
			dataset     TEXT    NOT NULL,
			quartile    TEXT,
			created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		-- One row per normalized given name
		CREATE TABLE IF NOT EXISTS authors (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			name     TEXT NOT NULL UNIQUE,
			gender   TEXT,
			p_female REAL,
			source   TEXT
		);

		-- Byline slots: exactly one row per author position per publication
		CREATE TABLE IF NOT EXISTS author_positions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			publication_id INTEGER NOT NULL REFERENCES publications(id),
			author_id      INTEGER NOT NULL REFERENCES authors(id),
			author_index   INTEGER NOT NULL,
			position       TEXT    NOT NULL,
			UNIQUE(publication_id, author_index)
		);

		-- Journal match outcomes, keyed by the journal string as it appears
		-- in source data; NULL matched/quartile means "no match, do not retry"
		CREATE TABLE IF NOT EXISTS journal_quartiles (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			journal  TEXT NOT NULL UNIQUE,
			matched  TEXT,
			quartile TEXT,
			score    REAL,
			exact    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year);
		CREATE INDEX IF NOT EXISTS idx_publications_dataset ON publications(dataset);
		CREATE INDEX IF NOT EXISTS idx_authors_gender ON authors(gender);
		CREATE INDEX IF NOT EXISTS idx_author_positions_position ON author_positions(position);
	`

	_, err := db.Exec(schema)
	return err
}

// Publication is one stored bibliographic record.
type Publication struct {
	ID         int64
	ExternalID string
	Title      string
	Year       int
	Journal    string
	Dataset    string
	Quartile   string // empty until a ranking pass matches the journal
}

// AuthorLink ties one byline slot to a normalized author name.
type AuthorLink struct {
	Name     string // normalized given-name key
	Index    int    // 0-based byline position
	Position string
}

// Author is one stored author row. PFemale is nil until classified with a
// usable probability.
type Author struct {
	ID      int64
	Name    string
	Gender  string
	PFemale *float64
	Source  string
}

// StorePublication writes one publication, its authors, and its position
// links in a single transaction. An existing publication (same external_id)
// has its title, year, and journal refreshed and its links replaced; authors
// are created on first encounter and never duplicated. Returns whether the
// publication row was new and how many author rows were created.
func (d *DB) StorePublication(pub Publication, links []AuthorLink) (created bool, newAuthors int, err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return false, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var pubID int64
	scanErr := tx.QueryRow(`SELECT id FROM publications WHERE external_id = ?`, pub.ExternalID).Scan(&pubID)
	switch {
	case errors.Is(scanErr, sql.ErrNoRows):
		res, execErr := tx.Exec(
			`INSERT INTO publications (external_id, title, year, journal, dataset) VALUES (?, ?, ?, ?, ?)`,
			pub.ExternalID, pub.Title, pub.Year, pub.Journal, pub.Dataset)
		if execErr != nil {
			err = fmt.Errorf("inserting publication %s: %w", pub.ExternalID, execErr)
			return false, 0, err
		}
		if pubID, err = res.LastInsertId(); err != nil {
			return false, 0, err
		}
		created = true
	case scanErr != nil:
		err = fmt.Errorf("looking up publication %s: %w", pub.ExternalID, scanErr)
		return false, 0, err
	default:
		if _, execErr := tx.Exec(
			`UPDATE publications SET title = ?, year = ?, journal = ? WHERE id = ?`,
			pub.Title, pub.Year, pub.Journal, pubID); execErr != nil {
			err = fmt.Errorf("refreshing publication %s: %w", pub.ExternalID, execErr)
			return false, 0, err
		}
	}

	for _, link := range links {
		res, execErr := tx.Exec(`INSERT OR IGNORE INTO authors (name) VALUES (?)`, link.Name)
		if execErr != nil {
			err = fmt.Errorf("upserting author %q: %w", link.Name, execErr)
			return false, 0, err
		}
		if n, raErr := res.RowsAffected(); raErr == nil && n > 0 {
			newAuthors++
		}
	}

	if _, execErr := tx.Exec(`DELETE FROM author_positions WHERE publication_id = ?`, pubID); execErr != nil {
		err = fmt.Errorf("clearing links for %s: %w", pub.ExternalID, execErr)
		return false, 0, err
	}

	stmt, prepErr := tx.Prepare(`INSERT INTO author_positions (publication_id, author_id, author_index, position)
		VALUES (?, (SELECT id FROM authors WHERE name = ?), ?, ?)`)
	if prepErr != nil {
		err = fmt.Errorf("preparing link insert: %w", prepErr)
		return false, 0, err
	}
	defer stmt.Close()

	for _, link := range links {
		if _, execErr := stmt.Exec(pubID, link.Name, link.Index, link.Position); execErr != nil {
			err = fmt.Errorf("linking author %q to %s: %w", link.Name, pub.ExternalID, execErr)
			return false, 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("committing publication %s: %w", pub.ExternalID, err)
	}
	return created, newAuthors, nil
}

// scanner abstracts over sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// GetPublication returns one publication by its source identifier, or nil
// when absent.
func (d *DB) GetPublication(externalID string) (*Publication, error) {
	row := d.db.QueryRow(
		`SELECT id, external_id, title, year, journal, dataset, quartile FROM publications WHERE external_id = ?`,
		externalID)

	pub, err := scanPublication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func scanPublication(s scanner) (*Publication, error) {
	var p Publication
	var title, journal, quartile sql.NullString
	if err := s.Scan(&p.ID, &p.ExternalID, &title, &p.Year, &journal, &p.Dataset, &quartile); err != nil {
		return nil, err
	}
	p.Title = title.String
	p.Journal = journal.String
	p.Quartile = quartile.String
	return &p, nil
}

// GetAuthor returns one author by normalized name, or nil when absent.
func (d *DB) GetAuthor(name string) (*Author, error) {
	row := d.db.QueryRow(`SELECT id, name, gender, p_female, source FROM authors WHERE name = ?`, name)

	var a Author
	var gender, source sql.NullString
	var p sql.NullFloat64
	if err := row.Scan(&a.ID, &a.Name, &gender, &p, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Gender = gender.String
	a.Source = source.String
	if p.Valid {
		a.PFemale = &p.Float64
	}
	return &a, nil
}

// UpdateAuthorGender writes one classification result onto the author row.
// Re-classification overwrites the previous result.
func (d *DB) UpdateAuthorGender(name, gender string, pFemale *float64, source string) error {
	_, err := d.db.Exec(
		`UPDATE authors SET gender = ?, p_female = ?, source = ? WHERE name = ?`,
		gender, nullableFloat(pFemale), nullableString(source), name)
	if err != nil {
		return fmt.Errorf("updating author %q: %w", name, err)
	}
	return nil
}

// UnclassifiedAuthors returns names that have never been classified.
func (d *DB) UnclassifiedAuthors() ([]string, error) {
	return d.queryStrings(`SELECT name FROM authors WHERE gender IS NULL ORDER BY name`)
}

// AuthorsBySource returns names whose current classification came from the
// given tier.
func (d *DB) AuthorsBySource(source string) ([]string, error) {
	return d.queryStrings(`SELECT name FROM authors WHERE source = ? ORDER BY name`, source)
}

// Filters narrows probability queries. Zero values mean "any". Year wins
// over the YearFrom/YearTo range when both are set.
type Filters struct {
	Dataset  string
	Position string
	Quartile string
	Gender   string
	Year     int
	YearFrom int
	YearTo   int
}

// Probabilities returns one p_female value per author-position link matching
// the filters. Only resolved binary classifications aggregate; unknown and
// other authors are excluded.
func (d *DB) Probabilities(f Filters) ([]float64, error) {
	query := `SELECT a.p_female
		FROM author_positions ap
		JOIN authors a ON a.id = ap.author_id
		JOIN publications p ON p.id = ap.publication_id
		WHERE a.p_female IS NOT NULL AND a.gender IN ('male', 'female')`
	var args []interface{}

	if f.Dataset != "" {
		query += " AND p.dataset = ?"
		args = append(args, f.Dataset)
	}
	if f.Position != "" {
		query += " AND ap.position = ?"
		args = append(args, f.Position)
	}
	if f.Quartile != "" {
		query += " AND p.quartile = ?"
		args = append(args, f.Quartile)
	}
	if f.Gender != "" {
		query += " AND a.gender = ?"
		args = append(args, f.Gender)
	}
	if f.Year != 0 {
		query += " AND p.year = ?"
		args = append(args, f.Year)
	} else {
		if f.YearFrom != 0 {
			query += " AND p.year >= ?"
			args = append(args, f.YearFrom)
		}
		if f.YearTo != 0 {
			query += " AND p.year <= ?"
			args = append(args, f.YearTo)
		}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying probabilities: %w", err)
	}
	defer rows.Close()

	var probs []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		probs = append(probs, p)
	}
	return probs, rows.Err()
}

// DistinctDatasets lists dataset tags present in the corpus.
func (d *DB) DistinctDatasets() ([]string, error) {
	return d.queryStrings(`SELECT DISTINCT dataset FROM publications ORDER BY dataset`)
}

// DistinctPositions lists position labels present in the corpus.
func (d *DB) DistinctPositions() ([]string, error) {
	return d.queryStrings(`SELECT DISTINCT position FROM author_positions ORDER BY position`)
}

// DistinctQuartiles lists quartile tags attached to publications.
func (d *DB) DistinctQuartiles() ([]string, error) {
	return d.queryStrings(`SELECT DISTINCT quartile FROM publications WHERE quartile IS NOT NULL ORDER BY quartile`)
}

// DistinctJournals lists the journal vocabulary of the corpus.
func (d *DB) DistinctJournals() ([]string, error) {
	return d.queryStrings(`SELECT DISTINCT journal FROM publications WHERE journal IS NOT NULL AND journal != '' ORDER BY journal`)
}

// DistinctYears lists publication years present in the corpus.
func (d *DB) DistinctYears() ([]int, error) {
	rows, err := d.db.Query(`SELECT DISTINCT year FROM publications ORDER BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// QuartileEntry records the match outcome for one source journal string. An
// entry with empty Matched and Quartile means "looked up, no match, do not
// retry".
type QuartileEntry struct {
	Journal  string
	Matched  string
	Quartile string
	Score    float64
	Exact    bool
}

// SaveQuartileEntry upserts one journal match outcome.
func (d *DB) SaveQuartileEntry(e QuartileEntry) error {
	var score interface{}
	if e.Matched != "" {
		score = e.Score
	}
	exact := 0
	if e.Exact {
		exact = 1
	}

	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO journal_quartiles (journal, matched, quartile, score, exact) VALUES (?, ?, ?, ?, ?)`,
		e.Journal, nullableString(e.Matched), nullableString(e.Quartile), score, exact)
	if err != nil {
		return fmt.Errorf("saving quartile entry for %q: %w", e.Journal, err)
	}
	return nil
}

// KnownJournals returns the journal strings already matched or recorded as
// unmatched, so repeat ranking passes skip them.
func (d *DB) KnownJournals() (map[string]bool, error) {
	names, err := d.queryStrings(`SELECT journal FROM journal_quartiles`)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return known, nil
}

// AttachQuartiles copies matched tiers onto publications by exact journal
// string and reports how many publication rows were tagged.
func (d *DB) AttachQuartiles() (int64, error) {
	res, err := d.db.Exec(`
		UPDATE publications SET quartile = (
			SELECT q.quartile FROM journal_quartiles q
			WHERE q.journal = publications.journal AND q.quartile IS NOT NULL
		)
		WHERE EXISTS (
			SELECT 1 FROM journal_quartiles q
			WHERE q.journal = publications.journal AND q.quartile IS NOT NULL
		)`)
	if err != nil {
		return 0, fmt.Errorf("attaching quartiles: %w", err)
	}
	return res.RowsAffected()
}

// Summary reports corpus counts.
type Summary struct {
	Publications int            `json:"publications"`
	ByDataset    map[string]int `json:"by_dataset"`
	ByYear       map[int]int    `json:"by_year"`
	Authors      int            `json:"authors"`
	ByGender     map[string]int `json:"by_gender"`
	BySource     map[string]int `json:"by_source"`
	Links        int            `json:"links"`
	ByPosition   map[string]int `json:"by_position"`
}

// Summarize counts the corpus by dataset, year, gender, source, and
// position. Authors never classified count as "unclassified".
func (d *DB) Summarize() (*Summary, error) {
	s := &Summary{
		ByDataset:  make(map[string]int),
		ByYear:     make(map[int]int),
		ByGender:   make(map[string]int),
		BySource:   make(map[string]int),
		ByPosition: make(map[string]int),
	}

	if err := d.db.QueryRow(`SELECT COUNT(*) FROM publications`).Scan(&s.Publications); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&s.Authors); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM author_positions`).Scan(&s.Links); err != nil {
		return nil, err
	}

	if err := d.countGroups(`SELECT dataset, COUNT(*) FROM publications GROUP BY dataset`, s.ByDataset); err != nil {
		return nil, err
	}
	if err := d.countGroups(`SELECT COALESCE(gender, 'unclassified'), COUNT(*) FROM authors GROUP BY gender`, s.ByGender); err != nil {
		return nil, err
	}
	if err := d.countGroups(`SELECT COALESCE(source, 'unclassified'), COUNT(*) FROM authors GROUP BY source`, s.BySource); err != nil {
		return nil, err
	}
	if err := d.countGroups(`SELECT position, COUNT(*) FROM author_positions GROUP BY position`, s.ByPosition); err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`SELECT year, COUNT(*) FROM publications GROUP BY year`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return nil, err
		}
		s.ByYear[year] = n
	}
	return s, rows.Err()
}

func (d *DB) countGroups(query string, into map[string]int) error {
	rows, err := d.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

func (d *DB) queryStrings(query string, args ...interface{}) ([]string, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// nullableString converts empty strings to NULL for storage.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableFloat converts nil pointers to NULL for storage.
func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
