package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a sqlite sidecar recording metadata about analyzed captures:
// which prompt and model produced each response and how long the request
// took. Browse mode uses it for captions. It is additive only; sequence
// discovery and listing always come from the filesystem, so a missing or
// stale index never breaks browsing.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the capture index database.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS captures (
			sequence INTEGER PRIMARY KEY,
			promptLabel TEXT NOT NULL,
			model TEXT NOT NULL,
			elapsedMs INTEGER NOT NULL,
			createdAt REAL NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Caption is the recorded metadata for one analyzed capture.
type Caption struct {
	Sequence    int
	PromptLabel string
	Model       string
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// Record inserts or replaces the caption for a sequence. Re-analyzing a saved
// image overwrites its previous caption.
func (ix *Index) Record(c Caption) error {
	_, err := ix.db.Exec(`
		INSERT OR REPLACE INTO captures (sequence, promptLabel, model, elapsedMs, createdAt)
		VALUES (?, ?, ?, ?, ?)
	`, c.Sequence, c.PromptLabel, c.Model, c.Elapsed.Milliseconds(), float64(c.CreatedAt.UnixNano())/1e9)
	if err != nil {
		return fmt.Errorf("record caption: %w", err)
	}
	return nil
}

// Lookup returns the caption for a sequence, or nil if none was recorded.
// Externally copied images legitimately have no caption.
func (ix *Index) Lookup(seq int) (*Caption, error) {
	row := ix.db.QueryRow(`
		SELECT sequence, promptLabel, model, elapsedMs, createdAt
		FROM captures
		WHERE sequence = ?
	`, seq)

	var c Caption
	var elapsedMs int64
	var createdAt float64
	if err := row.Scan(&c.Sequence, &c.PromptLabel, &c.Model, &elapsedMs, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan caption: %w", err)
	}

	c.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	sec := int64(createdAt)
	c.CreatedAt = time.Unix(sec, int64((createdAt-float64(sec))*1e9))
	return &c, nil
}
