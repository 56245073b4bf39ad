package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/optipresta/optipresta/internal/contract"
)

// SQLiteStore keeps each event as a JSON document row. It exists for
// installs that want the store on a shared drive where whole-file renames
// are unreliable; the wholesale-rewrite contract is unchanged.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	data TEXT NOT NULL
);
`

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.checkSchemaVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) checkSchemaVersion() error {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		_, err = s.db.Exec(`INSERT INTO meta(key, value) VALUES('schema_version', ?)`, contract.SchemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if v != contract.SchemaVersion {
		return fmt.Errorf("sqlite store has schema %s, this build reads %s", v, contract.SchemaVersion)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]contract.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM events ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()
	var out []contract.Event
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ev contract.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			// One corrupt row must not take the whole collection down.
			continue
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Replace(ctx context.Context, events []contract.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return err
	}
	for i, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO events(id, position, data) VALUES(?, ?, ?)`, ev.ID, i, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
