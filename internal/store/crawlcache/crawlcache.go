package crawlcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"

	"fedilens/internal/model"
)

// DB wraps a SQLite database used as a crawl cache. Collected records
// are written through it so an interrupted run can resume, and
// pagination cursors survive restarts.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS posts (
	  id TEXT PRIMARY KEY,
	  data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS accounts (
	  id TEXT PRIMARY KEY,
	  data TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	`)
	return err
}

// PutPost stores a post once; repeats are ignored, keeping the first
// admitted record and its insertion order.
func (d *DB) PutPost(ctx context.Context, p model.Post) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `INSERT OR IGNORE INTO posts(id, data) VALUES(?,?)`, p.ID, string(b))
	return err
}

// LoadPosts returns cached posts in insertion order.
func (d *DB) LoadPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT data FROM posts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Post
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p model.Post
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PutAccount stores an account once; repeats are ignored.
func (d *DB) PutAccount(ctx context.Context, a model.Account) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `INSERT OR IGNORE INTO accounts(id, data) VALUES(?,?)`, a.ID, string(b))
	return err
}

// LoadAccounts returns cached accounts in insertion order.
func (d *DB) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT data FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Account
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var a model.Account
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveCursor stores a pagination cursor.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// LoadCursor returns a stored cursor or an error if absent.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key)
	var v sql.NullString
	if err := row.Scan(&v); err != nil {
		return "", err
	}
	if !v.Valid {
		return "", errors.New("no cursor")
	}
	return v.String, nil
}
