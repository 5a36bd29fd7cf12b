package session

import (
	"database/sql"
	"os"
	"path/filepath"

	liberrors "github.com/jrsteele09/dca-console/internal/errors"
	_ "modernc.org/sqlite"
)

const (
	accessTokenKey  = "accessToken"
	refreshTokenKey = "refreshToken"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_tokens (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
)`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists the token pair in a key-value table so a session survives
// process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the session database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, liberrors.Wrapf(err, "[session OpenSQLiteStore] create %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, liberrors.Wrapf(err, "[session OpenSQLiteStore] open %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, liberrors.Wrapf(err, "[session OpenSQLiteStore] init schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) AccessToken() (string, error) {
	return s.get(accessTokenKey)
}

func (s *SQLiteStore) RefreshToken() (string, error) {
	return s.get(refreshTokenKey)
}

func (s *SQLiteStore) SetTokens(pair TokenPair) error {
	tx, err := s.db.Begin()
	if err != nil {
		return liberrors.Wrapf(err, "[SQLiteStore SetTokens] begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range map[string]string{accessTokenKey: pair.AccessToken, refreshTokenKey: pair.RefreshToken} {
		if value == "" {
			if _, err := tx.Exec(`DELETE FROM session_tokens WHERE key = ?`, key); err != nil {
				return liberrors.Wrapf(err, "[SQLiteStore SetTokens] delete %s", key)
			}
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO session_tokens (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
			key, value); err != nil {
			return liberrors.Wrapf(err, "[SQLiteStore SetTokens] upsert %s", key)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session_tokens`); err != nil {
		return liberrors.Wrapf(err, "[SQLiteStore Clear]")
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_tokens WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", liberrors.Wrapf(err, "[SQLiteStore get] %s", key)
	}
	return value, nil
}
