package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// CreateConnectionString builds a libpq keyword/value connection string from values.
// Keys are emitted in sorted order so the result is stable.
func CreateConnectionString(values map[string]string) string {
	// https://www.postgresql.org/docs/10/libpq-connect.html#id-1.7.3.8.3.5
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	for _, k := range keys {
		parts = append(parts, k+"='"+replacer.Replace(values[k])+"'")
	}
	return strings.Join(parts, " ")
}

// OpenPgxPool connects to postgres and pings it. The connection string may be a URL or keyword/value pairs.
func OpenPgxPool(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	db, err := pgxpool.Connect(ctx, connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to postgres")
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "cannot ping postgres")
	}
	return db, nil
}

// OpenSqlite opens (creating if necessary) the sqlite database at path and pings it.
func OpenSqlite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		dbDir := filepath.Dir(path)
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			if errMkDir := os.MkdirAll(dbDir, 0o755); errMkDir != nil {
				return nil, errors.Wrapf(errMkDir, "could not make directory at %s for sqlite db", dbDir)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening sqlite db from %s", path)
	}
	// sqlite only allows one writer; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "cannot ping sqlite db at %s", path)
	}
	return db, nil
}
