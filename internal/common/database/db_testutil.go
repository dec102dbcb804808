package database

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/tierprobe/internal/common/util"
)

// WithTestDb creates a dedicated Postgres database for a test, runs action against a pool connected to
// it and drops the database afterwards.
//
//	connectionString: keyword/value connection string for an instance the caller may create databases on
//	action: callback for client code
func WithTestDb(ctx context.Context, connectionString string, action func(db *pgxpool.Pool) error) error {
	dbName := "test_" + util.NewULID()
	admin, err := pgx.Connect(ctx, connectionString)
	if err != nil {
		return errors.WithStack(err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		// FORCE disconnects any sessions the test left open.
		if _, err := admin.Exec(ctx, "DROP DATABASE "+pgx.Identifier{dbName}.Sanitize()+" WITH (FORCE)"); err != nil {
			log.WithError(err).Warnf("Failed to drop database %s", dbName)
		}
	}()

	// Connect again: this time to the database we just created.
	testDbPool, err := OpenPgxPool(ctx, connectionString+" dbname="+dbName)
	if err != nil {
		return err
	}
	defer testDbPool.Close()

	return action(testDbPool)
}
