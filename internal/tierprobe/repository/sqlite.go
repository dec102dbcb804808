package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/armadaproject/tierprobe/internal/common/database"
	"github.com/armadaproject/tierprobe/internal/common/util"
	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// SqliteTierRepository reads tiers from a sqlite table.
type SqliteTierRepository struct {
	db        *sql.DB
	table     string
	drawQuery string
	lock      sync.Mutex
}

func NewSqliteTierRepository(ctx context.Context, path string, table string) (*SqliteTierRepository, error) {
	db, err := database.OpenSqlite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewSqliteTierRepositoryFromDb(db, table), nil
}

func NewSqliteTierRepositoryFromDb(db *sql.DB, table string) *SqliteTierRepository {
	return &SqliteTierRepository{
		db:        db,
		table:     table,
		drawQuery: sqliteDrawQuery(table),
	}
}

func (r *SqliteTierRepository) Draw(ctx context.Context) (model.Observation, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var o model.Observation
	var name sql.NullString
	err := r.db.QueryRowContext(ctx, r.drawQuery).Scan(&o.Id, &name, &o.Probability)
	if err == sql.ErrNoRows {
		return model.Observation{}, errors.WithStack(ErrNoTierSelected)
	} else if err != nil {
		return model.Observation{}, errors.Wrapf(err, "error reading selected tier from %s", r.table)
	}
	o.Name = name.String
	return o, nil
}

func (r *SqliteTierRepository) ListTiers(ctx context.Context) ([]model.Tier, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	rows, err := r.db.QueryContext(ctx, listTiersQuery(r.table))
	if err != nil {
		return nil, errors.Wrapf(err, "error listing tiers from %s", r.table)
	}
	defer rows.Close()

	var tiers []model.Tier
	for rows.Next() {
		var tier model.Tier
		var name sql.NullString
		if err := rows.Scan(&tier.Id, &name, &tier.Probability); err != nil {
			return tiers, errors.WithStack(err)
		}
		tier.Name = name.String
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return tiers, errors.WithStack(err)
	}
	return tiers, nil
}

func (r *SqliteTierRepository) Setup(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, stmt := range sqliteSetupStatements(r.table) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "error setting up table %s", r.table)
		}
	}
	return nil
}

func (r *SqliteTierRepository) UpsertTiers(ctx context.Context, tiers []model.Tier) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	stmt, err := tx.PrepareContext(ctx, sqliteUpsertStatement(r.table))
	if err != nil {
		_ = tx.Rollback()
		return errors.WithStack(err)
	}
	defer stmt.Close()

	for _, tier := range tiers {
		if _, err := stmt.ExecContext(ctx, tier.Id, tier.Name, tier.Probability); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "error upserting tier %d", tier.Id)
		}
	}
	return errors.WithStack(tx.Commit())
}

func (r *SqliteTierRepository) HealthCheck(ctx context.Context) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	row := r.db.QueryRowContext(ctx, "SELECT 1")
	var col int
	err := row.Scan(&col)
	if err == nil {
		return true, nil
	} else {
		return false, fmt.Errorf("SQL health check failed: %v", err)
	}
}

func (r *SqliteTierRepository) Close() {
	util.CloseResource("sqlite database", r.db)
}
