package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"github.com/armadaproject/tierprobe/internal/common/database"
	"github.com/armadaproject/tierprobe/internal/tierprobe/model"
)

// PostgresTierRepository reads tiers from a postgres table through a pgx connection pool.
type PostgresTierRepository struct {
	dbpool    *pgxpool.Pool
	table     string
	drawQuery string
}

func NewPostgresTierRepository(ctx context.Context, connectionString string, table string) (*PostgresTierRepository, error) {
	pool, err := database.OpenPgxPool(ctx, connectionString)
	if err != nil {
		return nil, err
	}
	return NewPostgresTierRepositoryFromPool(pool, table), nil
}

func NewPostgresTierRepositoryFromPool(pool *pgxpool.Pool, table string) *PostgresTierRepository {
	return &PostgresTierRepository{
		dbpool:    pool,
		table:     table,
		drawQuery: postgresDrawQuery(table),
	}
}

func (r *PostgresTierRepository) Draw(ctx context.Context) (model.Observation, error) {
	var o model.Observation
	var name *string
	err := r.dbpool.QueryRow(ctx, r.drawQuery).Scan(&o.Id, &name, &o.Probability)
	if err == pgx.ErrNoRows {
		return model.Observation{}, errors.WithStack(ErrNoTierSelected)
	} else if err != nil {
		return model.Observation{}, errors.Wrapf(err, "error reading selected tier from %s", r.table)
	}
	if name != nil {
		o.Name = *name
	}
	return o, nil
}

func (r *PostgresTierRepository) ListTiers(ctx context.Context) ([]model.Tier, error) {
	rows, err := r.dbpool.Query(ctx, listTiersQuery(r.table))
	if err != nil {
		return nil, errors.Wrapf(err, "error listing tiers from %s", r.table)
	}
	defer rows.Close()

	var tiers []model.Tier
	for rows.Next() {
		var tier model.Tier
		var name *string
		if err := rows.Scan(&tier.Id, &name, &tier.Probability); err != nil {
			return tiers, errors.WithStack(err)
		}
		if name != nil {
			tier.Name = *name
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return tiers, errors.WithStack(err)
	}
	return tiers, nil
}

func (r *PostgresTierRepository) Setup(ctx context.Context) error {
	for _, stmt := range postgresSetupStatements(r.table) {
		if _, err := r.dbpool.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "error creating table %s", r.table)
		}
	}
	return nil
}

func (r *PostgresTierRepository) UpsertTiers(ctx context.Context, tiers []model.Tier) error {
	stmt := postgresUpsertStatement(r.table)
	return r.dbpool.BeginTxFunc(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, tier := range tiers {
			batch.Queue(stmt, tier.Id, tier.Name, tier.Probability)
		}
		results := tx.SendBatch(ctx, batch)
		for i := range tiers {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return errors.Wrapf(err, "error upserting tier %d", tiers[i].Id)
			}
		}
		return results.Close()
	})
}

func (r *PostgresTierRepository) HealthCheck(ctx context.Context) (bool, error) {
	row := r.dbpool.QueryRow(ctx, "SELECT 1")
	var col int
	err := row.Scan(&col)
	if err == nil {
		return true, nil
	} else {
		return false, fmt.Errorf("database health check failed: %v", err)
	}
}

func (r *PostgresTierRepository) Close() {
	r.dbpool.Close()
}
