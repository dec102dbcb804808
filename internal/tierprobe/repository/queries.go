package repository

import (
	"fmt"

	"github.com/jackc/pgx/v4"
)

// quoteTable returns name as a quoted SQL identifier. Both postgres and sqlite accept double quotes.
func quoteTable(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// The draw is taken once per query. Tiers are bucketed by the running sum of their probabilities in
// id order, and the tier whose running sum is the smallest value not below the draw is returned.

func postgresDrawQuery(table string) string {
	return fmt.Sprintf(`
WITH draw AS (SELECT random() AS value),
     cumsum AS (SELECT id, SUM(probability) OVER (ORDER BY id) AS cum_sum FROM %[1]s)
SELECT t.id, t.name, t.probability
FROM %[1]s t
         INNER JOIN cumsum c ON t.id = c.id
         CROSS JOIN draw r
WHERE c.cum_sum - r.value >= 0
ORDER BY c.cum_sum - r.value ASC
LIMIT 1`, quoteTable(table))
}

// sqlite's random() is a signed 64 bit integer; it is scaled into [0, 1). MATERIALIZED stops the
// planner from inlining the CTE and re-evaluating random() per row.
func sqliteDrawQuery(table string) string {
	return fmt.Sprintf(`
WITH draw AS MATERIALIZED (SELECT (random() / 18446744073709551616.0) + 0.5 AS value),
     cumsum AS (SELECT id, SUM(probability) OVER (ORDER BY id) AS cum_sum FROM %[1]s)
SELECT t.id, t.name, t.probability
FROM %[1]s t
         INNER JOIN cumsum c ON t.id = c.id
         CROSS JOIN draw r
WHERE c.cum_sum - r.value >= 0
ORDER BY c.cum_sum - r.value ASC
LIMIT 1`, quoteTable(table))
}

func listTiersQuery(table string) string {
	return fmt.Sprintf(`SELECT id, name, probability FROM %s ORDER BY id`, quoteTable(table))
}

func postgresSetupStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			name TEXT,
			probability DOUBLE PRECISION NOT NULL)`, quoteTable(table)),
	}
}

func postgresUpsertStatement(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (id, name, probability) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET (name, probability) = (excluded.name, excluded.probability)`, quoteTable(table))
}

func sqliteSetupStatements(table string) []string {
	return []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			name TEXT,
			probability REAL NOT NULL)`, quoteTable(table)),
	}
}

func sqliteUpsertStatement(table string) string {
	return fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, name, probability) VALUES (?, ?, ?)`, quoteTable(table))
}
