package records

import (
	"context"
	"database/sql"
)

var pgStatements = sqlStatements{
	insert: `
INSERT INTO records (name, age)
VALUES ($1, $2)
ON CONFLICT (name, age) DO NOTHING`,
	selectAll: `
SELECT name, age
FROM records
ORDER BY seq`,
	selectNamed: `
SELECT name, age
FROM records
WHERE name = $1
ORDER BY seq`,
}

// PGRepo stores records in PostgreSQL.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Add(ctx context.Context, rec Record) error {
	return sqlAdd(ctx, r.DB, pgStatements, rec)
}

func (r *PGRepo) AddWith(ctx context.Context, name string, age int) error {
	return r.Add(ctx, NewRecord(name, age))
}

func (r *PGRepo) All(ctx context.Context) ([]Record, error) {
	return sqlQuery(ctx, r.DB, pgStatements.selectAll)
}

func (r *PGRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	return sqlQuery(ctx, r.DB, pgStatements.selectNamed, name)
}

// Ping checks the database connection.
func (r *PGRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

var _ Repo = (*PGRepo)(nil)
