package records

import (
	"context"
	"database/sql"
)

var sqliteStatements = sqlStatements{
	insert: `INSERT INTO records (name, age) VALUES (?, ?)
		 ON CONFLICT (name, age) DO NOTHING`,
	selectAll:   `SELECT name, age FROM records ORDER BY seq`,
	selectNamed: `SELECT name, age FROM records WHERE name = ? ORDER BY seq`,
}

// SQLiteRepo stores records in a SQLite database.
type SQLiteRepo struct {
	DB *sql.DB
}

func (r *SQLiteRepo) Add(ctx context.Context, rec Record) error {
	return sqlAdd(ctx, r.DB, sqliteStatements, rec)
}

func (r *SQLiteRepo) AddWith(ctx context.Context, name string, age int) error {
	return r.Add(ctx, NewRecord(name, age))
}

func (r *SQLiteRepo) All(ctx context.Context) ([]Record, error) {
	return sqlQuery(ctx, r.DB, sqliteStatements.selectAll)
}

func (r *SQLiteRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	return sqlQuery(ctx, r.DB, sqliteStatements.selectNamed, name)
}

// Ping checks the database connection.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

var _ Repo = (*SQLiteRepo)(nil)
