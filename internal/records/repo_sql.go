package records

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlStatements holds the dialect-specific statements shared by the SQL repos.
// Every statement relies on the UNIQUE (name, age) constraint and the seq
// column created by the migrations.
type sqlStatements struct {
	insert      string
	selectAll   string
	selectNamed string
}

func sqlAdd(ctx context.Context, db *sql.DB, stmts sqlStatements, rec Record) error {
	if err := Validate(rec); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, stmts.insert, rec.Name, rec.Age)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert record rows affected: %w", err)
	}
	if affected == 0 {
		return &DuplicateError{Record: rec}
	}
	return nil
}

func sqlQuery(ctx context.Context, db *sql.DB, query string, args ...any) ([]Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Age); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
