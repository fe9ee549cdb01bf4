package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// identPattern: table/column names reaching this repo come from boot-time
// filter registrations, not requests, but they are interpolated into SQL so
// they are validated anyway.
var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type PostgresLinksRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresLinksRepo(db *sql.DB, logger *zap.Logger) *PostgresLinksRepo {
	return &PostgresLinksRepo{db: db, logger: logger}
}

func (r *PostgresLinksRepo) ResolveIndirectIDs(ctx context.Context, through, via, match, value, result string) ([]string, error) {
	for _, ident := range []string{through, via, match, result} {
		if !identPattern.MatchString(ident) {
			return nil, fmt.Errorf("invalid identifier %q in link resolution", ident)
		}
	}

	q := fmt.Sprintf(
		`SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL AND %s = $1`,
		result, through, via, match,
	)

	rows, err := r.db.QueryContext(ctx, q, value)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s ids: %w", through, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s id: %w", through, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
