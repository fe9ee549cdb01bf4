package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flowcrm-data/internal/domain"
	"flowcrm-data/internal/query"

	"go.uber.org/zap"
)

type PostgresRecordsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresRecordsRepo(db *sql.DB, logger *zap.Logger) *PostgresRecordsRepo {
	return &PostgresRecordsRepo{db: db, logger: logger}
}

func (r *PostgresRecordsRepo) ExecuteList(ctx context.Context, entityType string, q query.ExecutableQuery, page, size int) ([]domain.Record, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM (" + q.SQL + ") sub"
	if err := r.db.QueryRowContext(ctx, countSQL, q.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", entityType, err)
	}

	args := append(append([]any{}, q.Args...), size, (page-1)*size)
	pageSQL := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", q.SQL, len(q.Args)+1, len(q.Args)+2)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, pageSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", entityType, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read columns for %s: %w", entityType, err)
	}

	records := []domain.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s row: %w", entityType, err)
		}

		rec := domain.Record{EntityType: entityType, Fields: map[string]any{}}
		for i, col := range columns {
			val := normalizeValue(values[i])
			rec.Fields[col] = val
			if rec.ID == "" && isIDColumn(col) {
				if s, ok := val.(string); ok {
					rec.ID = s
				}
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	r.logger.Debug("list query executed",
		zap.String("entity_type", entityType),
		zap.Int("rows", len(records)),
		zap.Int("total", total),
		zap.Duration("took", time.Since(start)),
	)

	return records, total, nil
}

// isIDColumn: base tables name their key "<entity>_id" (or plain "id").
func isIDColumn(col string) bool {
	return col == "id" || strings.HasSuffix(col, "_id")
}

// normalizeValue makes driver values JSON-friendly.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return v
	}
}
