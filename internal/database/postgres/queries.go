package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/joacominatel/telemetrydash/internal/database"
)

// newBuilder returns a statement builder using PostgreSQL placeholders.
func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// tableIdent quotes a schema-qualified table name.
func tableIdent(schema, table string) string {
	if schema == "" {
		return pgx.Identifier{table}.Sanitize()
	}
	return pgx.Identifier{schema, table}.Sanitize()
}

func columnIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// buildSelectRows renders: SELECT * FROM t [ORDER BY col DESC] [LIMIT n]
func buildSelectRows(qb squirrel.StatementBuilderType, q database.RowQuery) (string, []any, error) {
	b := qb.Select("*").From(tableIdent(q.Schema, q.Table))
	if q.OrderBy != "" {
		b = b.OrderBy(columnIdent(q.OrderBy) + " DESC")
	}
	if q.Limit > 0 {
		b = b.Limit(q.Limit)
	}
	return b.ToSql()
}

// buildCountRows renders: SELECT count(*) FROM t [WHERE col >= $1]
func buildCountRows(qb squirrel.StatementBuilderType, q database.CountQuery) (string, []any, error) {
	b := qb.Select("count(*)").From(tableIdent(q.Schema, q.Table))
	if q.Filtered() {
		b = b.Where(squirrel.GtOrEq{columnIdent(q.SinceColumn): q.Since})
	}
	return b.ToSql()
}
