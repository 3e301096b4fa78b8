package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joacominatel/telemetrydash/internal/database"
)

// toValue converts a value decoded by pgx into a dashboard cell.
func toValue(v any) database.Value {
	switch t := v.(type) {
	case nil:
		return database.Null()
	case string:
		return database.String(t)
	case bool:
		return database.Bool(t)
	case int:
		return database.Int(int64(t))
	case int16:
		return database.Int(int64(t))
	case int32:
		return database.Int(int64(t))
	case int64:
		return database.Int(t)
	case float32:
		return database.Float(float64(t))
	case float64:
		return database.Float(t)
	case time.Time:
		return database.String(t.UTC().Format(time.RFC3339Nano))
	case pgtype.Numeric:
		text, err := t.Value()
		s, ok := text.(string)
		if err != nil || !ok {
			return database.Null()
		}
		f, _ := t.Float64Value()
		return database.Decimal(s, f.Float64)
	case [16]byte:
		return database.String(uuid.UUID(t).String())
	case []byte:
		return database.String(string(t))
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return database.String(fmt.Sprintf("%v", t))
		}
		return database.String(string(b))
	case driver.Valuer:
		// pgtype time, interval and friends encode to their text form.
		dv, err := t.Value()
		if err != nil {
			return database.String(fmt.Sprintf("%v", t))
		}
		if s, ok := dv.(string); ok {
			return database.String(s)
		}
		return toValue(dv)
	case fmt.Stringer:
		return database.String(t.String())
	default:
		return database.String(fmt.Sprintf("%v", t))
	}
}
