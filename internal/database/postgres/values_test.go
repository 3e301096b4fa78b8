package postgres

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joacominatel/telemetrydash/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToValue(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-3b7d-4c1e-9a3f-2d8e5b6c7a10")
	wide, _ := new(big.Int).SetString("12345678901234567891", 10)

	tests := []struct {
		name string
		in   any
		kind database.Kind
		want string
	}{
		{"nil", nil, database.KindNull, "null"},
		{"text", "ok", database.KindString, "ok"},
		{"bool", true, database.KindBool, "true"},
		{"int32", int32(7), database.KindNumber, "7"},
		{"int64", int64(1), database.KindNumber, "1"},
		{"float64", 2.25, database.KindNumber, "2.25"},
		{"timestamptz", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), database.KindString, "2024-01-01T00:00:00Z"},
		{"numeric", pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}, database.KindNumber, "123.45"},
		{"numeric keeps scale", pgtype.Numeric{Int: big.NewInt(110), Exp: -2, Valid: true}, database.KindNumber, "1.10"},
		{"wide numeric", pgtype.Numeric{Int: wide, Exp: -1, Valid: true}, database.KindNumber, "1234567890123456789.1"},
		{"null numeric", pgtype.Numeric{}, database.KindNull, "null"},
		{"time", pgtype.Time{Microseconds: 3600000000, Valid: true}, database.KindString, "01:00:00.000000"},
		{"null time", pgtype.Time{}, database.KindNull, "null"},
		{"null interval", pgtype.Interval{}, database.KindNull, "null"},
		{"uuid", [16]byte(id), database.KindString, id.String()},
		{"bytea", []byte("raw"), database.KindString, "raw"},
		{"jsonb", map[string]any{"a": float64(1)}, database.KindString, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := toValue(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestToValueInterval(t *testing.T) {
	in := pgtype.Interval{Days: 1, Microseconds: 3600000000, Valid: true}
	text, err := in.Value()
	require.NoError(t, err)

	v := toValue(in)
	assert.Equal(t, database.KindString, v.Kind())
	assert.Equal(t, text, v.String())
	assert.Contains(t, v.String(), "1 day")
	assert.Contains(t, v.String(), "01:00:00")
}

func TestToValueNumericApproximation(t *testing.T) {
	v := toValue(pgtype.Numeric{Int: big.NewInt(110), Exp: -2, Valid: true})
	assert.InDelta(t, 1.1, v.Number(), 1e-9)
}

func TestDriverNotConnected(t *testing.T) {
	d := New()
	_, err := d.SelectRows(t.Context(), database.RowQuery{Table: "t"})
	assert.ErrorIs(t, err, errNotConnected)

	_, err = d.CountRows(t.Context(), database.CountQuery{Table: "t"})
	assert.ErrorIs(t, err, errNotConnected)

	assert.ErrorIs(t, d.Ping(t.Context()), errNotConnected)
	assert.NoError(t, d.Close())
}
