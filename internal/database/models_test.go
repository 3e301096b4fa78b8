package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
		kind Kind
	}{
		{"null", Null(), "null", KindNull},
		{"string", String("ok"), "ok", KindString},
		{"int", Int(42), "42", KindNumber},
		{"negative int", Int(-7), "-7", KindNumber},
		{"float", Float(1.5), "1.5", KindNumber},
		{"whole float", Float(3), "3", KindNumber},
		{"decimal keeps scale", Decimal("1.10", 1.1), "1.10", KindNumber},
		{"true", Bool(true), "true", KindBool},
		{"false", Bool(false), "false", KindBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
			assert.Equal(t, tt.kind, tt.v.Kind())
		})
	}
}

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("id", Int(1))
	r.Set("data_hora", String("2024-01-01T00:00:00Z"))
	r.Set("status", String("ok"))
	r.Set("id", Int(2))

	assert.Equal(t, []string{"id", "data_hora", "status"}, r.Keys())
	assert.Equal(t, 3, r.Len())

	v, ok := r.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "2", v.String())
}

func TestRecordMissingKeyIsNull(t *testing.T) {
	r := NewRecord()
	v, ok := r.Get("missing")
	assert.False(t, ok)
	assert.True(t, v.IsNull())

	var nilRecord *Record
	v, ok = nilRecord.Get("id")
	assert.False(t, ok)
	assert.True(t, v.IsNull())
	assert.Nil(t, nilRecord.Keys())
}

func TestRecordKeysIsACopy(t *testing.T) {
	r := NewRecord()
	r.Set("a", Int(1))
	keys := r.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestCountQueryFiltered(t *testing.T) {
	assert.False(t, CountQuery{Table: "t"}.Filtered())
	assert.False(t, CountQuery{Table: "t", SinceColumn: "ts"}.Filtered())
	assert.True(t, CountQuery{Table: "t", SinceColumn: "ts", Since: time.Now()}.Filtered())
}
