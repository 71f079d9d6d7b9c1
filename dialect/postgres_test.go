package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresPlaceholder(t *testing.T) {
	d := NewPostgresDialect()

	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$12", d.Placeholder(12))
}

func TestPostgresDumpValue(t *testing.T) {
	d := NewPostgresDialect()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"int", 42, "42"},
		{"negative", int64(-7), "-7"},
		{"unsigned", uint16(9), "9"},
		{"float", 1.5, "1.5"},
		{"float32", float32(0.25), "0.25"},
		{"string", "bar", "'bar'"},
		{"bool", true, "'true'"},
		{"bytes", []byte("raw"), "'raw'"},
		{"nil", nil, "'<nil>'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.DumpValue(tt.in))
		})
	}
}
