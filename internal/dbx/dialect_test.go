package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{in: "", want: SQLite},
		{in: "sqlite3", want: SQLite},
		{in: "Postgres", want: Postgres},
		{in: "pgx", want: Postgres},
		{in: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM files WHERE account_id = ? AND id IN (?, ?)"

	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT id FROM files WHERE account_id = $1 AND id IN ($2, $3)", Postgres.Rebind(q))
}

func TestGooseDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", SQLite.GooseDialect())
	assert.Equal(t, "postgres", Postgres.GooseDialect())
	assert.Equal(t, "pgx", Postgres.DriverName())
}
