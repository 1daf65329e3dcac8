package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query := `UPDATE heads SET revision = ? WHERE account = ? AND revision = ?`

	t.Run("leaves question marks for sqlite", func(t *testing.T) {
		assert.Equal(t, query, SQLite.rebind(query))
	})

	t.Run("numbers placeholders for postgres", func(t *testing.T) {
		assert.Equal(t, `UPDATE heads SET revision = $1 WHERE account = $2 AND revision = $3`, Postgres.rebind(query))
	})
}
