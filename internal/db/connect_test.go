package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, DriverSQLite, "file:schema_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `INSERT INTO question_sets (id,title,kind,level,question_count,body_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`, "s", "S", "lesson", "A1", 1, "{}", 1)
	require.NoError(t, err)

	// schema creation is idempotent
	require.NoError(t, ensureSchema(ctx, conn, DriverSQLite))
	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_sets`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("oracle"), "")
	assert.ErrorContains(t, err, "unsupported driver")
}
