package pgxutil_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/data/pgxutil"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/testutil"
)

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT count(*) FROM tx_rows`).Scan(&n))
	return n
}

func TestWithSQLTx(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := testutil.SetupEphemeralSchemaDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE tx_rows (n INT NOT NULL)`)
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = pgxutil.WithSQLTx(ctx, db, func(tx *sql.Tx) error {
		if _, execErr := tx.ExecContext(ctx, `INSERT INTO tx_rows (n) VALUES (1)`); execErr != nil {
			return execErr
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, countRows(t, db), "failed fn must roll back")

	err = pgxutil.WithSQLTx(ctx, db, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, `INSERT INTO tx_rows (n) VALUES (2)`)
		return execErr
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db))
}

func TestWithPgxConn_NilDB(t *testing.T) {
	err := pgxutil.WithPgxConn(context.Background(), nil, func(*pgx.Conn) error { return nil })
	assert.EqualError(t, err, "database handle is nil")
}
