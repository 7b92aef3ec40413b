package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "purchases_provider_session_id_key"}
	assert.ErrorIs(t, duplicate(pgErr), ErrDuplicate)

	wrapped := fmt.Errorf("insert purchase: %w", pgErr)
	assert.ErrorIs(t, duplicate(wrapped), ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, duplicate(other))

	notUnique := &pgconn.PgError{Code: "23503"}
	assert.NotErrorIs(t, duplicate(notUnique), ErrDuplicate)

	assert.NoError(t, duplicate(nil))
}

// failDriver is a database/sql driver whose statements always fail with the
// configured error. It stands in for a live Postgres rejecting an INSERT.
type failDriver struct {
	err error
}

func (d *failDriver) Open(string) (driver.Conn, error) {
	return &failConn{err: d.err}, nil
}

type failConn struct {
	err error
}

func (c *failConn) Prepare(string) (driver.Stmt, error) { return nil, c.err }
func (c *failConn) Close() error                        { return nil }
func (c *failConn) Begin() (driver.Tx, error)           { return nil, c.err }

func TestCreatePurchaseMapsConstraintError(t *testing.T) {
	sql.Register("pgfail", &failDriver{err: &pgconn.PgError{
		Code:           uniqueViolation,
		ConstraintName: "purchases_provider_session_id_key",
	}})
	db, err := sql.Open("pgfail", "")
	require.NoError(t, err)
	defer db.Close()

	s := &PostgresStore{db: db}
	err = s.CreatePurchase(context.Background(), &Purchase{
		ID:                "pur_1",
		ProviderSessionID: "cs_123",
		CustomerEmail:     "sam@example.com",
		AmountCents:       2400,
		CreatedAt:         time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}
