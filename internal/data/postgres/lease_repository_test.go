package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseRepository_Acquire(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LeaseRepository{querier: mock, logger: newTestLogger()}

	t.Run("free lease is taken", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO sync_lease`).
			WithArgs(leaseName, "instance-a", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		ok, err := repo.Acquire(ctx, "instance-a", 10*time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held lease is refused", func(t *testing.T) {
		// Conflict row exists and the WHERE clause filters the update out
		mock.ExpectExec(`INSERT INTO sync_lease`).
			WithArgs(leaseName, "instance-b", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		ok, err := repo.Acquire(ctx, "instance-b", 10*time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLeaseRepository_Release(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LeaseRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectExec(`DELETE FROM sync_lease`).
		WithArgs(leaseName, "instance-a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = repo.Release(ctx, "instance-a")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
