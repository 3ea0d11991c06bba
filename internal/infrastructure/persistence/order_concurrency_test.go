package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atelier/backend/internal/domain/location"
	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepo creates a repository with a mocked DB for concurrency tests
func newMockOrderRepo(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func createOrderForConcurrency(t *testing.T) *order.Order {
	t.Helper()

	source := location.Ref{Kind: location.KindBranch, ID: uuid.New()}
	item, err := order.NewOrderItem(uuid.New(), order.ItemTypeBuy, valueobject.NewMoneyEGPFromFloat(300), 1, nil, nil)
	require.NoError(t, err)

	o, err := order.NewOrder(uuid.New(), "Mona Hassan", source, []order.OrderItem{*item}, nil, decimal.Zero)
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_SaveWithLock_OptimisticLocking(t *testing.T) {
	t.Run("successful save with matching version", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepo(t)
		defer mockDB.Close()

		o := createOrderForConcurrency(t)
		o.ApplyLedger(decimal.NewFromInt(300))

		mock.ExpectBegin()
		rows := sqlmock.NewRows([]string{"version"}).AddRow(1)
		mock.ExpectQuery(`SELECT .* FROM "orders"`).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), o)

		assert.NoError(t, err)
		assert.Equal(t, 2, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when the row was modified concurrently", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepo(t)
		defer mockDB.Close()

		o := createOrderForConcurrency(t)

		// Another transaction already bumped the version.
		mock.ExpectBegin()
		rows := sqlmock.NewRows([]string{"version"}).AddRow(2)
		mock.ExpectQuery(`SELECT .* FROM "orders"`).
			WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when the conditional update hits no row", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepo(t)
		defer mockDB.Close()

		o := createOrderForConcurrency(t)

		// The version matched on read but the row changed before the update.
		mock.ExpectBegin()
		rows := sqlmock.NewRows([]string{"version"}).AddRow(1)
		mock.ExpectQuery(`SELECT .* FROM "orders"`).
			WillReturnRows(rows)
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when the order does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepo(t)
		defer mockDB.Close()

		o := createOrderForConcurrency(t)

		mock.ExpectBegin()
		rows := sqlmock.NewRows([]string{"version"})
		mock.ExpectQuery(`SELECT .* FROM "orders"`).
			WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o)

		assert.True(t, shared.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
