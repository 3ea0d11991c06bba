package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atelier/backend/internal/domain/order"
	"github.com/atelier/backend/internal/domain/payment"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepo creates a repository with a mocked DB for concurrency
// tests
func newMockPaymentRepo(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func pendingEntryForConcurrency(t *testing.T, orderID uuid.UUID) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(orderID, valueobject.NewMoneyEGPFromFloat(300), payment.StatusPending, payment.TypeNormal)
	require.NoError(t, err)
	return p
}

func expectOrderAndLedgerReads(mock sqlmock.Sqlmock, orderID uuid.UUID, entryID uuid.UUID) {
	orderRows := sqlmock.NewRows([]string{"id", "client_name", "total_price", "paid", "remaining", "status", "version"}).
		AddRow(orderID.String(), "Mona Hassan", "300", "0", "300", "CREATED", 1)
	mock.ExpectQuery(`SELECT .* FROM "orders"`).
		WillReturnRows(orderRows)

	ledgerRows := sqlmock.NewRows([]string{"id", "order_id", "amount", "status", "type"}).
		AddRow(entryID.String(), orderID.String(), "300", "PAID", "NORMAL")
	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE order_id`).
		WillReturnRows(ledgerRows)
}

func TestGormPaymentRepository_SaveWithLockAndRecompute_Atomicity(t *testing.T) {
	t.Run("commits the payment and the order in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepo(t)
		defer mockDB.Close()

		orderID := uuid.New()
		p := pendingEntryForConcurrency(t, orderID)
		require.NoError(t, p.MarkPaid())

		mock.ExpectBegin()
		versionRows := sqlmock.NewRows([]string{"version"}).AddRow(1)
		mock.ExpectQuery(`SELECT .* FROM "payments"`).
			WillReturnRows(versionRows)
		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectOrderAndLedgerReads(mock, orderID, p.ID)
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		recomputed, err := repo.SaveWithLockAndRecompute(context.Background(), p)

		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, recomputed.Status)
		assert.True(t, recomputed.Remaining.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the payment write when the order recompute conflicts", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepo(t)
		defer mockDB.Close()

		orderID := uuid.New()
		p := pendingEntryForConcurrency(t, orderID)
		require.NoError(t, p.MarkPaid())

		// The payment update lands, but the order row changed underneath;
		// the whole unit must roll back so the PAID status never commits
		// without the recomputed balance.
		mock.ExpectBegin()
		versionRows := sqlmock.NewRows([]string{"version"}).AddRow(1)
		mock.ExpectQuery(`SELECT .* FROM "payments"`).
			WillReturnRows(versionRows)
		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectOrderAndLedgerReads(mock, orderID, p.ID)
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.SaveWithLockAndRecompute(context.Background(), p)

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a stale payment version aborts before the order is read", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepo(t)
		defer mockDB.Close()

		p := pendingEntryForConcurrency(t, uuid.New())
		require.NoError(t, p.MarkPaid())

		mock.ExpectBegin()
		versionRows := sqlmock.NewRows([]string{"version"}).AddRow(2)
		mock.ExpectQuery(`SELECT .* FROM "payments"`).
			WillReturnRows(versionRows)
		mock.ExpectRollback()

		_, err := repo.SaveWithLockAndRecompute(context.Background(), p)

		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
