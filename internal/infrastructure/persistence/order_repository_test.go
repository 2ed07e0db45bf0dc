package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormOrderRepository_ExistsByOrderNumber(t *testing.T) {
	t.Run("reports taken order number", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		storeID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE store_id = \$1 AND order_number = \$2`).
			WithArgs(storeID, "ORD-2026-000001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByOrderNumber(context.Background(), storeID, "ORD-2026-000001")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports free order number", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByOrderNumber(context.Background(), uuid.New(), "ORD-2026-999999")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	t.Run("continues the sequence from the last order", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		storeID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE store_id = \$1 AND order_number LIKE \$2 ORDER BY order_number DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}).
				AddRow(uuid.New(), "ORD-2026-000041"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), storeID)
		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-000042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("starts at one for a fresh store", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.GenerateOrderNumber(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Contains(t, number, "-000001")
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("returns concurrency conflict on lost version race", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		order, err := ordering.NewOrder(
			uuid.New(), "ORD-2026-000007", uuid.New(),
			uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			valueobject.Currency("USD"),
		)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.SaveWithLock(context.Background(), order)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, order.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	t.Run("counts and pages without leaking clauses between queries", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(db)

		storeID := uuid.New()
		userID := uuid.New()
		orderID := uuid.New()

		mock.ExpectQuery(`^SELECT count\(\*\) FROM "orders" WHERE store_id = \$1 AND user_id = \$2$`).
			WithArgs(storeID, userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`^SELECT \* FROM "orders" WHERE store_id = \$1 AND user_id = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4$`).
			WithArgs(storeID, userID, 10, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "store_id", "user_id", "order_number", "status"}).
				AddRow(orderID, storeID, userID, "ORD-2026-000021", "pending"))
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		orders, total, err := repo.FindByUser(context.Background(), storeID, userID, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, "ORD-2026-000021", orders[0].OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
