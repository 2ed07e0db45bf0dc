package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by a mocked SQL driver
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func stockLevelColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version", "store_id",
		"product_id", "location_id", "quantity", "reserved_quantity", "position",
	}
}

func TestGormStockLevelRepository_FindByID(t *testing.T) {
	t.Run("finds existing stock level", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		levelID := uuid.New()
		storeID := uuid.New()
		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockLevelColumns()).
			AddRow(levelID, now, now, 1, storeID, productID, uuid.New(),
				decimal.NewFromInt(10), decimal.NewFromInt(2), 0)

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE id = \$1`).
			WithArgs(levelID, 1).
			WillReturnRows(rows)

		level, err := repo.FindByID(context.Background(), levelID)
		require.NoError(t, err)
		assert.Equal(t, levelID, level.ID)
		assert.Equal(t, productID, level.ProductID)
		assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing stock level", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		levelID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "stock_levels"`).
			WithArgs(levelID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), levelID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockLevelRepository_FindByProductsForUpdate(t *testing.T) {
	t.Run("locks rows and groups by product", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		storeID := uuid.New()
		productA := uuid.New()
		productB := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockLevelColumns()).
			AddRow(uuid.New(), now, now, 1, storeID, productA, uuid.New(),
				decimal.NewFromInt(5), decimal.Zero, 0).
			AddRow(uuid.New(), now, now, 1, storeID, productA, uuid.New(),
				decimal.NewFromInt(3), decimal.NewFromInt(1), 1).
			AddRow(uuid.New(), now, now, 1, storeID, productB, uuid.New(),
				decimal.NewFromInt(8), decimal.Zero, 0)

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE store_id = \$1 AND product_id IN \(\$2,\$3\) ORDER BY product_id, position ASC FOR UPDATE`).
			WithArgs(storeID, productA, productB).
			WillReturnRows(rows)

		levels, err := repo.FindByProductsForUpdate(context.Background(), storeID, []uuid.UUID{productA, productB})
		require.NoError(t, err)
		assert.Len(t, levels[productA], 2)
		assert.Len(t, levels[productB], 1)
		assert.Equal(t, 0, levels[productA][0].Position)
		assert.Equal(t, 1, levels[productA][1].Position)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty map for no product IDs", func(t *testing.T) {
		db, _, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		levels, err := repo.FindByProductsForUpdate(context.Background(), uuid.New(), nil)
		require.NoError(t, err)
		assert.Empty(t, levels)
	})
}
