package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_FindForUpdate(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	repo := NewGormProductRepository(mdb.DB)

	mdb.Mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `productos` WHERE id = ? ORDER BY `productos`.`id` LIMIT ? FOR UPDATE")).
		WithArgs(int64(10), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "stock"}).AddRow(10, "Cafe", "12.5"))

	product, err := repo.FindForUpdate(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, "12.5", product.Stock.String())
	mdb.ExpectationsWereMet(t)
}

func TestGormProductRepository_AddStock(t *testing.T) {
	t.Run("single statement update", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		repo := NewGormProductRepository(mdb.DB)

		mdb.Mock.ExpectExec(regexp.QuoteMeta("UPDATE `productos` SET `stock`=stock + ? WHERE id = ?")).
			WithArgs(sqlmock.AnyArg(), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.AddStock(context.Background(), 10, decimal.NewFromInt(-3)))
		mdb.ExpectationsWereMet(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		repo := NewGormProductRepository(mdb.DB)

		mdb.Mock.ExpectExec("UPDATE `productos`").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.AddStock(context.Background(), 10, decimal.NewFromInt(1)), shared.ErrNotFound)
	})
}

func TestGormProductRepository_ListStoreVisible(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	repo := NewGormProductRepository(mdb.DB)

	mdb.Mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `productos` WHERE activo = ? AND visible_tienda = ?")).
		WithArgs(true, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mdb.Mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `productos` WHERE activo = ? AND visible_tienda = ? ORDER BY nombre ASC LIMIT ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	filter := shared.DefaultFilter()
	filter.Filters["activo"] = false

	items, total, err := repo.ListStoreVisible(context.Background(), filter)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
	mdb.ExpectationsWereMet(t)
}

func TestGormDocumentRepository_Advance(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	repo := NewGormDocumentRepository(mdb.DB)

	mdb.Mock.ExpectExec(regexp.QuoteMeta("UPDATE `documentos` SET `consecutivo_actual`=consecutivo_actual + 1 WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Advance(context.Background(), 2))
	mdb.ExpectationsWereMet(t)
}

func TestGormProductRepository_UpdateLeavesStockAlone(t *testing.T) {
	var statement string
	matcher := sqlmock.QueryMatcherFunc(func(_, actual string) error {
		statement = actual
		return nil
	})
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := testutil.OpenMockGorm(sqlDB)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewGormProductRepository(db)
	err = repo.Update(context.Background(), &catalog.Product{
		ID:       5,
		Name:     "Cafe",
		Stock:    decimal.NewFromInt(50),
		ImageURL: "productos/800100200/5/foto.png",
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, statement, "UPDATE `productos` SET")
	assert.Contains(t, statement, "`nombre`=?")
	assert.Contains(t, statement, "`activo`=?", "zero values are still written")
	assert.Contains(t, statement, "`stock_minimo`=?")
	assert.NotContains(t, statement, "`stock`=")
	assert.NotContains(t, statement, "`imagen_url`")
	assert.NotContains(t, statement, "`created_at`")
	assert.Contains(t, statement, "WHERE `id` = ?")
}
