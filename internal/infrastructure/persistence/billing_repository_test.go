package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/pymes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormReceiptRepository_SumByInvoice(t *testing.T) {
	const query = "SELECT COALESCE(SUM(valor), 0) FROM `recibos_caja` WHERE factura_id = ?"

	t.Run("sums every receipt in one query", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		repo := NewGormReceiptRepository(mdb.DB)

		mdb.Mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(77)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("4320.00"))

		total, err := repo.SumByInvoice(context.Background(), 77)

		require.NoError(t, err)
		assert.Equal(t, "4320", total.String())
		mdb.ExpectationsWereMet(t)
	})

	t.Run("no receipts", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		repo := NewGormReceiptRepository(mdb.DB)

		mdb.Mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(78)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

		total, err := repo.SumByInvoice(context.Background(), 78)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}
