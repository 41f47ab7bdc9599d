package tenantschema

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/pymes/internal/testutil"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const versionQuery = "SELECT version FROM schema_version WHERE id = 1"

var errNoLedger = &mysql.MySQLError{Number: 1146, Message: "Table 'empresa_a.schema_version' doesn't exist"}

func newTestInitializer(t *testing.T) *Initializer {
	i := NewInitializer(zaptest.NewLogger(t))
	i.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return i
}

func expectVersion(mock sqlmock.Sqlmock, version int) {
	mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(version))
}

func expectTables(mock sqlmock.Sqlmock) {
	for _, tbl := range tables {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + tbl.name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// expectColumns answers SHOW COLUMNS for table with every patched column
// except the ones listed in missing.
func expectColumns(mock sqlmock.Sqlmock, table string, missing ...string) {
	rows := sqlmock.NewRows([]string{"Field", "Type"}).AddRow("id", "bigint")
	for _, p := range patches {
		if p.table != table {
			continue
		}
		for _, c := range p.columns {
			if !slices.Contains(missing, c.column) {
				rows.AddRow(c.column, "varchar")
			}
		}
	}
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM " + table)).WillReturnRows(rows)
}

func expectLedgerWrite(mock sqlmock.Sqlmock) {
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_version (id, version, applied_at) VALUES (1, ?, ?)")).
		WithArgs(CurrentVersion, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestInitializer_Ensure_FreshDatabase(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	mdb.Mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).WillReturnError(errNoLedger)
	expectTables(mdb.Mock)
	expectColumns(mdb.Mock, "productos")
	expectColumns(mdb.Mock, "compras")
	expectColumns(mdb.Mock, "facturas")
	expectLedgerWrite(mdb.Mock)

	report, err := newTestInitializer(t).Ensure(context.Background(), mdb.DB)

	require.NoError(t, err)
	assert.Equal(t, 0, report.FromVersion)
	assert.Equal(t, CurrentVersion, report.Version)
	assert.Len(t, report.Tables, len(tables))
	assert.Empty(t, report.Applied())
	assert.NoError(t, report.Err())
	mdb.ExpectationsWereMet(t)
}

func TestInitializer_Ensure_TableOrder(t *testing.T) {
	pos := func(name string) int {
		return slices.IndexFunc(tables, func(t tableDDL) bool { return t.name == name })
	}

	assert.Less(t, pos("sucursales"), pos("documentos"))
	assert.Less(t, pos("terceros"), pos("compras"))
	assert.Less(t, pos("compras"), pos("compras_detalle"))
	assert.Less(t, pos("productos"), pos("compras_detalle"))
	assert.Less(t, pos("facturas"), pos("factura_detalle"))
	assert.Less(t, pos("facturas"), pos("recibos_caja"))
	assert.Less(t, pos("productos"), pos("inventario_sucursales"))
}

func TestInitializer_Ensure_PatchesMissingColumns(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	expectVersion(mdb.Mock, 1)
	expectTables(mdb.Mock)
	expectColumns(mdb.Mock, "productos", "imagen_url", "visible_tienda")
	mdb.Mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE productos ADD COLUMN imagen_url VARCHAR(500)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mdb.Mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE productos ADD COLUMN visible_tienda TINYINT(1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectColumns(mdb.Mock, "compras")
	expectColumns(mdb.Mock, "facturas", "metodo_pago")
	mdb.Mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE facturas ADD COLUMN metodo_pago")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectLedgerWrite(mdb.Mock)

	report, err := newTestInitializer(t).Ensure(context.Background(), mdb.DB)

	require.NoError(t, err)
	assert.Equal(t, 1, report.FromVersion)
	assert.Equal(t, CurrentVersion, report.Version)

	var applied []string
	for _, c := range report.Applied() {
		applied = append(applied, c.Table+"."+c.Column)
	}
	assert.Equal(t, []string{"productos.imagen_url", "productos.visible_tienda", "facturas.metodo_pago"}, applied)
	mdb.ExpectationsWereMet(t)
}

func TestInitializer_Ensure_ColumnFailureIsReported(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	expectVersion(mdb.Mock, 2)
	expectTables(mdb.Mock)
	expectColumns(mdb.Mock, "productos", "categoria")
	mdb.Mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE productos ADD COLUMN categoria")).
		WillReturnError(errors.New("lock wait timeout exceeded"))
	mdb.Mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM compras")).
		WillReturnError(errors.New("connection reset"))
	expectColumns(mdb.Mock, "facturas")

	report, err := newTestInitializer(t).Ensure(context.Background(), mdb.DB)

	require.NoError(t, err, "column failures must not fail the run")
	assert.Equal(t, 2, report.Version, "ledger must not advance past a failed patch")

	failed := report.Failed()
	require.Len(t, failed, 1+len(patches[1].columns))
	assert.Equal(t, "categoria", failed[0].Column)
	assert.Contains(t, failed[0].Reason, "lock wait timeout")
	for _, c := range failed[1:] {
		assert.Equal(t, "compras", c.Table)
	}
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "productos.categoria")
	mdb.ExpectationsWereMet(t)
}

func TestInitializer_Ensure_TableFailureStops(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	mdb.Mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).WillReturnError(errNoLedger)
	mdb.Mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS sucursales (")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mdb.Mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS terceros (")).
		WillReturnError(&mysql.MySQLError{Number: 1142, Message: "CREATE command denied"})

	report, err := newTestInitializer(t).Ensure(context.Background(), mdb.DB)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table terceros")
	assert.Equal(t, []string{"sucursales"}, report.Tables)
	mdb.ExpectationsWereMet(t)
}

func TestInitializer_Preflight(t *testing.T) {
	t.Run("current ledger issues no ddl", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		expectVersion(mdb.Mock, CurrentVersion)

		report, err := newTestInitializer(t).Preflight(context.Background(), mdb.DB)

		require.NoError(t, err)
		assert.Nil(t, report)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("missing ledger runs ensure", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		mdb.Mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).WillReturnError(errNoLedger)
		mdb.Mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).WillReturnError(errNoLedger)
		expectTables(mdb.Mock)
		expectColumns(mdb.Mock, "productos")
		expectColumns(mdb.Mock, "compras")
		expectColumns(mdb.Mock, "facturas")
		expectLedgerWrite(mdb.Mock)

		report, err := newTestInitializer(t).Preflight(context.Background(), mdb.DB)

		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, CurrentVersion, report.Version)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("ledger read error", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		mdb.Mock.ExpectQuery(regexp.QuoteMeta(versionQuery)).WillReturnError(errors.New("connection reset"))

		report, err := newTestInitializer(t).Preflight(context.Background(), mdb.DB)

		require.Error(t, err)
		assert.Nil(t, report)
	})
}

func TestPatches_MatchCreateTable(t *testing.T) {
	for _, p := range patches {
		idx := slices.IndexFunc(tables, func(t tableDDL) bool { return t.name == p.table })
		require.GreaterOrEqual(t, idx, 0, p.table)
		for _, c := range p.columns {
			assert.Contains(t, tables[idx].ddl, "  "+c.column+" "+c.definition,
				"%s.%s differs from CREATE TABLE", p.table, c.column)
		}
	}
}
