package router

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/erp/pymes/internal/application/billing"
	"github.com/erp/pymes/internal/application/catalog"
	"github.com/erp/pymes/internal/application/company"
	"github.com/erp/pymes/internal/application/identity"
	"github.com/erp/pymes/internal/application/inventory"
	"github.com/erp/pymes/internal/application/partner"
	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/application/trade"
	domainbilling "github.com/erp/pymes/internal/domain/billing"
	domaincatalog "github.com/erp/pymes/internal/domain/catalog"
	domaincompany "github.com/erp/pymes/internal/domain/company"
	domainpartner "github.com/erp/pymes/internal/domain/partner"
	domaintenant "github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/infrastructure/auth"
	"github.com/erp/pymes/internal/infrastructure/config"
	"github.com/erp/pymes/internal/infrastructure/telemetry"
	"github.com/erp/pymes/internal/interfaces/http/handler"
	"github.com/erp/pymes/internal/interfaces/http/middleware"
	"github.com/erp/pymes/internal/testutil"
	"github.com/erp/pymes/internal/testutil/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// scriptedExecutor fails the first calls with the queued errors, then
// behaves like the wrapped stub.
type scriptedExecutor struct {
	*testutil.StubExecutor
	failures []error
}

func (e *scriptedExecutor) Run(ctx context.Context, nit string, fn func(ctx context.Context, s apptenant.Session) error) error {
	if len(e.failures) > 0 {
		err := e.failures[0]
		e.failures = e.failures[1:]
		e.Calls = append(e.Calls, nit)
		return err
	}
	return e.StubExecutor.Run(ctx, nit, fn)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	engine   *gin.Engine
	executor *scriptedExecutor
	session  *testutil.StubSession
	jwt      *auth.JWTService
	metrics  *telemetry.Metrics
}

func newTestServer(t *testing.T, pinger handler.Pinger) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)

	session := &testutil.StubSession{Info: apptenant.Info{NIT: "800100200", Name: "Ferreteria El Tornillo"}}
	exec := &scriptedExecutor{StubExecutor: &testutil.StubExecutor{Session: session}}
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-key-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "pymes-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	metrics, err := telemetry.NewMetrics()
	require.NoError(t, err)

	engine, err := New(Config{
		HTTP: config.HTTPConfig{
			MaxBodySize:        1 << 20,
			RateLimitEnabled:   true,
			RateLimitRequests:  100,
			RateLimitWindow:    time.Minute,
			LoginRatePerMinute: 5,
		},
		JWT:     middleware.JWTConfig{JWTService: jwtSvc, Blacklist: blacklist},
		Metrics: metrics,
		Logger:  log,
	}, Handlers{
		Auth: handler.NewAuthHandler(
			identity.NewAuthService(exec, jwtSvc, blacklist, log),
			middleware.NewKeyedLimiter(5, time.Minute),
		),
		Company:   handler.NewCompanyHandler(company.NewService(exec)),
		Partner:   handler.NewPartnerHandler(partner.NewService(exec)),
		Product:   handler.NewProductHandler(catalog.NewProductService(exec, nil, log)),
		Billing:   handler.NewBillingHandler(billing.NewInvoiceService(exec, log), billing.NewReceiptService(exec, log)),
		Purchase:  handler.NewPurchaseHandler(trade.NewPurchaseService(exec, log)),
		Inventory: handler.NewInventoryHandler(inventory.NewService(exec, log)),
		System:    handler.NewSystemHandler(pinger, exec, "test"),
	})
	require.NoError(t, err)

	return &testServer{engine: engine, executor: exec, session: session, jwt: jwtSvc, metrics: metrics}
}

func (s *testServer) bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	return s.bearerFor(t, "800100200", role)
}

func (s *testServer) bearerFor(t *testing.T, nit, role string) map[string]string {
	t.Helper()
	pair, err := s.jwt.GenerateTokenPair(auth.Identity{
		UserID: 9, Username: "caja1", NIT: nit, Company: "Ferreteria El Tornillo", Role: role,
	})
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + pair.AccessToken}
}

func TestHealth(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		s := newTestServer(t, fakePinger{})
		w := testutil.Do(t, s.engine, http.MethodGet, "/health", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		testutil.AssertSuccessResponse(t, w)
	})

	t.Run("master down", func(t *testing.T) {
		s := newTestServer(t, fakePinger{err: errors.New("connection refused")})
		w := testutil.Do(t, s.engine, http.MethodGet, "/health", nil, nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, false, testutil.JSONBody(t, w)["success"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	testutil.Do(t, s.engine, http.MethodGet, "/health", nil, nil)

	w := testutil.Do(t, s.engine, http.MethodGet, "/metrics", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pymes_http_requests_total")
}

func TestLogin_UnknownTenant(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	s.executor.Err = domaintenant.ErrTenantNotFound

	w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"nit": "900123456", "username": "admin", "password": "secret",
	}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	errMap := testutil.AssertErrorResponse(t, w, "TENANT_NOT_FOUND")
	assert.NotEmpty(t, errMap["request_id"])
	assert.Equal(t, []string{"900123456"}, s.executor.Calls)
}

func TestLogin_RateLimitedPerIPAndNIT(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	s.executor.Err = domaintenant.ErrInvalidCredentials
	body := map[string]string{"nit": "800100200", "username": "admin", "password": "wrong"}

	for range 5 {
		w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/auth/login", body, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	body["nit"] = "800100201"
	w = testutil.Do(t, s.engine, http.MethodPost, "/api/v1/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "other NIT has its own budget")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, fakePinger{})

	w := testutil.Do(t, s.engine, http.MethodGet, "/api/v1/productos", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	testutil.AssertErrorResponse(t, w, "UNAUTHORIZED")
	assert.Empty(t, s.executor.Calls)
}

func TestProtectedRoute_TenantRemovedFromDirectory(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	s.executor.Err = domaintenant.ErrTenantNotFound

	w := testutil.Do(t, s.engine, http.MethodGet, "/api/v1/productos", nil, s.bearerFor(t, "900123456", "admin"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	testutil.AssertErrorResponse(t, w, "TENANT_NOT_FOUND")
	assert.Equal(t, []string{"900123456"}, s.executor.Calls)
}

func TestCreateProduct_RetryAfterSchemaRepair(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	products := new(mocks.ProductRepository)
	products.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*domaincatalog.Product).ID = 5 }).
		Return(nil).Once()
	s.session.ProductRepo = products
	s.executor.failures = []error{domaintenant.ErrSchemaRetry}

	body := map[string]any{"codigo": "TOR-01", "nombre": "Tornillo 1/4", "precio_venta": "500", "iva": "19"}
	headers := s.bearer(t, "vendedor")

	first := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/productos", body, headers)
	assert.Equal(t, http.StatusServiceUnavailable, first.Code)
	testutil.AssertErrorResponse(t, first, "SCHEMA_RETRY")

	second := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/productos", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	data := testutil.AssertSuccessResponse(t, second)["data"].(map[string]any)
	assert.Equal(t, float64(5), data["id"])
	assert.Equal(t, "UND", data["unidad"])
	products.AssertExpectations(t)
}

func TestCreateProduct_ValidationError(t *testing.T) {
	s := newTestServer(t, fakePinger{})

	w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/productos",
		map[string]any{"nombre": "Sin codigo"}, s.bearer(t, "vendedor"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	testutil.AssertErrorResponse(t, w, "VALIDATION_ERROR")
	assert.Empty(t, s.executor.Calls)
}

func TestCreateInvoice_NumberedFromDocument(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	docs := new(mocks.DocumentRepository)
	partners := new(mocks.PartnerRepository)
	products := new(mocks.ProductRepository)
	invoices := new(mocks.InvoiceRepository)
	inv := new(mocks.InventoryRepository)
	s.session.DocumentRepo = docs
	s.session.PartnerRepo = partners
	s.session.ProductRepo = products
	s.session.InvoiceRepo = invoices
	s.session.InventoryRepo = inv

	docs.On("FindForUpdate", mock.Anything, int64(1)).Return(&domaincompany.Document{
		ID: 1, Kind: domaincompany.DocumentInvoice, Prefix: "FV-", CurrentNumber: 42, Active: true,
	}, nil)
	docs.On("Advance", mock.Anything, int64(1)).Return(nil)
	partners.On("FindByID", mock.Anything, int64(3)).Return(&domainpartner.Partner{ID: 3, Kind: domainpartner.KindCustomer}, nil)
	products.On("FindForUpdate", mock.Anything, int64(10)).Return(&domaincatalog.Product{
		ID: 10, Code: "P-10", Stock: decimalOf("20"), SalePrice: decimalOf("1500"), TaxRate: decimalOf("19"), Active: true,
	}, nil)
	products.On("AddStock", mock.Anything, int64(10), mock.Anything).Return(nil)
	invoices.On("Create", mock.Anything, mock.AnythingOfType("*billing.Invoice")).
		Run(func(args mock.Arguments) { args.Get(1).(*domainbilling.Invoice).ID = 77 }).
		Return(nil)
	inv.On("RecordMovement", mock.Anything, mock.Anything).Return(nil)

	w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/facturas", map[string]any{
		"documento_id": 1,
		"tercero_id":   3,
		"items": []map[string]any{
			{"producto_id": 10, "cantidad": 2},
			{"producto_id": 10, "cantidad": 1},
		},
	}, s.bearer(t, "vendedor"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := testutil.AssertSuccessResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "FV-42", data["numero"])
	assert.Equal(t, "4500", data["subtotal"])
	assert.Equal(t, "855", data["iva"])
	assert.Equal(t, "5355", data["total"])
	assert.Equal(t, float64(9), data["usuario_id"])
	assert.Len(t, data["items"], 2)
	docs.AssertCalled(t, "Advance", mock.Anything, int64(1))
	products.AssertNumberOfCalls(t, "FindForUpdate", 1)
	products.AssertNumberOfCalls(t, "AddStock", 2)
	inv.AssertNumberOfCalls(t, "RecordMovement", 2)
}

func TestCreateInvoice_InsufficientStock(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	docs := new(mocks.DocumentRepository)
	partners := new(mocks.PartnerRepository)
	products := new(mocks.ProductRepository)
	s.session.DocumentRepo = docs
	s.session.PartnerRepo = partners
	s.session.ProductRepo = products

	docs.On("FindForUpdate", mock.Anything, int64(1)).Return(&domaincompany.Document{
		ID: 1, Kind: domaincompany.DocumentInvoice, Prefix: "FV-", CurrentNumber: 42, Active: true,
	}, nil)
	docs.On("Advance", mock.Anything, int64(1)).Return(nil)
	partners.On("FindByID", mock.Anything, int64(3)).Return(&domainpartner.Partner{ID: 3, Kind: domainpartner.KindCustomer}, nil)
	products.On("FindForUpdate", mock.Anything, int64(10)).Return(&domaincatalog.Product{
		ID: 10, Code: "P-10", Name: "Tornillo", Stock: decimalOf("1"), SalePrice: decimalOf("1500"), Active: true,
	}, nil)

	w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/facturas", map[string]any{
		"documento_id": 1,
		"tercero_id":   3,
		"items":        []map[string]any{{"producto_id": 10, "cantidad": 2}},
	}, s.bearer(t, "vendedor"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, "INSUFFICIENT_STOCK")
	products.AssertNotCalled(t, "AddStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminSchemaInit(t *testing.T) {
	s := newTestServer(t, fakePinger{})
	s.executor.Report = &domaintenant.MigrationReport{NIT: "800100200", Version: 3}

	t.Run("admin runs initializer for own tenant", func(t *testing.T) {
		w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/admin/schema/init", nil, s.bearer(t, "admin"))

		require.Equal(t, http.StatusOK, w.Code)
		data := testutil.AssertSuccessResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, float64(3), data["version"])
		assert.Contains(t, s.executor.Calls, "800100200")
	})

	t.Run("other roles forbidden", func(t *testing.T) {
		w := testutil.Do(t, s.engine, http.MethodPost, "/api/v1/admin/schema/init", nil, s.bearer(t, "vendedor"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		testutil.AssertErrorResponse(t, w, "FORBIDDEN")
	})
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, fakePinger{})

	w := testutil.Do(t, s.engine, http.MethodGet, "/api/v1/nada", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	testutil.AssertErrorResponse(t, w, "NOT_FOUND")
}
