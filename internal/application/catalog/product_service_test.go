package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/erp/pymes/internal/testutil"
	"github.com/erp/pymes/internal/testutil/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStorage struct {
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string) (string, time.Time, error) {
	if f.uploadErr != nil {
		return "", time.Time{}, f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return "https://s3.local/" + key + "?sig=1", time.Date(2026, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string) (string, time.Time, error) {
	return "https://s3.local/" + key + "?get=1", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func newTestProductService(t *testing.T, storage ImageStorage) (*ProductService, *mocks.ProductRepository) {
	repo := new(mocks.ProductRepository)
	executor := &testutil.StubExecutor{Session: &testutil.StubSession{ProductRepo: repo}}
	svc := NewProductService(executor, storage, zaptest.NewLogger(t))
	svc.newID = func() string { return "4f1c" }
	return svc, repo
}

func validInput() ProductInput {
	return ProductInput{
		Code:      "P-001",
		Name:      "Cuaderno",
		SalePrice: decimal.NewFromInt(3500),
		TaxRate:   decimal.NewFromInt(19),
		Stock:     decimal.NewFromInt(12),
	}
}

func TestProductService_Create(t *testing.T) {
	svc, repo := newTestProductService(t, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.Code == "P-001" && p.Active && p.Unit == "UND" && p.Stock.Equal(decimal.NewFromInt(12))
	})).Return(nil)

	product, err := svc.Create(context.Background(), "800100200", validInput())

	require.NoError(t, err)
	assert.Equal(t, "Cuaderno", product.Name)
	repo.AssertExpectations(t)
}

func TestProductService_Create_Validation(t *testing.T) {
	cases := map[string]func(*ProductInput){
		"negative price": func(in *ProductInput) { in.SalePrice = decimal.NewFromInt(-1) },
		"iva over 100":   func(in *ProductInput) { in.TaxRate = decimal.NewFromInt(101) },
		"negative stock": func(in *ProductInput) { in.Stock = decimal.NewFromInt(-3) },
		"negative min":   func(in *ProductInput) { in.MinStock = decimal.NewFromInt(-3) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, repo := newTestProductService(t, nil)
			in := validInput()
			mutate(&in)

			_, err := svc.Create(context.Background(), "800100200", in)

			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_Update_KeepsStock(t *testing.T) {
	svc, repo := newTestProductService(t, nil)
	existing := &catalog.Product{ID: 5, Stock: decimal.NewFromInt(7), Active: true}
	repo.On("FindByID", mock.Anything, int64(5)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	product, err := svc.Update(context.Background(), "800100200", 5, validInput())

	require.NoError(t, err)
	assert.Equal(t, "7", product.Stock.String())
	assert.Equal(t, "3500", product.SalePrice.String())
}

func TestProductService_Catalog(t *testing.T) {
	svc, repo := newTestProductService(t, nil)
	filter := shared.DefaultFilter()
	repo.On("ListStoreVisible", mock.Anything, filter).Return([]catalog.Product{{ID: 1, StoreVisible: true}}, int64(1), nil)

	items, total, err := svc.Catalog(context.Background(), "800100200", filter)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), total)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProductService_RequestImageUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("storage disabled", func(t *testing.T) {
		svc, _ := newTestProductService(t, nil)
		_, err := svc.RequestImageUpload(ctx, "800100200", 5, ImageUploadInput{ContentType: "image/png"})
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})

	t.Run("rejects svg", func(t *testing.T) {
		svc, repo := newTestProductService(t, &fakeStorage{})
		_, err := svc.RequestImageUpload(ctx, "800100200", 5, ImageUploadInput{ContentType: "image/svg+xml"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "SetImage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores key and removes previous image", func(t *testing.T) {
		storage := &fakeStorage{deleteErr: errors.New("access denied")}
		svc, repo := newTestProductService(t, storage)
		repo.On("FindByID", mock.Anything, int64(5)).Return(&catalog.Product{ID: 5, ImageURL: "productos/800100200/5/old.jpg"}, nil)
		repo.On("SetImage", mock.Anything, int64(5), "productos/800100200/5/4f1c.png").Return(nil)

		upload, err := svc.RequestImageUpload(ctx, "800100200", 5, ImageUploadInput{ContentType: "image/png"})

		require.NoError(t, err)
		assert.Equal(t, "productos/800100200/5/4f1c.png", upload.Key)
		assert.Contains(t, upload.UploadURL, upload.Key)
		assert.Equal(t, []string{"productos/800100200/5/old.jpg"}, storage.deleted)
		repo.AssertExpectations(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		storage := &fakeStorage{}
		svc, repo := newTestProductService(t, storage)
		repo.On("FindByID", mock.Anything, int64(9)).Return(nil, shared.ErrNotFound)

		_, err := svc.RequestImageUpload(ctx, "800100200", 9, ImageUploadInput{ContentType: "image/jpeg"})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, storage.uploads)
	})
}

func TestProductService_ImageURL(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestProductService(t, &fakeStorage{})
	repo.On("FindByID", mock.Anything, int64(5)).Return(&catalog.Product{ID: 5, ImageURL: "productos/800100200/5/a.webp"}, nil).Once()
	repo.On("FindByID", mock.Anything, int64(6)).Return(&catalog.Product{ID: 6}, nil).Once()

	download, err := svc.ImageURL(ctx, "800100200", 5)
	require.NoError(t, err)
	assert.Contains(t, download.URL, "productos/800100200/5/a.webp")

	_, err = svc.ImageURL(ctx, "800100200", 6)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
