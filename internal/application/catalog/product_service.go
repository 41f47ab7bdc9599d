// Package catalog manages tenant products and their images.
package catalog

import (
	"context"
	"fmt"
	"time"

	apptenant "github.com/erp/pymes/internal/application/tenant"
	"github.com/erp/pymes/internal/domain/catalog"
	"github.com/erp/pymes/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxTaxRate = decimal.NewFromInt(100)

// allowedImageTypes maps accepted upload content types to object extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Errors raised by the product service
var (
	ErrStorageDisabled    = shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	ErrInvalidContentType = shared.ErrInvalidInput.WithMessage("Content type must be image/jpeg, image/png or image/webp")
	ErrNoImage            = shared.ErrNotFound.WithMessage("Product has no image")
)

// ImageStorage presigns product image transfers
type ImageStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignDownload(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// ProductService handles product operations
type ProductService struct {
	executor apptenant.Executor
	storage  ImageStorage
	logger   *zap.Logger
	newID    func() string
}

// NewProductService creates a new ProductService. A nil storage disables
// the image endpoints.
func NewProductService(executor apptenant.Executor, storage ImageStorage, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		executor: executor,
		storage:  storage,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// List returns one page of products
func (s *ProductService) List(ctx context.Context, nit string, filter shared.Filter) ([]catalog.Product, int64, error) {
	var (
		items []catalog.Product
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Products().List(ctx, filter)
		return err
	})
	return items, total, err
}

// Catalog returns the active products published to the online store
func (s *ProductService) Catalog(ctx context.Context, nit string, filter shared.Filter) ([]catalog.Product, int64, error) {
	var (
		items []catalog.Product
		total int64
	)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		items, total, err = sess.Products().ListStoreVisible(ctx, filter)
		return err
	})
	return items, total, err
}

// Get returns one product
func (s *ProductService) Get(ctx context.Context, nit string, id int64) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		product, err = sess.Products().FindByID(ctx, id)
		return err
	})
	return product, err
}

// Create inserts a product with its opening stock
func (s *ProductService) Create(ctx context.Context, nit string, input ProductInput) (*catalog.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	if input.Stock.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Stock must not be negative")
	}

	product := &catalog.Product{Active: true, Stock: input.Stock}
	applyProduct(product, input)
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Update overwrites the descriptive fields and prices of a product
func (s *ProductService) Update(ctx context.Context, nit string, id int64, input ProductInput) (*catalog.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	var product *catalog.Product
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		var err error
		if product, err = sess.Products().FindByID(ctx, id); err != nil {
			return err
		}
		applyProduct(product, input)
		return sess.Products().Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product. Products referenced by invoices or purchases
// fail with a constraint violation.
func (s *ProductService) Delete(ctx context.Context, nit string, id int64) error {
	return s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		return sess.Products().Delete(ctx, id)
	})
}

// RequestImageUpload presigns an upload for a new product image and stores
// its object key on the product. A previous image object is removed.
func (s *ProductService) RequestImageUpload(ctx context.Context, nit string, id int64, input ImageUploadInput) (*ImageUpload, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	ext, ok := allowedImageTypes[input.ContentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	key := fmt.Sprintf("productos/%s/%d/%s.%s", nit, id, s.newID(), ext)
	var previous string
	err := s.executor.Run(ctx, nit, func(ctx context.Context, sess apptenant.Session) error {
		product, err := sess.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = product.ImageURL
		return sess.Products().SetImage(ctx, id, key)
	})
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.PresignUpload(ctx, key, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous product image",
				zap.String("tenant", nit),
				zap.Int64("product_id", id),
				zap.String("key", previous),
				zap.Error(err),
			)
		}
	}
	return &ImageUpload{UploadURL: url, Key: key, ExpiresAt: expiresAt}, nil
}

// ImageURL presigns a download of the product image
func (s *ProductService) ImageURL(ctx context.Context, nit string, id int64) (*ImageDownload, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	product, err := s.Get(ctx, nit, id)
	if err != nil {
		return nil, err
	}
	if product.ImageURL == "" {
		return nil, ErrNoImage
	}
	url, expiresAt, err := s.storage.PresignDownload(ctx, product.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &ImageDownload{URL: url, ExpiresAt: expiresAt}, nil
}

func validateProduct(in ProductInput) error {
	switch {
	case in.PurchasePrice.IsNegative(), in.SalePrice.IsNegative():
		return shared.ErrInvalidInput.WithMessage("Prices must not be negative")
	case in.TaxRate.IsNegative(), in.TaxRate.GreaterThan(maxTaxRate):
		return shared.ErrInvalidInput.WithMessage("IVA must be between 0 and 100")
	case in.MinStock.IsNegative():
		return shared.ErrInvalidInput.WithMessage("Minimum stock must not be negative")
	}
	return nil
}

func applyProduct(p *catalog.Product, in ProductInput) {
	p.Code = in.Code
	p.Barcode = in.Barcode
	p.Name = in.Name
	p.Description = in.Description
	p.Category = in.Category
	p.Unit = in.Unit
	p.PurchasePrice = in.PurchasePrice
	p.SalePrice = in.SalePrice
	p.TaxRate = in.TaxRate
	p.MinStock = in.MinStock
	p.StoreVisible = in.StoreVisible
	if p.Unit == "" {
		p.Unit = "UND"
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}
