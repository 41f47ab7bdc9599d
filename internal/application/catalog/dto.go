package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInput is the body of product create and update requests. Stock is
// only read on create; later changes go through invoices, purchases and
// inventory adjustments.
type ProductInput struct {
	Code          string          `json:"codigo" binding:"required,min=1,max=50"`
	Barcode       string          `json:"codigo_barras" binding:"max=50"`
	Name          string          `json:"nombre" binding:"required,min=1,max=200"`
	Description   string          `json:"descripcion" binding:"max=2000"`
	Category      string          `json:"categoria" binding:"max=100"`
	Unit          string          `json:"unidad" binding:"max=20"`
	PurchasePrice decimal.Decimal `json:"precio_compra"`
	SalePrice     decimal.Decimal `json:"precio_venta"`
	TaxRate       decimal.Decimal `json:"iva"`
	Stock         decimal.Decimal `json:"stock"`
	MinStock      decimal.Decimal `json:"stock_minimo"`
	StoreVisible  bool            `json:"visible_tienda"`
	Active        *bool           `json:"activo"`
}

// ImageUploadInput asks for a presigned image upload
type ImageUploadInput struct {
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUpload is returned by RequestImageUpload. The client PUTs the file to
// UploadURL with the same Content-Type before ExpiresAt.
type ImageUpload struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImageDownload is a presigned read URL for a product image
type ImageDownload struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
