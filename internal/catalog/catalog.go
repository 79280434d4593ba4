package catalog

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/cartsync/internal/domain"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("catalog unavailable")
)

// StockService reports the current available quantity of a product
type StockService interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}

// ProductCatalog returns the full product record
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}
