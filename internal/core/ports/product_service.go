package ports

import (
	"context"

	"github.com/vytalle/storefront/internal/core/domain"
)

// ProductService serves role-shaped catalog views.
type ProductService interface {
	Products(ctx context.Context) ([]domain.ProductView, error)
	// ProductBySlug returns (nil, nil) when no active product matches.
	ProductBySlug(ctx context.Context, slug string) (domain.ProductView, error)
	ProductsCached(ctx context.Context) ([]domain.ProductView, error)
	ClearCache()
}
