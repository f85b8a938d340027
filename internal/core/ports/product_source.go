package ports

import (
	"context"

	"github.com/vytalle/storefront/internal/core/domain"
)

// ProductSource supplies canonical product records with all privileged fields
// present. Redaction is the access layer's job, not the source's.
type ProductSource interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	// FindBySlug returns domain.ErrProductNotFound when no active product
	// matches.
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
}
