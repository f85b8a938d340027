package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vytalle/storefront/internal/core/domain"
)

// Catalog is an in-memory product source.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
}

func NewCatalog(products []domain.Product) *Catalog {
	return &Catalog{products: append([]domain.Product(nil), products...)}
}

// ListActive returns active products sorted by name.
func (c *Catalog) ListActive(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.Slug == slug && p.Active {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SeedProducts is the demo catalog.
func SeedProducts() []domain.Product {
	at := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Product{
		{
			ID: "prd-001", Name: "Toxina Botulínica Tipo A 100U", Slug: "toxina-botulinica-tipo-a-100u",
			Category:    "Toxinas Botulínicas",
			Description: "Frasco-ampola com 100 unidades para uso estético.",
			Images:      []string{"/images/products/toxina-100u.png"},
			PricePix:    price("890.00"), PriceCard: price("935.00"),
			PricePixOriginal: price("620.00"), PriceCardOriginal: price("650.00"),
			CommissionPercent: 5, Active: true, CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "prd-002", Name: "Ácido Hialurônico 1ml Lips", Slug: "acido-hialuronico-1ml-lips",
			Category:    "Preenchedores",
			Description: "Preenchedor reticulado indicado para volumização labial.",
			Images:      []string{"/images/products/ah-lips.png", "/images/products/ah-lips-box.png"},
			PricePix:    price("420.00"), PriceCard: price("445.00"),
			PricePixOriginal: price("290.00"), PriceCardOriginal: price("305.00"),
			CommissionPercent: 5, Active: true, CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "prd-003", Name: "Bioestimulador de Colágeno 150mg", Slug: "bioestimulador-colageno-150mg",
			Category:    "Bioestimuladores",
			Description: "Bioestimulador à base de ácido poli-L-láctico.",
			Images:      []string{"/images/products/bioestimulador.png"},
			PricePix:    price("1290.00"), PriceCard: price("1360.00"),
			PricePixOriginal: price("910.00"), PriceCardOriginal: price("955.00"),
			CommissionPercent: 5, Active: true, CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "prd-004", Name: "Fio de PDO Espiculado", Slug: "fio-pdo-espiculado",
			Category:    "Fios de Sustentação",
			Description: "Fio absorvível de polidioxanona para lifting.",
			Images:      []string{"/images/products/fio-pdo.png"},
			PricePix:    price("310.00"), PriceCard: price("330.00"),
			PricePixOriginal: price("205.00"), PriceCardOriginal: price("215.00"),
			CommissionPercent: 5, Active: false, CreatedAt: at, UpdatedAt: at,
		},
	}
}
