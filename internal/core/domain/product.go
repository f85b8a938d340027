package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product is the canonical catalog record. It carries both consumer prices
// and the internal *_original cost fields; view shaping decides which of
// them leave the core.
type Product struct {
	ID                string
	Name              string
	Slug              string
	Category          string
	Description       string
	Images            []string
	PricePix          decimal.Decimal
	PriceCard         decimal.Decimal
	PricePixOriginal  decimal.Decimal
	PriceCardOriginal decimal.Decimal
	CommissionPercent float64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CostBasis is the internal price vendor commissions are computed from.
func (p Product) CostBasis() decimal.Decimal {
	return p.PricePixOriginal
}

// ProductView is one of PublicProduct, VendorProduct or AdminProduct.
type ProductView interface {
	ProductSlug() string
	view()
}

// PublicProduct is what anonymous callers see.
type PublicProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	PricePix    decimal.Decimal `json:"price_pix"`
	Active      bool            `json:"active"`
}

func (p PublicProduct) ProductSlug() string { return p.Slug }
func (PublicProduct) view()                 {}

// VendorProduct adds the vendor's commission. YourCommission is a monetary
// amount, not a percentage.
type VendorProduct struct {
	PublicProduct
	CommissionPercent float64         `json:"commission_percent"`
	YourCommission    decimal.Decimal `json:"your_commission"`
}

func (VendorProduct) view() {}

// AdminProduct exposes every canonical field.
type AdminProduct struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Slug              string          `json:"slug"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	Images            []string        `json:"images"`
	PricePix          decimal.Decimal `json:"price_pix"`
	PriceCard         decimal.Decimal `json:"price_card"`
	PricePixOriginal  decimal.Decimal `json:"price_pix_original"`
	PriceCardOriginal decimal.Decimal `json:"price_card_original"`
	CommissionPercent float64         `json:"commission_percent"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p AdminProduct) ProductSlug() string { return p.Slug }
func (AdminProduct) view()                 {}

// PublicView strips every privileged field.
func (p Product) PublicView() PublicProduct {
	return PublicProduct{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category,
		Description: p.Description,
		Images:      append([]string(nil), p.Images...),
		PricePix:    p.PricePix,
		Active:      p.Active,
	}
}

// VendorView computes the vendor's commission as
// cost basis * commissionPercent / 100, rounded to cents.
func (p Product) VendorView(commissionPercent float64) VendorProduct {
	pct := decimal.NewFromFloat(commissionPercent)
	return VendorProduct{
		PublicProduct:     p.PublicView(),
		CommissionPercent: commissionPercent,
		YourCommission:    p.CostBasis().Mul(pct).Div(hundred).Round(2),
	}
}

func (p Product) AdminView() AdminProduct {
	return AdminProduct{
		ID:                p.ID,
		Name:              p.Name,
		Slug:              p.Slug,
		Category:          p.Category,
		Description:       p.Description,
		Images:            append([]string(nil), p.Images...),
		PricePix:          p.PricePix,
		PriceCard:         p.PriceCard,
		PricePixOriginal:  p.PricePixOriginal,
		PriceCardOriginal: p.PriceCardOriginal,
		CommissionPercent: p.CommissionPercent,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
