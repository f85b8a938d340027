package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vytalle/storefront/internal/core/domain"
)

const collectionProducts = "products"

// ProductRepository implements ports.ProductSource over the products
// collection. Prices are stored as Decimal128.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID                string               `bson:"_id"`
	Name              string               `bson:"name"`
	Slug              string               `bson:"slug"`
	Category          string               `bson:"category"`
	Description       string               `bson:"description"`
	Images            []string             `bson:"images"`
	PricePix          primitive.Decimal128 `bson:"price_pix"`
	PriceCard         primitive.Decimal128 `bson:"price_card"`
	PricePixOriginal  primitive.Decimal128 `bson:"price_pix_original"`
	PriceCardOriginal primitive.Decimal128 `bson:"price_card_original"`
	CommissionPercent float64              `bson:"commission_percent"`
	Active            bool                 `bson:"active"`
	CreatedAt         time.Time            `bson:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

func toDecimal(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

func (d productDoc) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:                d.ID,
		Name:              d.Name,
		Slug:              d.Slug,
		Category:          d.Category,
		Description:       d.Description,
		Images:            d.Images,
		CommissionPercent: d.CommissionPercent,
		Active:            d.Active,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src primitive.Decimal128
	}{
		{&p.PricePix, d.PricePix},
		{&p.PriceCard, d.PriceCard},
		{&p.PricePixOriginal, d.PricePixOriginal},
		{&p.PriceCardOriginal, d.PriceCardOriginal},
	} {
		if *f.dst, err = toDecimal(f.src); err != nil {
			return domain.Product{}, fmt.Errorf("product %s: decode price: %w", d.ID, err)
		}
	}
	return p, nil
}

func newProductDoc(p domain.Product) (productDoc, error) {
	d := productDoc{
		ID:                p.ID,
		Name:              p.Name,
		Slug:              p.Slug,
		Category:          p.Category,
		Description:       p.Description,
		Images:            p.Images,
		CommissionPercent: p.CommissionPercent,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt.UTC(),
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
	var err error
	for _, f := range []struct {
		dst *primitive.Decimal128
		src decimal.Decimal
	}{
		{&d.PricePix, p.PricePix},
		{&d.PriceCard, p.PriceCard},
		{&d.PricePixOriginal, p.PricePixOriginal},
		{&d.PriceCardOriginal, p.PriceCardOriginal},
	} {
		if *f.dst, err = toDecimal128(f.src); err != nil {
			return productDoc{}, fmt.Errorf("product %s: encode price: %w", p.ID, err)
		}
	}
	return d, nil
}

// ListActive returns active products sorted by name.
func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d productDoc
	err := r.col.FindOne(ctx, bson.M{"slug": slug, "active": true}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	p, err := d.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert writes p keyed by its id. Used to seed an empty catalog.
func (r *ProductRepository) Upsert(ctx context.Context, p domain.Product) error {
	d, err := newProductDoc(p)
	if err != nil {
		return err
	}
	_, err = r.col.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// EnsureIndexes creates the slug and listing indexes.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
