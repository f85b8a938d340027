package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
	"github.com/vytalle/storefront/internal/core/resilience"
	"github.com/vytalle/storefront/pkg/logger"
)

var _ ports.ProductService = (*ProductAccess)(nil)

// CacheObserver is told about cache lookups, labelled by role.
type CacheObserver interface {
	Hit(role string)
	Miss(role string)
}

type nopCacheObserver struct{}

func (nopCacheObserver) Hit(string)  {}
func (nopCacheObserver) Miss(string) {}

type ProductOptions struct {
	CacheTTL time.Duration
	Now      func() time.Time
	Observer CacheObserver
}

// ProductAccess implements ports.ProductService. Every view is shaped from
// the role of the bound session at call time; without a session the caller
// is anonymous.
type ProductAccess struct {
	source   ports.ProductSource
	reader   ports.SessionReader
	engine   *resilience.Engine
	cache    *viewCache
	now      func() time.Time
	observer CacheObserver
	log      zerolog.Logger
}

func NewProductAccess(source ports.ProductSource, engine *resilience.Engine, log zerolog.Logger, opts ProductOptions) *ProductAccess {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultProductCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Observer == nil {
		opts.Observer = nopCacheObserver{}
	}
	return &ProductAccess{
		source:   source,
		engine:   engine,
		cache:    newViewCache(opts.CacheTTL),
		now:      opts.Now,
		observer: opts.Observer,
		log:      log,
	}
}

// ForSession returns a copy that resolves the caller through reader. The
// cache is shared with p.
func (p *ProductAccess) ForSession(reader ports.SessionReader) *ProductAccess {
	clone := *p
	clone.reader = reader
	return &clone
}

func (p *ProductAccess) viewer(ctx context.Context) viewKey {
	if p.reader == nil {
		return viewKey{role: domain.RoleAnonymous}
	}
	u := p.reader.CurrentUser(ctx)
	if u == nil {
		return viewKey{role: domain.RoleAnonymous}
	}
	return viewKey{role: u.Role, commission: u.Commission()}
}

func shape(p domain.Product, key viewKey) domain.ProductView {
	switch key.role {
	case domain.RoleAdmin:
		return p.AdminView()
	case domain.RoleVendor:
		return p.VendorView(key.commission)
	case domain.RoleAnonymous:
		return p.PublicView()
	}
	return p.PublicView()
}

func shapeAll(products []domain.Product, key viewKey) []domain.ProductView {
	out := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, shape(p, key))
	}
	return out
}

func (p *ProductAccess) load(ctx context.Context, key viewKey) ([]domain.ProductView, error) {
	start := p.now()
	products, err := p.source.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := shapeAll(products, key)
	logger.Performance(p.log, "products.list", p.now().Sub(start), map[string]any{
		"role":  key.role.String(),
		"count": len(views),
	})
	return views, nil
}

// Products returns every active product shaped for the caller.
func (p *ProductAccess) Products(ctx context.Context) ([]domain.ProductView, error) {
	key := p.viewer(ctx)
	ec := resilience.ErrorContext{Component: "products", Action: "list"}
	return resilience.HandleAPICall(ctx, p.engine, func(ctx context.Context) ([]domain.ProductView, error) {
		return p.load(ctx, key)
	}, nil, ec)
}

// ProductBySlug applies the same shaping as Products. It returns (nil, nil)
// when no active product has the slug.
func (p *ProductAccess) ProductBySlug(ctx context.Context, slug string) (domain.ProductView, error) {
	key := p.viewer(ctx)
	ec := resilience.ErrorContext{
		Component: "products",
		Action:    "by_slug",
		Metadata:  map[string]any{"slug": slug},
	}
	if err := p.engine.ValidateInput(slug, "min=1", ec); err != nil {
		return nil, err
	}

	product, err := resilience.WithRetry(ctx, p.engine, func(ctx context.Context) (*domain.Product, error) {
		return p.source.FindBySlug(ctx, slug)
	}, "products.by_slug:"+slug, ec)
	if errors.Is(err, domain.ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return shape(*product, key), nil
}

// ProductsCached serves Products from a per-view cache. Within the TTL the
// same slice is returned. When the source fails, a stale entry for the same
// view is served instead of the error. A load overtaken by ClearCache is
// returned to its caller but not cached.
func (p *ProductAccess) ProductsCached(ctx context.Context) ([]domain.ProductView, error) {
	key := p.viewer(ctx)
	role := key.role.String()

	hit := p.cache.get(key, p.now())
	if hit.found && hit.fresh {
		p.observer.Hit(role)
		return hit.entry.value, nil
	}
	p.observer.Miss(role)

	var fallback resilience.Fallback[[]domain.ProductView]
	if hit.found {
		stale := hit.entry.value
		fallback = func(context.Context, error) ([]domain.ProductView, error) {
			return stale, nil
		}
	}

	var loaded bool
	ec := resilience.ErrorContext{Component: "products", Action: "list_cached"}
	views, err := resilience.HandleAPICall(ctx, p.engine, func(ctx context.Context) ([]domain.ProductView, error) {
		v, err := p.load(ctx, key)
		loaded = err == nil
		return v, err
	}, fallback, ec)
	if err != nil {
		return nil, err
	}
	if loaded && !p.cache.put(key, views, p.now(), hit.gen) {
		p.log.Debug().Str("role", role).Msg("cache cleared during load; result not stored")
	}
	return views, nil
}

// ClearCache drops every cached view.
func (p *ProductAccess) ClearCache() {
	p.cache.clear()
	p.log.Info().Msg("product cache cleared")
}
