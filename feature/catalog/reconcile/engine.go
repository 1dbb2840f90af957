package reconcile

import (
	"context"
	"time"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/remote"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the local catalog gateway the engine reconciles against.
// *store.Store implements it over the cycle transaction.
type Catalog interface {
	FindProduct(ctx context.Context, key string) (*models.Product, bool, error)
	FindOption(ctx context.Context, key string) (*models.ProductOptionValue, bool, error)
	UpdateProduct(ctx context.Context, key string, quantity int, price decimal.Decimal) error
	UpdateProductPrice(ctx context.Context, key string, price decimal.Decimal) error
	UpdateOptionQuantity(ctx context.Context, key string, quantity int) error
}

// Options controls engine pacing and dry-run behavior.
type Options struct {
	// ProductWriteCooldown is the pause after each applied product write.
	ProductWriteCooldown time.Duration
	// OptionWriteCooldown is the pause after each applied option write.
	// Option writes are cheaper, so this is usually the smaller of the two.
	OptionWriteCooldown time.Duration
	// DryRun logs decisions without applying any write.
	DryRun bool
}

// Engine decides, field by field, which local rows need a write to match
// the remote state. It never creates or deletes rows and writes each
// entity at most once per cycle.
type Engine struct {
	catalog Catalog
	log     *zap.Logger
	opts    Options
}

// New creates an engine over the given catalog gateway.
func New(catalog Catalog, log *zap.Logger, opts Options) *Engine {
	return &Engine{catalog: catalog, log: log, opts: opts}
}

// SyncProducts runs the product pass: for every remote product with a SKU
// and a matching local row, quantity and price are overwritten when either
// differs. Products are authoritative for quantity; price equality is
// numeric, so "12.50" and 12.5 never trigger a write.
func (e *Engine) SyncProducts(ctx context.Context, items []remote.Item, sum *Summary) error {
	for _, it := range items {
		if it.SKU == "" {
			sum.SkippedNoSKU++
			continue
		}
		sum.ProductsSeen++

		p, found, err := e.catalog.FindProduct(ctx, it.SKU)
		if err != nil {
			return err
		}
		if !found {
			// No local counterpart. Deliberately not an error: the local
			// catalog owns row creation.
			continue
		}

		price, ok := it.EffectivePrice()
		if !ok {
			sum.SkippedNoPrice++
			continue
		}

		if p.Quantity == it.Quantity && p.Price.Equal(price) {
			continue
		}

		e.log.Info("Updating product",
			zap.String("sku", it.SKU),
			zap.Int("quantity", it.Quantity),
			zap.String("price", price.String()),
		)
		if !e.opts.DryRun {
			if err := e.catalog.UpdateProduct(ctx, it.SKU, it.Quantity, price); err != nil {
				return err
			}
		}
		sum.ProductsUpdated++
		if err := e.pause(ctx, e.opts.ProductWriteCooldown); err != nil {
			return err
		}
	}
	return nil
}

// SyncOffers runs the offer pass. Each offer drives two independent
// sub-decisions: the parent product's price (at most one write per parent
// per cycle, tracked by seen) and the option row's quantity, matched by
// the offer's own SKU.
//
// seen is owned by the cycle; the caller creates it empty and discards it
// when the cycle ends.
func (e *Engine) SyncOffers(ctx context.Context, items []remote.Item, seen map[string]struct{}, sum *Summary) error {
	for _, it := range items {
		if it.SKU == "" {
			sum.SkippedNoSKU++
			continue
		}
		sum.OffersSeen++

		parent := it.ParentKey()
		if _, done := seen[parent]; !done {
			if err := e.syncParentPrice(ctx, it, parent, seen, sum); err != nil {
				return err
			}
		}

		o, found, err := e.catalog.FindOption(ctx, it.SKU)
		if err != nil {
			return err
		}
		if found && o.Quantity != it.Quantity {
			e.log.Info("Updating option quantity",
				zap.String("model", it.SKU),
				zap.Int("quantity", it.Quantity),
			)
			if !e.opts.DryRun {
				if err := e.catalog.UpdateOptionQuantity(ctx, it.SKU, it.Quantity); err != nil {
					return err
				}
			}
			sum.OptionQuantityWrites++
			if err := e.pause(ctx, e.opts.OptionWriteCooldown); err != nil {
				return err
			}
		}
	}
	return nil
}

// syncParentPrice writes the parent product's price when the offer price
// differs numerically from the stored one, and records the parent so later
// offers sharing it skip the price step this cycle.
func (e *Engine) syncParentPrice(ctx context.Context, it remote.Item, parent string, seen map[string]struct{}, sum *Summary) error {
	price, ok := it.EffectivePrice()
	if !ok {
		sum.SkippedNoPrice++
		return nil
	}

	p, found, err := e.catalog.FindProduct(ctx, parent)
	if err != nil {
		return err
	}
	if !found || p.Price.Equal(price) {
		return nil
	}

	e.log.Info("Updating product price from offer",
		zap.String("sku", it.SKU),
		zap.String("parent", parent),
		zap.String("price", price.String()),
	)
	if !e.opts.DryRun {
		if err := e.catalog.UpdateProductPrice(ctx, parent, price); err != nil {
			return err
		}
	}
	seen[parent] = struct{}{}
	sum.ProductPriceWrites++
	return e.pause(ctx, e.opts.ProductWriteCooldown)
}

// pause spaces out writes to keep load off the catalog database.
func (e *Engine) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
