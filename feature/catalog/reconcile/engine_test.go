package reconcile

import (
	"context"
	"fmt"
	"testing"

	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/remote"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCatalog is an in-memory Catalog. Writes mutate its state so repeated
// passes observe their own effects, which is what the idempotence tests rely
// on. Keys are unique by construction; uniqueness is asserted on insert.
type fakeCatalog struct {
	products map[string]*models.Product
	options  map[string]*models.ProductOptionValue

	productWrites []string
	priceWrites   []string
	optionWrites  []string

	failFind   error
	failUpdate error
}

func newFakeCatalog(t *testing.T, products []*models.Product, options []*models.ProductOptionValue) *fakeCatalog {
	t.Helper()
	f := &fakeCatalog{
		products: map[string]*models.Product{},
		options:  map[string]*models.ProductOptionValue{},
	}
	for _, p := range products {
		require.NotContains(t, f.products, p.Model, "duplicate product key in fixture")
		f.products[p.Model] = p
	}
	for _, o := range options {
		require.NotContains(t, f.options, o.Model, "duplicate option key in fixture")
		f.options[o.Model] = o
	}
	return f
}

func (f *fakeCatalog) FindProduct(_ context.Context, key string) (*models.Product, bool, error) {
	if f.failFind != nil {
		return nil, false, f.failFind
	}
	p, ok := f.products[key]
	return p, ok, nil
}

func (f *fakeCatalog) FindOption(_ context.Context, key string) (*models.ProductOptionValue, bool, error) {
	if f.failFind != nil {
		return nil, false, f.failFind
	}
	o, ok := f.options[key]
	return o, ok, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, key string, quantity int, price decimal.Decimal) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.productWrites = append(f.productWrites, key)
	f.products[key].Quantity = quantity
	f.products[key].Price = price
	return nil
}

func (f *fakeCatalog) UpdateProductPrice(_ context.Context, key string, price decimal.Decimal) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.priceWrites = append(f.priceWrites, key)
	f.products[key].Price = price
	return nil
}

func (f *fakeCatalog) UpdateOptionQuantity(_ context.Context, key string, quantity int) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.optionWrites = append(f.optionWrites, key)
	f.options[key].Quantity = quantity
	return nil
}

func newEngine(c Catalog) *Engine {
	return New(c, zap.NewNop(), Options{}) // zero cooldowns in tests
}

func price(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func product(key string, qty int, p string) *models.Product {
	return &models.Product{Model: key, Quantity: qty, Price: decimal.RequireFromString(p)}
}

func TestSyncProducts_QuantityDiffers(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "10.00")}, nil)
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 8, Price: price(t, "10.00")},
	}, &sum)

	require.NoError(t, err)
	assert.Equal(t, []string{"SKU1"}, cat.productWrites)
	assert.Equal(t, 8, cat.products["SKU1"].Quantity)
	assert.True(t, cat.products["SKU1"].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, sum.ProductsUpdated)
}

func TestSyncProducts_IdenticalRecordNoWrite(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "10.00")}, nil)
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 5, Price: price(t, "10.00")},
	}, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.productWrites)
	assert.Equal(t, 0, sum.ProductsUpdated)
}

// "12.50" and 12.5 are the same price; formatting differences must not
// trigger writes.
func TestSyncProducts_NumericTolerance(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "12.5")}, nil)
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 5, Price: price(t, "12.50")},
	}, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.productWrites)
}

func TestSyncProducts_FallbackPrice(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "5.00")}, nil)
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 5, MaxPrice: price(t, "9.99")},
	}, &sum)

	require.NoError(t, err)
	require.Equal(t, []string{"SKU1"}, cat.productWrites)
	assert.True(t, cat.products["SKU1"].Price.Equal(decimal.RequireFromString("9.99")))
}

func TestSyncProducts_Skips(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "10.00")}, nil)
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "", Quantity: 1, Price: price(t, "1.00")},     // no identifier
		{SKU: "GHOST", Quantity: 1, Price: price(t, "1.00")}, // no local row
		{SKU: "SKU1", Quantity: 9},                           // no price, no fallback
	}, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.productWrites)
	assert.Equal(t, 1, sum.SkippedNoSKU)
	assert.Equal(t, 1, sum.SkippedNoPrice)
	assert.Equal(t, 2, sum.ProductsSeen)
}

func TestSyncProducts_FindError(t *testing.T) {
	cat := newFakeCatalog(t, nil, nil)
	cat.failFind = fmt.Errorf("deadlock")
	eng := newEngine(cat)

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 1, Price: price(t, "1.00")},
	}, &sum)
	assert.ErrorContains(t, err, "deadlock")
}

// Two offers sharing a parent must produce at most one price write per cycle.
func TestSyncOffers_ParentPriceWrittenOnce(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("P1", 5, "10.00")}, nil)
	eng := newEngine(cat)

	seen := make(map[string]struct{})
	var sum Summary
	err := eng.SyncOffers(context.Background(), []remote.Item{
		{SKU: "P1-A", Quantity: 2, Price: price(t, "12.00")},
		{SKU: "P1-B", Quantity: 3, Price: price(t, "12.00")},
	}, seen, &sum)

	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, cat.priceWrites)
	assert.Contains(t, seen, "P1")
	assert.Equal(t, 1, sum.ProductPriceWrites)
}

// A parent already written this cycle skips the price step, but the option
// quantity step still runs; the two sub-decisions are independent.
func TestSyncOffers_SeenParentStillUpdatesOption(t *testing.T) {
	cat := newFakeCatalog(t,
		[]*models.Product{product("P1", 5, "10.00")},
		[]*models.ProductOptionValue{{Model: "P1-A", Quantity: 1}},
	)
	eng := newEngine(cat)

	seen := map[string]struct{}{"P1": {}}
	var sum Summary
	err := eng.SyncOffers(context.Background(), []remote.Item{
		{SKU: "P1-A", Quantity: 7, Price: price(t, "99.00")},
	}, seen, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.priceWrites)
	assert.Equal(t, []string{"P1-A"}, cat.optionWrites)
	assert.Equal(t, 7, cat.options["P1-A"].Quantity)
}

func TestSyncOffers_EqualPriceDoesNotMarkParent(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("P1", 5, "12.00")}, nil)
	eng := newEngine(cat)

	seen := make(map[string]struct{})
	var sum Summary
	err := eng.SyncOffers(context.Background(), []remote.Item{
		{SKU: "P1-A", Quantity: 2, Price: price(t, "12.00")},
	}, seen, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.priceWrites)
	assert.NotContains(t, seen, "P1")
}

func TestSyncOffers_NoHyphenSKUIsOwnParent(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("XYZ", 5, "10.00")}, nil)
	eng := newEngine(cat)

	seen := make(map[string]struct{})
	var sum Summary
	err := eng.SyncOffers(context.Background(), []remote.Item{
		{SKU: "XYZ", Quantity: 2, Price: price(t, "11.00")},
	}, seen, &sum)

	require.NoError(t, err)
	assert.Equal(t, []string{"XYZ"}, cat.priceWrites)
}

func TestSyncOffers_MissingCounterpartsSkipped(t *testing.T) {
	cat := newFakeCatalog(t, nil, nil)
	eng := newEngine(cat)

	seen := make(map[string]struct{})
	var sum Summary
	err := eng.SyncOffers(context.Background(), []remote.Item{
		{SKU: "P1-A", Quantity: 2, Price: price(t, "12.00")},
		{SKU: "", Quantity: 2, Price: price(t, "12.00")},
	}, seen, &sum)

	require.NoError(t, err)
	assert.Empty(t, cat.priceWrites)
	assert.Empty(t, cat.optionWrites)
	assert.Equal(t, 1, sum.SkippedNoSKU)
}

// Running both passes twice against unchanged remote data must apply zero
// writes the second time.
func TestIdempotence(t *testing.T) {
	cat := newFakeCatalog(t,
		[]*models.Product{product("SKU1", 5, "10.00"), product("P1", 1, "8.00")},
		[]*models.ProductOptionValue{{Model: "P1-A", Quantity: 1}},
	)
	eng := newEngine(cat)

	products := []remote.Item{{SKU: "SKU1", Quantity: 8, Price: price(t, "10.00")}}
	offers := []remote.Item{{SKU: "P1-A", Quantity: 4, Price: price(t, "9.50")}}

	var first Summary
	require.NoError(t, eng.SyncProducts(context.Background(), products, &first))
	require.NoError(t, eng.SyncOffers(context.Background(), offers, map[string]struct{}{}, &first))
	assert.Equal(t, 3, first.Writes())

	var second Summary
	require.NoError(t, eng.SyncProducts(context.Background(), products, &second))
	require.NoError(t, eng.SyncOffers(context.Background(), offers, map[string]struct{}{}, &second))
	assert.Equal(t, 0, second.Writes())
}

func TestDryRunCountsWithoutWriting(t *testing.T) {
	cat := newFakeCatalog(t, []*models.Product{product("SKU1", 5, "10.00")}, nil)
	eng := New(cat, zap.NewNop(), Options{DryRun: true})

	var sum Summary
	err := eng.SyncProducts(context.Background(), []remote.Item{
		{SKU: "SKU1", Quantity: 8, Price: price(t, "10.00")},
	}, &sum)

	require.NoError(t, err)
	assert.Equal(t, 1, sum.ProductsUpdated)
	assert.Empty(t, cat.productWrites)
	assert.Equal(t, 5, cat.products["SKU1"].Quantity)
}
