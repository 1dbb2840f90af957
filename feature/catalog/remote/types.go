package remote

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Collection identifies a logical class of remote records.
type Collection string

const (
	// CollectionProducts is the remote products collection.
	CollectionProducts Collection = "products"
	// CollectionOffers is the remote offers collection.
	CollectionOffers Collection = "offers"
)

// Item is a single record returned by the remote catalog API.
// Prices arrive either as JSON numbers or as strings; decimal handles both.
type Item struct {
	// SKU is the shared identifier used to match local rows. Records
	// without one are skipped by the engine, never treated as errors.
	SKU string `json:"sku"`
	// Quantity is the remote stock level.
	Quantity int `json:"quantity"`
	// Price is the primary price field. Nil when absent.
	Price *decimal.Decimal `json:"price"`
	// MaxPrice is the secondary price field, used as a fallback.
	MaxPrice *decimal.Decimal `json:"max_price"`
}

// EffectivePrice resolves the price used for comparison: the primary price
// field, falling back to max_price when the primary is absent. The second
// return value is false when neither field is present.
func (i Item) EffectivePrice() (decimal.Decimal, bool) {
	if i.Price != nil {
		return *i.Price, true
	}
	if i.MaxPrice != nil {
		return *i.MaxPrice, true
	}
	return decimal.Decimal{}, false
}

// ParentKey derives the product identifier an offer belongs to: the
// substring of the SKU before the first hyphen. A SKU without a hyphen
// is its own parent key.
func (i Item) ParentKey() string {
	if idx := strings.Index(i.SKU, "-"); idx >= 0 {
		return i.SKU[:idx]
	}
	return i.SKU
}

// envelope mirrors one paginated response: records under "data" and a
// marker that is non-empty exactly when more pages exist.
type envelope struct {
	Data        []Item `json:"data"`
	NextPageURL string `json:"next_page_url"`
}
