package reconcile

import "time"

// Summary provides aggregate counts for one reconciliation cycle. It is
// what the scheduler logs on completion and the status server reports.
type Summary struct {
	// CycleID correlates the summary with the cycle's log lines.
	CycleID string `json:"cycle_id"`

	// StartedAt is when the cycle began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall time of the cycle.
	Duration time.Duration `json:"duration_ns"`

	// ProductsSeen counts remote products with a SKU.
	ProductsSeen int `json:"products_seen"`

	// ProductsUpdated counts product rows rewritten by the product pass.
	ProductsUpdated int `json:"products_updated"`

	// OffersSeen counts remote offers with a SKU.
	OffersSeen int `json:"offers_seen"`

	// ProductPriceWrites counts parent price writes applied by the offer pass.
	ProductPriceWrites int `json:"product_price_writes"`

	// OptionQuantityWrites counts option quantity writes applied by the offer pass.
	OptionQuantityWrites int `json:"option_quantity_writes"`

	// SkippedNoSKU counts remote records dropped for lacking an identifier.
	SkippedNoSKU int `json:"skipped_no_sku"`

	// SkippedNoPrice counts records with neither a price nor a fallback.
	SkippedNoPrice int `json:"skipped_no_price"`

	// ProductsUnavailable is true when the products fetch failed and the
	// product pass was skipped this cycle.
	ProductsUnavailable bool `json:"products_unavailable"`

	// OffersUnavailable is true when the offers fetch failed and the offer
	// pass was skipped this cycle.
	OffersUnavailable bool `json:"offers_unavailable"`
}

// Writes is the total number of writes applied during the cycle.
func (s *Summary) Writes() int {
	return s.ProductsUpdated + s.ProductPriceWrites + s.OptionQuantityWrites
}
