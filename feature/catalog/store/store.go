package store

import (
	"context"
	"errors"

	"catalog-sync/feature/catalog/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store provides point lookups and writes against the local catalog.
// All methods run on the *gorm.DB handle given at construction; the
// scheduler binds it to a single transaction for the lifetime of one
// reconciliation cycle, so either every write of a cycle persists or none.
type Store struct {
	db *gorm.DB
}

// New creates a store over the given handle, usually an open transaction.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindProduct looks up a product row by its model key. A missing row is
// reported via the found flag, not an error. Should duplicate keys exist,
// the row with the lowest primary key wins.
func (s *Store) FindProduct(ctx context.Context, key string) (*models.Product, bool, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("model = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// FindOption looks up an option value row by its model key.
func (s *Store) FindOption(ctx context.Context, key string) (*models.ProductOptionValue, bool, error) {
	var o models.ProductOptionValue
	err := s.db.WithContext(ctx).Where("model = ?", key).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &o, true, nil
}

// UpdateProduct overwrites quantity and price of every product row
// matching the key.
func (s *Store) UpdateProduct(ctx context.Context, key string, quantity int, price decimal.Decimal) error {
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("model = ?", key).
		Updates(map[string]any{"quantity": quantity, "price": price}).Error
}

// UpdateProductPrice overwrites only the price of a product row. Offers
// are authoritative for the parent product's price but not its quantity,
// which lives in the option table.
func (s *Store) UpdateProductPrice(ctx context.Context, key string, price decimal.Decimal) error {
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("model = ?", key).
		Update("price", price).Error
}

// UpdateOptionQuantity overwrites the quantity of an option value row.
func (s *Store) UpdateOptionQuantity(ctx context.Context, key string, quantity int) error {
	return s.db.WithContext(ctx).
		Model(&models.ProductOptionValue{}).
		Where("model = ?", key).
		Update("quantity", quantity).Error
}
