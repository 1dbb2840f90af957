package models

import "github.com/shopspring/decimal"

// Product is a row of the oc_product table. Only the columns touched by
// reconciliation are mapped; the rest of the row is left alone.
type Product struct {
	ProductID uint            `gorm:"primaryKey;column:product_id"`
	Model     string          `gorm:"column:model"`
	Quantity  int             `gorm:"column:quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(15,4)"`
}

// TableName maps the model onto the OpenCart product table.
func (Product) TableName() string { return "oc_product" }

// ProductOptionValue is a row of the oc_product_option_value table.
// Option rows are matched by the model column, same as products.
type ProductOptionValue struct {
	ProductOptionValueID uint   `gorm:"primaryKey;column:product_option_value_id"`
	Model                string `gorm:"column:model"`
	Quantity             int    `gorm:"column:quantity"`
}

// TableName maps the model onto the OpenCart option value table.
func (ProductOptionValue) TableName() string { return "oc_product_option_value" }
