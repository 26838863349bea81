package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product は棚に並ぶ商品1件を表します
//
// IDは作成時に採番され、以後変更されません。UpdatedAtはすべての
// 更新操作で現在時刻に更新されます（常に CreatedAt <= UpdatedAt）。
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	ShelfLocation *string          `json:"shelf_location,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductCreate は商品作成リクエストを表します
// Nameのみ必須で、StockQuantityの省略時は0になります
type ProductCreate struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity int              `json:"stock_quantity"`
	ShelfLocation *string          `json:"shelf_location,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
}

// ProductUpdate は部分更新リクエストを表します
// nilのフィールドは変更されません
type ProductUpdate struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	ShelfLocation *string          `json:"shelf_location,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返します
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil &&
		u.Description == nil &&
		u.Category == nil &&
		u.Price == nil &&
		u.StockQuantity == nil &&
		u.ShelfLocation == nil &&
		u.Barcode == nil
}
