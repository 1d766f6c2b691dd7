package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product is what the storefront hands to the cart on "add to cart".
type Product struct {
	ProductID    string          `json:"productID"`
	Name         string          `json:"name"`
	ImageURL     string          `json:"imageUrl"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Discount     decimal.Decimal `json:"discount"`
	Stock        int             `json:"stock"`
}

// DiscountedPrice is SellingPrice * (1 - Discount/100), unrounded.
func (p Product) DiscountedPrice() decimal.Decimal {
	return p.SellingPrice.Mul(decimal.NewFromInt(1).Sub(p.Discount.Div(hundred)))
}

type CartItem struct {
	ProductID       string          `json:"productID"`
	Name            string          `json:"name"`
	ImageURL        string          `json:"imageUrl"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Quantity        int             `json:"quantity"`
	Stock           int             `json:"stock"`
}

// LineTotal is DiscountedPrice * Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.DiscountedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartSnapshot is the cached form of a session cart.
type CartSnapshot struct {
	UserID     string          `json:"user_id"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
