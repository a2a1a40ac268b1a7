// Package storefront holds the read models of collaborators owned by other
// services: catalogue, carts, saved addresses and customers. Only what
// fulfillment needs at the boundary is modelled.
package storefront

import (
	"context"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              string
	Name            string
	SKU             string
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	Stock           int
	Active          bool
	WeightKg        decimal.NullDecimal
}

// UnitPrice is the discounted price when one is set.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountedPrice.Valid && p.DiscountedPrice.Decimal.IsPositive() {
		return p.DiscountedPrice.Decimal
	}
	return p.Price
}

// UnitWeight falls back to fallback for products without weight data.
func (p Product) UnitWeight(fallback decimal.Decimal) decimal.Decimal {
	if p.WeightKg.Valid && p.WeightKg.Decimal.IsPositive() {
		return p.WeightKg.Decimal
	}
	return fallback
}

type CartItem struct {
	ProductID string
	Quantity  int
}

type Cart struct {
	UserID string
	Items  []CartItem
}

type Address struct {
	ID         string
	UserID     string
	Name       string
	Phone      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

type CartStore interface {
	// FindByUserID returns an empty cart when the user has none.
	FindByUserID(ctx context.Context, userID string) (*Cart, error)
	Clear(ctx context.Context, userID string) error
}

type AddressReader interface {
	FindByID(ctx context.Context, id string) (*Address, error)
}

type ProductReader interface {
	// FindByIDs returns the products found, keyed by id.
	FindByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
}
