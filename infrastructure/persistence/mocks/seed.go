package mocks

import (
	"fulfillment/domain/storefront"

	"github.com/shopspring/decimal"
)

// SeedDemoData loads a small catalogue and one customer with a cart, enough
// to walk through checkout against the sandbox adapters.
func SeedDemoData(s *Store) {
	s.PutProduct(storefront.Product{
		ID:              "prod-1",
		Name:            "Ceramic Mug",
		SKU:             "MUG-001",
		Price:           decimal.NewFromInt(500),
		DiscountedPrice: decimal.NewNullDecimal(decimal.NewFromInt(450)),
		Stock:           100,
		Active:          true,
		WeightKg:        decimal.NewNullDecimal(decimal.RequireFromString("0.4")),
	})
	s.PutProduct(storefront.Product{
		ID:     "prod-2",
		Name:   "Linen Tote Bag",
		SKU:    "TOTE-001",
		Price:  decimal.NewFromInt(900),
		Stock:  50,
		Active: true,
	})
	s.PutProduct(storefront.Product{
		ID:     "prod-3",
		Name:   "Discontinued Poster",
		SKU:    "POSTER-001",
		Price:  decimal.NewFromInt(200),
		Stock:  10,
		Active: false,
	})

	s.PutCustomer(storefront.Customer{
		ID:    "user-1",
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Phone: "9000000001",
	})
	s.PutAddress(storefront.Address{
		ID:         "addr-1",
		UserID:     "user-1",
		Name:       "Asha Rao",
		Phone:      "9000000001",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "India",
	})
	s.PutCart("user-1",
		storefront.CartItem{ProductID: "prod-1", Quantity: 2},
		storefront.CartItem{ProductID: "prod-2", Quantity: 1},
	)
}
