package po

import (
	"time"

	"fulfillment/domain/storefront"

	"github.com/shopspring/decimal"
)

// Storefront tables are owned by the catalogue, cart and account services.
// They are mapped here for reads, cart clearing and stock movements only.

type ProductPO struct {
	ID              string              `gorm:"primaryKey;size:64"`
	Name            string              `gorm:"size:255;not null"`
	SKU             string              `gorm:"column:sku;size:64"`
	Price           decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	DiscountedPrice decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Stock           int                 `gorm:"not null;default:0"`
	Active          bool                `gorm:"not null;default:true"`
	WeightKg        decimal.NullDecimal `gorm:"type:decimal(8,3)"`
	UpdatedAt       time.Time
}

func (ProductPO) TableName() string {
	return "products"
}

func (p *ProductPO) ToDomain() *storefront.Product {
	return &storefront.Product{
		ID:              p.ID,
		Name:            p.Name,
		SKU:             p.SKU,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Stock:           p.Stock,
		Active:          p.Active,
		WeightKg:        p.WeightKg,
	}
}

type CartItemPO struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;not null"`
	Quantity  int    `gorm:"not null"`
}

func (CartItemPO) TableName() string {
	return "cart_items"
}

type AddressPO struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     string `gorm:"size:64;index;not null"`
	Name       string `gorm:"size:128"`
	Phone      string `gorm:"size:32"`
	Line1      string `gorm:"size:255;not null"`
	Line2      string `gorm:"size:255"`
	City       string `gorm:"size:128;not null"`
	State      string `gorm:"size:128"`
	PostalCode string `gorm:"size:16;not null"`
	Country    string `gorm:"size:64"`
}

func (AddressPO) TableName() string {
	return "addresses"
}

func (p *AddressPO) ToDomain() *storefront.Address {
	return &storefront.Address{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Phone:      p.Phone,
		Line1:      p.Line1,
		Line2:      p.Line2,
		City:       p.City,
		State:      p.State,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

type CustomerPO struct {
	ID    string `gorm:"primaryKey;size:64"`
	Name  string `gorm:"size:128"`
	Email string `gorm:"size:255"`
	Phone string `gorm:"size:32"`
}

func (CustomerPO) TableName() string {
	return "users"
}

func (p *CustomerPO) ToDomain() *storefront.Customer {
	return &storefront.Customer{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}
