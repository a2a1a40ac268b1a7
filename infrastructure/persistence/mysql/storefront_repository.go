package mysql

import (
	"context"

	"fulfillment/domain/shared"
	"fulfillment/domain/storefront"
	"fulfillment/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// StorefrontRepository reads the catalogue, cart, address and customer tables
// owned by neighbouring services.
type StorefrontRepository struct {
	db *gorm.DB
}

func NewStorefrontRepository(db *gorm.DB) *StorefrontRepository {
	return &StorefrontRepository{db: db}
}

// Carts returns the cart port.
func (r *StorefrontRepository) Carts() storefront.CartStore { return cartStore{r} }

// Addresses returns the address port.
func (r *StorefrontRepository) Addresses() storefront.AddressReader { return addressReader{r} }

func (r *StorefrontRepository) Products() storefront.ProductReader { return productReader{r} }

func (r *StorefrontRepository) Customers() storefront.CustomerReader { return customerReader{r} }

type cartStore struct{ r *StorefrontRepository }

func (c cartStore) FindByUserID(ctx context.Context, userID string) (*storefront.Cart, error) {
	var items []po.CartItemPO
	if err := getDB(ctx, c.r.db).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	cart := &storefront.Cart{UserID: userID, Items: make([]storefront.CartItem, 0, len(items))}
	for _, it := range items {
		cart.Items = append(cart.Items, storefront.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return cart, nil
}

func (c cartStore) Clear(ctx context.Context, userID string) error {
	return getDB(ctx, c.r.db).Where("user_id = ?", userID).Delete(&po.CartItemPO{}).Error
}

type addressReader struct{ r *StorefrontRepository }

func (a addressReader) FindByID(ctx context.Context, id string) (*storefront.Address, error) {
	var addr po.AddressPO
	if err := getDB(ctx, a.r.db).First(&addr, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, shared.NewNotFoundError("address")
		}
		return nil, err
	}
	return addr.ToDomain(), nil
}

type productReader struct{ r *StorefrontRepository }

func (p productReader) FindByIDs(ctx context.Context, ids []string) (map[string]*storefront.Product, error) {
	out := make(map[string]*storefront.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []po.ProductPO
	if err := getDB(ctx, p.r.db).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = products[i].ToDomain()
	}
	return out, nil
}

type customerReader struct{ r *StorefrontRepository }

func (c customerReader) FindByID(ctx context.Context, id string) (*storefront.Customer, error) {
	var cust po.CustomerPO
	if err := getDB(ctx, c.r.db).First(&cust, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, shared.NewNotFoundError("customer")
		}
		return nil, err
	}
	return cust.ToDomain(), nil
}
