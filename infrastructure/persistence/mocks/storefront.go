package mocks

import (
	"context"

	"fulfillment/domain/shared"
	"fulfillment/domain/storefront"
)

type CartStore struct{ store *Store }

func NewCartStore(store *Store) *CartStore { return &CartStore{store: store} }

func (c *CartStore) FindByUserID(ctx context.Context, userID string) (*storefront.Cart, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	items := append([]storefront.CartItem(nil), c.store.carts[userID]...)
	return &storefront.Cart{UserID: userID, Items: items}, nil
}

func (c *CartStore) Clear(ctx context.Context, userID string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	delete(c.store.carts, userID)
	return nil
}

type AddressReader struct{ store *Store }

func NewAddressReader(store *Store) *AddressReader { return &AddressReader{store: store} }

func (a *AddressReader) FindByID(ctx context.Context, id string) (*storefront.Address, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	addr, ok := a.store.addresses[id]
	if !ok {
		return nil, shared.NewNotFoundError("address")
	}
	return &addr, nil
}

type ProductReader struct{ store *Store }

func NewProductReader(store *Store) *ProductReader { return &ProductReader{store: store} }

func (p *ProductReader) FindByIDs(ctx context.Context, ids []string) (map[string]*storefront.Product, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	found := make(map[string]*storefront.Product, len(ids))
	for _, id := range ids {
		if prod, ok := p.store.products[id]; ok {
			found[id] = &prod
		}
	}
	return found, nil
}

type CustomerReader struct{ store *Store }

func NewCustomerReader(store *Store) *CustomerReader { return &CustomerReader{store: store} }

func (c *CustomerReader) FindByID(ctx context.Context, id string) (*storefront.Customer, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	cust, ok := c.store.customers[id]
	if !ok {
		return nil, shared.NewNotFoundError("customer")
	}
	return &cust, nil
}

var (
	_ storefront.CartStore      = (*CartStore)(nil)
	_ storefront.AddressReader  = (*AddressReader)(nil)
	_ storefront.ProductReader  = (*ProductReader)(nil)
	_ storefront.CustomerReader = (*CustomerReader)(nil)
)
