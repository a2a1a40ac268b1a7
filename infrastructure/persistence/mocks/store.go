// Package mocks is an in-memory persistence layer used for local runs
// (database type "mock") and application tests. It honours the same
// contracts as the MySQL repositories: version checks, unique keys and
// all-or-nothing units of work.
package mocks

import (
	"maps"
	"sync"

	"fulfillment/domain/order"
	"fulfillment/domain/payment"
	"fulfillment/domain/refund"
	"fulfillment/domain/shipment"
	"fulfillment/domain/storefront"
)

// Store holds every table. Repositories copy DTOs in and out so callers
// never share memory with stored state.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	orders    map[string]order.ReconstructionDTO
	payments  map[string]payment.ReconstructionDTO
	shipments map[string]shipment.ReconstructionDTO // keyed by order id
	refunds   map[string]refund.ReconstructionDTO
	products  map[string]storefront.Product
	carts     map[string][]storefront.CartItem
	addresses map[string]storefront.Address
	customers map[string]storefront.Customer
}

func NewStore() *Store {
	return &Store{
		orders:    make(map[string]order.ReconstructionDTO),
		payments:  make(map[string]payment.ReconstructionDTO),
		shipments: make(map[string]shipment.ReconstructionDTO),
		refunds:   make(map[string]refund.ReconstructionDTO),
		products:  make(map[string]storefront.Product),
		carts:     make(map[string][]storefront.CartItem),
		addresses: make(map[string]storefront.Address),
		customers: make(map[string]storefront.Customer),
	}
}

type snapshot struct {
	orders    map[string]order.ReconstructionDTO
	payments  map[string]payment.ReconstructionDTO
	shipments map[string]shipment.ReconstructionDTO
	refunds   map[string]refund.ReconstructionDTO
	products  map[string]storefront.Product
	carts     map[string][]storefront.CartItem
}

// Stored values are replaced, never mutated in place, so shallow map copies suffice.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		orders:    maps.Clone(s.orders),
		payments:  maps.Clone(s.payments),
		shipments: maps.Clone(s.shipments),
		refunds:   maps.Clone(s.refunds),
		products:  maps.Clone(s.products),
		carts:     maps.Clone(s.carts),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.payments = snap.payments
	s.shipments = snap.shipments
	s.refunds = snap.refunds
	s.products = snap.products
	s.carts = snap.carts
}

func (s *Store) PutProduct(p storefront.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) PutAddress(a storefront.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses[a.ID] = a
}

func (s *Store) PutCustomer(c storefront.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *Store) PutCart(userID string, items ...storefront.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = append([]storefront.CartItem(nil), items...)
}

// Product returns the stored product, mainly for asserting stock levels.
func (s *Store) Product(id string) (storefront.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}
