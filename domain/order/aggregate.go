/*
Package order is the Order aggregate: a checkout attempt materialized into a
binding commitment.

The aggregate owns its line items and an immutable shipping-address snapshot.
Subtotal, shipping cost and total are fixed at creation and never recomputed.
Status moves forward through PENDING -> PAID -> SHIPPED -> DELIVERED, with
CANCELLED reachable only from PENDING or PAID.
*/
package order

import (
	"fmt"
	"strings"
	"time"

	"fulfillment/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order aggregate root
type Order struct {
	id               string
	userID           string
	items            []Item
	subtotal         decimal.Decimal
	shippingCost     decimal.Decimal
	totalAmount      decimal.Decimal
	status           Status
	address          Address
	parcel           Parcel
	pickupPostcode   string
	deliveryPostcode string
	version          int
	createdAt        time.Time
	updatedAt        time.Time

	shared.EventRecorder
	isNew bool
}

// Item is a purchased line. The unit price is the price at the time of purchase.
type Item struct {
	id          string
	productID   string
	productName string
	quantity    int
	unitPrice   decimal.Decimal
}

func (i Item) ID() string                 { return i.id }
func (i Item) ProductID() string          { return i.productID }
func (i Item) ProductName() string        { return i.productName }
func (i Item) Quantity() int              { return i.quantity }
func (i Item) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i Item) LineTotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

// Address is the shipping address copied at checkout. It does not follow later
// edits of the customer's saved address.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Parcel is the weight and dimensions used for the shipping quote.
type Parcel struct {
	WeightKg  decimal.Decimal `json:"weight_kg"`
	LengthCm  decimal.Decimal `json:"length_cm"`
	BreadthCm decimal.Decimal `json:"breadth_cm"`
	HeightCm  decimal.Decimal `json:"height_cm"`
}

// ItemParams describes one line to purchase.
type ItemParams struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// PlaceParams carries everything checkout resolved before the order exists.
type PlaceParams struct {
	UserID         string
	Items          []ItemParams
	ShippingCost   decimal.Decimal
	Address        Address
	Parcel         Parcel
	PickupPostcode string
}

// NewOrder creates a PENDING order and records order.placed.
func NewOrder(p PlaceParams) (*Order, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, shared.NewValidationError("order", "user_id", "user is required")
	}
	if len(p.Items) == 0 {
		return nil, NewEmptyCartError()
	}
	if p.ShippingCost.IsNegative() {
		return nil, shared.NewValidationError("order", "shipping_cost", "shipping cost cannot be negative")
	}
	if strings.TrimSpace(p.Address.PostalCode) == "" {
		return nil, shared.NewValidationError("order", "address", "address postal code is required")
	}

	items := make([]Item, 0, len(p.Items))
	subtotal := decimal.Zero
	for _, req := range p.Items {
		if req.Quantity <= 0 {
			return nil, shared.NewError(ErrInvalidQuantity, "order", fmt.Sprintf("invalid quantity %d for product %s", req.Quantity, req.ProductID))
		}
		if req.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("order", "unit_price", "unit price cannot be negative")
		}
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate order item ID: %w", err)
		}
		item := Item{
			id:          id.String(),
			productID:   req.ProductID,
			productName: req.ProductName,
			quantity:    req.Quantity,
			unitPrice:   shared.RoundMoney(req.UnitPrice),
		}
		subtotal = subtotal.Add(item.LineTotal())
		items = append(items, item)
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate order ID: %w", err)
	}

	shipping := shared.RoundMoney(p.ShippingCost)
	now := time.Now()
	o := &Order{
		id:               orderID.String(),
		userID:           p.UserID,
		items:            items,
		subtotal:         shared.RoundMoney(subtotal),
		shippingCost:     shipping,
		totalAmount:      shared.RoundMoney(subtotal.Add(shipping)),
		status:           StatusPending,
		address:          p.Address,
		parcel:           p.Parcel,
		pickupPostcode:   p.PickupPostcode,
		deliveryPostcode: p.Address.PostalCode,
		createdAt:        now,
		updatedAt:        now,
		isNew:            true,
	}
	o.Record(NewOrderPlacedEvent(o))
	return o, nil
}

// ReconstructionDTO is used by repositories only, to rebuild an Order from storage.
type ReconstructionDTO struct {
	ID               string
	UserID           string
	Items            []ItemReconstructionDTO
	Subtotal         decimal.Decimal
	ShippingCost     decimal.Decimal
	TotalAmount      decimal.Decimal
	Status           Status
	Address          Address
	Parcel           Parcel
	PickupPostcode   string
	DeliveryPostcode string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ItemReconstructionDTO struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func RebuildFromDTO(dto ReconstructionDTO) *Order {
	items := make([]Item, len(dto.Items))
	for i, it := range dto.Items {
		items[i] = Item{
			id:          it.ID,
			productID:   it.ProductID,
			productName: it.ProductName,
			quantity:    it.Quantity,
			unitPrice:   it.UnitPrice,
		}
	}
	return &Order{
		id:               dto.ID,
		userID:           dto.UserID,
		items:            items,
		subtotal:         dto.Subtotal,
		shippingCost:     dto.ShippingCost,
		totalAmount:      dto.TotalAmount,
		status:           dto.Status,
		address:          dto.Address,
		parcel:           dto.Parcel,
		pickupPostcode:   dto.PickupPostcode,
		deliveryPostcode: dto.DeliveryPostcode,
		version:          dto.Version,
		createdAt:        dto.CreatedAt,
		updatedAt:        dto.UpdatedAt,
	}
}

// ToDTO is the inverse of RebuildFromDTO.
func (o *Order) ToDTO() ReconstructionDTO {
	items := make([]ItemReconstructionDTO, len(o.items))
	for i, it := range o.items {
		items[i] = ItemReconstructionDTO{
			ID:          it.id,
			ProductID:   it.productID,
			ProductName: it.productName,
			Quantity:    it.quantity,
			UnitPrice:   it.unitPrice,
		}
	}
	return ReconstructionDTO{
		ID:               o.id,
		UserID:           o.userID,
		Items:            items,
		Subtotal:         o.subtotal,
		ShippingCost:     o.shippingCost,
		TotalAmount:      o.totalAmount,
		Status:           o.status,
		Address:          o.address,
		Parcel:           o.parcel,
		PickupPostcode:   o.pickupPostcode,
		DeliveryPostcode: o.deliveryPostcode,
		Version:          o.version,
		CreatedAt:        o.createdAt,
		UpdatedAt:        o.updatedAt,
	}
}

// MarkPaid moves a PENDING order to PAID.
func (o *Order) MarkPaid() error {
	if o.status != StatusPending {
		return NewInvalidTransitionError(o.status, StatusPaid)
	}
	o.setStatus(StatusPaid)
	o.Record(NewOrderPaidEvent(o.id, o.totalAmount))
	return nil
}

// Cancel cancels a PENDING or PAID order. Past dispatch the refund workflow applies instead.
func (o *Order) Cancel(reason string) error {
	if !CanTransition(o.status, StatusCancelled) {
		return NewInvalidTransitionError(o.status, StatusCancelled)
	}
	from := o.status
	o.setStatus(StatusCancelled)
	o.Record(NewOrderCancelledEvent(o.id, from, reason))
	return nil
}

// TransitionTo applies a forward transition of the state machine.
// Moving to the current status is a no-op and reports false.
func (o *Order) TransitionTo(target Status, reason string) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewValidationError("order", "status", "unknown order status "+string(target))
	}
	if o.status == target {
		return false, nil
	}
	if target == StatusCancelled {
		if err := o.Cancel(reason); err != nil {
			return false, err
		}
		return true, nil
	}
	if target == StatusPaid && o.status == StatusPending {
		if err := o.MarkPaid(); err != nil {
			return false, err
		}
		return true, nil
	}
	if !CanTransition(o.status, target) {
		return false, NewInvalidTransitionError(o.status, target)
	}
	from := o.status
	o.setStatus(target)
	o.Record(NewOrderStatusChangedEvent(o.id, from, target, reason))
	return true, nil
}

func (o *Order) setStatus(s Status) {
	o.status = s
	o.updatedAt = time.Now()
}

// IncrementVersionForSave is called by repositories after a successful write.
func (o *Order) IncrementVersionForSave() {
	o.version++
	o.isNew = false
}

func (o *Order) ID() string     { return o.id }
func (o *Order) UserID() string { return o.userID }

func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}
func (o *Order) Subtotal() decimal.Decimal     { return o.subtotal }
func (o *Order) ShippingCost() decimal.Decimal { return o.shippingCost }
func (o *Order) TotalAmount() decimal.Decimal  { return o.totalAmount }
func (o *Order) Status() Status                { return o.status }
func (o *Order) Address() Address              { return o.address }
func (o *Order) Parcel() Parcel                { return o.parcel }
func (o *Order) PickupPostcode() string        { return o.pickupPostcode }
func (o *Order) DeliveryPostcode() string      { return o.deliveryPostcode }
func (o *Order) Version() int                  { return o.version }
func (o *Order) CreatedAt() time.Time          { return o.createdAt }
func (o *Order) UpdatedAt() time.Time          { return o.updatedAt }
func (o *Order) IsNew() bool                   { return o.isNew }

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID string) bool { return o.userID == userID }

var _ shared.AggregateRoot = (*Order)(nil)
