package shipment

import "fulfillment/domain/shared"

var (
	ErrShippingDetailNotFound = shared.NewKind(shared.ErrNotFound, "shipping detail not found")
	ErrProviderUnavailable    = shared.NewKind(shared.ErrUpstreamUnavailable, "logistics provider unavailable")
	ErrShipmentCreateFailed   = shared.NewKind(shared.ErrUpstreamUnavailable, "shipment creation failed")
	ErrWaybillAssignFailed    = shared.NewKind(shared.ErrUpstreamUnavailable, "waybill assignment failed")
	ErrNoCourierAvailable     = shared.NewKind(shared.ErrUpstreamUnavailable, "no courier available for shipment")
	ErrAlreadyBooked          = shared.NewKind(shared.ErrConflict, "shipment already booked")
	ErrConcurrentModification = shared.NewKind(shared.ErrConcurrentModification, "shipping detail was modified by another transaction")
)

func NewShippingDetailNotFoundError(ref string) error {
	return shared.NewError(ErrShippingDetailNotFound, "shipping_detail", "shipping detail not found: "+ref)
}

func NewProviderUnavailableError(op string, cause error) error {
	return shared.NewError(ErrProviderUnavailable, "shipment", "logistics provider unavailable during "+op).WithCause(cause)
}

func NewShipmentCreateFailedError(reason string) error {
	return shared.NewError(ErrShipmentCreateFailed, "shipment", "shipment creation rejected: "+reason)
}

func NewWaybillAssignFailedError(shipmentID, reason string) error {
	return shared.NewError(ErrWaybillAssignFailed, "shipment", "waybill assignment failed for shipment "+shipmentID+": "+reason)
}

func NewConcurrentModificationError(id string) error {
	return shared.NewError(ErrConcurrentModification, "shipping_detail", "shipping detail "+id+" was modified by another transaction, please retry")
}

func NewAlreadyBookedError(orderID string) error {
	return shared.NewError(ErrAlreadyBooked, "shipping_detail", "order "+orderID+" already has a shipment")
}
