package webhook

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ShippingEvent is the logistics provider's status push.
type ShippingEvent struct {
	AWB              string     `json:"awb"`
	ShipmentID       externalID `json:"shipment_id"`
	OrderID          string     `json:"order_id"`
	CurrentStatus    string     `json:"current_status"`
	CurrentTimestamp string     `json:"current_timestamp"`
	Location         string     `json:"location"`
	Remark           string     `json:"remark"`
	CourierName      string     `json:"courier_name"`
}

// PaymentEvent is the gateway notification envelope. Only the entities the
// event concerns are present.
type PaymentEvent struct {
	Event     string         `json:"event"`
	CreatedAt int64          `json:"created_at"`
	Payload   paymentPayload `json:"payload"`
}

type paymentPayload struct {
	Payment *paymentWrapper `json:"payment"`
	Refund  *refundWrapper  `json:"refund"`
}

type paymentWrapper struct {
	Entity paymentEntity `json:"entity"`
}

type paymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type refundWrapper struct {
	Entity refundEntity `json:"entity"`
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// externalID accepts both numeric and string identifiers.
type externalID string

func (id *externalID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = externalID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = externalID(n.String())
	return nil
}
