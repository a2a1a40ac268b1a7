package logistics

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fulfillment/domain/shipment"
	"fulfillment/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const providerTimeLayout = "2006-01-02 15:04:05"

type courierCompany struct {
	CourierCompanyID int             `json:"courier_company_id"`
	CourierName      string          `json:"courier_name"`
	Rate             decimal.Decimal `json:"rate"`
	ETD              string          `json:"etd"`
}

type serviceabilityResponse struct {
	Data struct {
		AvailableCourierCompanies []courierCompany `json:"available_courier_companies"`
	} `json:"data"`
}

func (c *Client) fetchCouriers(ctx context.Context, req shipment.ServiceabilityRequest) ([]shipment.CourierOption, error) {
	q := url.Values{}
	q.Set("pickup_postcode", req.PickupPostcode)
	q.Set("delivery_postcode", req.DeliveryPostcode)
	q.Set("weight", req.WeightKg.StringFixed(2))
	cod := "0"
	if req.CODAmount.IsPositive() {
		cod = "1"
	}
	q.Set("cod", cod)

	var resp serviceabilityResponse
	if err := c.call(ctx, "serviceability", http.MethodGet, "/v1/external/courier/serviceability/?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	options := make([]shipment.CourierOption, 0, len(resp.Data.AvailableCourierCompanies))
	for _, cc := range resp.Data.AvailableCourierCompanies {
		options = append(options, shipment.CourierOption{
			CourierID:   cc.CourierCompanyID,
			CourierName: cc.CourierName,
			Rate:        cc.Rate,
			ETD:         cc.ETD,
		})
	}
	return options, nil
}

// CheckServiceability answers Available=false when no courier serves the
// route, including the provider's 4xx "not serviceable" answer.
func (c *Client) CheckServiceability(ctx context.Context, req shipment.ServiceabilityRequest) (shipment.Serviceability, error) {
	options, err := c.fetchCouriers(ctx, req)
	if err != nil {
		if _, ok := clientErrorMessage(err); ok {
			return shipment.Serviceability{Available: false}, nil
		}
		return shipment.Serviceability{}, shipment.NewProviderUnavailableError("serviceability", err)
	}
	return shipment.NewServiceability(options), nil
}

func (c *Client) AvailableCouriers(ctx context.Context, req shipment.ServiceabilityRequest) []shipment.CourierOption {
	options, err := c.fetchCouriers(ctx, req)
	if err != nil {
		return nil
	}
	return options
}

type orderItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice string `json:"selling_price"`
}

type createOrderRequest struct {
	OrderID             string      `json:"order_id"`
	OrderDate           string      `json:"order_date"`
	PickupLocation      string      `json:"pickup_location"`
	BillingCustomerName string      `json:"billing_customer_name"`
	BillingAddress      string      `json:"billing_address"`
	BillingAddress2     string      `json:"billing_address_2,omitempty"`
	BillingCity         string      `json:"billing_city"`
	BillingPincode      string      `json:"billing_pincode"`
	BillingState        string      `json:"billing_state"`
	BillingCountry      string      `json:"billing_country"`
	BillingEmail        string      `json:"billing_email"`
	BillingPhone        string      `json:"billing_phone"`
	ShippingIsBilling   bool        `json:"shipping_is_billing"`
	OrderItems          []orderItem `json:"order_items"`
	PaymentMethod       string      `json:"payment_method"`
	SubTotal            string      `json:"sub_total"`
	Length              string      `json:"length"`
	Breadth             string      `json:"breadth"`
	Height              string      `json:"height"`
	Weight              string      `json:"weight"`
}

type createOrderResponse struct {
	OrderID    flexID `json:"order_id"`
	ShipmentID flexID `json:"shipment_id"`
	Status     string `json:"status"`
}

func (c *Client) CreateShipment(ctx context.Context, req shipment.ShipmentRequest) (shipment.CreatedShipment, error) {
	items := make([]orderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = orderItem{Name: it.Name, SKU: it.SKU, Units: it.Units, SellingPrice: it.Price.StringFixed(2)}
	}
	body := createOrderRequest{
		OrderID:             req.OrderID,
		OrderDate:           req.OrderDate.Format("2006-01-02 15:04"),
		PickupLocation:      req.PickupLocation,
		BillingCustomerName: req.CustomerName,
		BillingAddress:      req.AddressLine1,
		BillingAddress2:     req.AddressLine2,
		BillingCity:         req.City,
		BillingPincode:      req.Postcode,
		BillingState:        req.State,
		BillingCountry:      req.Country,
		BillingEmail:        req.CustomerEmail,
		BillingPhone:        req.CustomerPhone,
		ShippingIsBilling:   true,
		OrderItems:          items,
		PaymentMethod:       "Prepaid",
		SubTotal:            req.SubTotal.StringFixed(2),
		Length:              req.LengthCm.StringFixed(1),
		Breadth:             req.BreadthCm.StringFixed(1),
		Height:              req.HeightCm.StringFixed(1),
		Weight:              req.WeightKg.StringFixed(2),
	}

	var resp createOrderResponse
	if err := c.call(ctx, "create_shipment", http.MethodPost, "/v1/external/orders/create/adhoc", body, &resp); err != nil {
		if msg, ok := clientErrorMessage(err); ok {
			return shipment.CreatedShipment{}, shipment.NewShipmentCreateFailedError(msg)
		}
		return shipment.CreatedShipment{}, shipment.NewProviderUnavailableError("create_shipment", err)
	}
	if resp.ShipmentID == "" {
		return shipment.CreatedShipment{}, shipment.NewShipmentCreateFailedError("provider returned no shipment id")
	}
	return shipment.CreatedShipment{
		ExternalOrderID:    string(resp.OrderID),
		ExternalShipmentID: string(resp.ShipmentID),
	}, nil
}

type assignAWBRequest struct {
	ShipmentID string `json:"shipment_id"`
	CourierID  string `json:"courier_id,omitempty"`
}

type awbData struct {
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_name"`
}

type awbResponse struct {
	Data awbData `json:"data"`
}

type assignAWBResponse struct {
	AWBAssignStatus int         `json:"awb_assign_status"`
	Response        awbResponse `json:"response"`
}

func (c *Client) AssignWaybill(ctx context.Context, shipmentID string, courierID int) (shipment.Waybill, error) {
	body := assignAWBRequest{ShipmentID: shipmentID}
	if courierID > 0 {
		body.CourierID = strconv.Itoa(courierID)
	}
	var resp assignAWBResponse
	if err := c.call(ctx, "assign_awb", http.MethodPost, "/v1/external/courier/assign/awb", body, &resp); err != nil {
		if msg, ok := clientErrorMessage(err); ok {
			return shipment.Waybill{}, shipment.NewWaybillAssignFailedError(shipmentID, msg)
		}
		return shipment.Waybill{}, shipment.NewProviderUnavailableError("assign_awb", err)
	}
	if resp.AWBAssignStatus != 1 || resp.Response.Data.AWBCode == "" {
		return shipment.Waybill{}, shipment.NewWaybillAssignFailedError(shipmentID, "provider did not assign an AWB")
	}
	return shipment.Waybill{
		AWBCode:     resp.Response.Data.AWBCode,
		CourierName: resp.Response.Data.CourierName,
	}, nil
}

type pickupRequest struct {
	ShipmentID []string `json:"shipment_id"`
}

type pickupSchedule struct {
	PickupScheduledDate string `json:"pickup_scheduled_date"`
}

type pickupResponse struct {
	PickupStatus int            `json:"pickup_status"`
	Response     pickupSchedule `json:"response"`
}

func (c *Client) RequestPickup(ctx context.Context, shipmentID string) (time.Time, error) {
	var resp pickupResponse
	if err := c.call(ctx, "request_pickup", http.MethodPost, "/v1/external/courier/generate/pickup", pickupRequest{ShipmentID: []string{shipmentID}}, &resp); err != nil {
		return time.Time{}, shipment.NewProviderUnavailableError("request_pickup", err)
	}
	scheduled, err := time.Parse(providerTimeLayout, resp.Response.PickupScheduledDate)
	if err != nil {
		logger.Ctx(ctx).Warn("Unparseable pickup date",
			zap.String("shipment_id", shipmentID),
			zap.String("value", resp.Response.PickupScheduledDate),
		)
		return time.Time{}, nil
	}
	return scheduled, nil
}

type trackEntry struct {
	AWBCode       string `json:"awb_code"`
	CurrentStatus string `json:"current_status"`
	EDD           string `json:"edd"`
	CourierName   string `json:"courier_name"`
}

type trackActivity struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

type trackingData struct {
	ShipmentStatus string          `json:"shipment_status_text"`
	ShipmentTrack  []trackEntry    `json:"shipment_track"`
	Activities     []trackActivity `json:"shipment_track_activities"`
	TrackURL       string          `json:"track_url"`
}

type trackResponse struct {
	TrackingData trackingData `json:"tracking_data"`
}

func (c *Client) TrackShipment(ctx context.Context, shipmentID string) (shipment.Tracking, error) {
	var resp trackResponse
	if err := c.call(ctx, "track", http.MethodGet, "/v1/external/courier/track/shipment/"+url.PathEscape(shipmentID), nil, &resp); err != nil {
		return shipment.Tracking{}, shipment.NewProviderUnavailableError("track", err)
	}
	td := resp.TrackingData
	t := shipment.Tracking{Status: td.ShipmentStatus, TrackingURL: td.TrackURL}
	if len(td.ShipmentTrack) > 0 {
		head := td.ShipmentTrack[0]
		if head.CurrentStatus != "" {
			t.Status = head.CurrentStatus
		}
		t.ETA = head.EDD
	}
	for _, a := range td.Activities {
		t.History = append(t.History, shipment.ProviderUpdate{
			Status:    a.Status,
			Timestamp: a.Date,
			Location:  a.Location,
			Remark:    a.Activity,
		})
	}
	return t, nil
}

type cancelRequest struct {
	AWBs []string `json:"awbs"`
}

func (c *Client) CancelShipment(ctx context.Context, awbCodes []string) error {
	if len(awbCodes) == 0 {
		return nil
	}
	if err := c.call(ctx, "cancel", http.MethodPost, "/v1/external/orders/cancel/shipment/awbs", cancelRequest{AWBs: awbCodes}, nil); err != nil {
		return shipment.NewProviderUnavailableError("cancel", err)
	}
	return nil
}
