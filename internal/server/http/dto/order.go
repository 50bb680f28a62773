package dto

// OrderItemRequest is a single requested order line.
type OrderItemRequest struct {
	VariantID int64 `json:"variant_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// PlaceOrderRequest describes the order placement payload.
type PlaceOrderRequest struct {
	Notes             string             `json:"notes" binding:"max=1000"`
	ShippingAddressID int64              `json:"shipping_address_id" binding:"required,gt=0"`
	PaymentMethod     string             `json:"payment_method" binding:"required"`
	Items             []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	VoucherCode       string             `json:"voucher_code" binding:"max=64"`
}

// PlaceOrderResponse carries the identifier of the created order.
type PlaceOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

// UpdateStatusRequest describes a status change payload.
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	Reason        string `json:"reason" binding:"max=500"`
	ShipperID     *int64 `json:"shipper_id" binding:"omitempty,gt=0"`
	DeliveryImage string `json:"delivery_image" binding:"max=2048"`
}

// UpdateStatusResponse reports whether the status was changed.
type UpdateStatusResponse struct {
	Success bool `json:"success"`
}
