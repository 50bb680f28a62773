package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	logger *zap.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	items := make([]usecase.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.PlaceOrderItem{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	orderID, err := h.facade.PlaceOrder(c.Request.Context(), actor, usecase.PlaceOrderCommand{
		Notes:             req.Notes,
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		Items:             items,
		VoucherCode:       req.VoucherCode,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/orders/%d", orderID))
	c.JSON(http.StatusCreated, dto.PlaceOrderResponse{OrderID: orderID})
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		badRequest(c, fmt.Errorf("order id %q", c.Param("id")))
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	success, err := h.facade.UpdateOrderStatus(c.Request.Context(), actor, usecase.UpdateStatusCommand{
		OrderID:       orderID,
		Status:        model.OrderStatus(req.Status),
		Reason:        req.Reason,
		ShipperID:     req.ShipperID,
		DeliveryImage: req.DeliveryImage,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.UpdateStatusResponse{Success: success})
}
