package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/handlers/handlerstest"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var customer = model.Actor{UserID: 7, Role: model.RoleCustomer}

func withActor(actor model.Actor) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.ActorContextKey, actor)
	}
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, setup func(*gin.Context), body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(middleware.Locale())
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", resp.Body.String(), err)
	}
	return out
}

func placeRequest() dto.PlaceOrderRequest {
	return dto.PlaceOrderRequest{
		Notes:             "leave at the door",
		ShippingAddressID: 3,
		PaymentMethod:     string(model.PaymentMethodCashOnDelivery),
		Items:             []dto.OrderItemRequest{{VariantID: 11, Quantity: 2}},
		VoucherCode:       "save10",
	}
}

func TestOrderHandlerPlace(t *testing.T) {
	var got usecase.PlaceOrderCommand
	var gotActor model.Actor
	facade := handlerstest.OrderFacadeStub{
		PlaceFn: func(_ context.Context, actor model.Actor, cmd usecase.PlaceOrderCommand) (int64, error) {
			gotActor, got = actor, cmd
			return 40, nil
		},
	}
	handler := NewOrderHandler(facade, zap.NewNop())

	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, withActor(customer), placeRequest(), nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if body := decode[dto.PlaceOrderResponse](t, resp); body.OrderID != 40 {
		t.Fatalf("unexpected order id %d", body.OrderID)
	}
	if resp.Header().Get("Location") != "/api/orders/40" {
		t.Fatalf("unexpected location %q", resp.Header().Get("Location"))
	}
	if gotActor != customer {
		t.Fatalf("unexpected actor %+v", gotActor)
	}
	if got.ShippingAddressID != 3 || got.PaymentMethod != model.PaymentMethodCashOnDelivery || got.VoucherCode != "save10" {
		t.Fatalf("unexpected command %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].VariantID != 11 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", got.Items)
	}
}

func TestOrderHandlerPlaceRejectsMalformedBody(t *testing.T) {
	called := false
	facade := handlerstest.OrderFacadeStub{
		PlaceFn: func(context.Context, model.Actor, usecase.PlaceOrderCommand) (int64, error) {
			called = true
			return 0, nil
		},
	}
	handler := NewOrderHandler(facade, zap.NewNop())

	bodies := map[string]any{
		"not json":    "{",
		"no items":    dto.PlaceOrderRequest{ShippingAddressID: 1, PaymentMethod: "COD"},
		"bad qty":     dto.PlaceOrderRequest{ShippingAddressID: 1, PaymentMethod: "COD", Items: []dto.OrderItemRequest{{VariantID: 1, Quantity: 0}}},
		"no address":  dto.PlaceOrderRequest{PaymentMethod: "COD", Items: []dto.OrderItemRequest{{VariantID: 1, Quantity: 1}}},
		"long notes":  dto.PlaceOrderRequest{Notes: string(bytes.Repeat([]byte("n"), 1001)), ShippingAddressID: 1, PaymentMethod: "COD", Items: []dto.OrderItemRequest{{VariantID: 1, Quantity: 1}}},
		"no payment":  dto.PlaceOrderRequest{ShippingAddressID: 1, Items: []dto.OrderItemRequest{{VariantID: 1, Quantity: 1}}},
		"bad variant": dto.PlaceOrderRequest{ShippingAddressID: 1, PaymentMethod: "COD", Items: []dto.OrderItemRequest{{VariantID: -1, Quantity: 1}}},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, withActor(customer), body, nil)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			if decode[dto.ErrorResponse](t, resp).Code != "BAD_REQUEST" {
				t.Fatalf("unexpected body %s", resp.Body.String())
			}
		})
	}
	if called {
		t.Fatal("facade must not be called for malformed requests")
	}
}

func TestOrderHandlerPlaceWithoutActor(t *testing.T) {
	handler := NewOrderHandler(handlerstest.OrderFacadeStub{}, zap.NewNop())
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, nil, placeRequest(), nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestOrderHandlerPlaceMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"stock", &domainErrors.InsufficientStockError{VariantID: 11, Requested: 2, Available: 1}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{"empty cart", domainErrors.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
		{"voucher", &domainErrors.VoucherError{Code: "SAVE10", Reason: domainErrors.VoucherExpired}, http.StatusUnprocessableEntity, "VOUCHER_EXPIRED"},
		{"customer", fmt.Errorf("%w: %w", domainErrors.ErrCustomerNotFound, domainErrors.ErrNotFound), http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
		{"permission", domainErrors.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{"conflict", domainErrors.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := handlerstest.OrderFacadeStub{
				PlaceFn: func(context.Context, model.Actor, usecase.PlaceOrderCommand) (int64, error) {
					return 0, tc.err
				},
			}
			handler := NewOrderHandler(facade, zap.NewNop())
			resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, withActor(customer), placeRequest(), nil)
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			body := decode[dto.ErrorResponse](t, resp)
			if body.Code != tc.code || body.Message == "" {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestOrderHandlerInternalErrorIsLoggedNotLeaked(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	facade := handlerstest.OrderFacadeStub{
		PlaceFn: func(context.Context, model.Actor, usecase.PlaceOrderCommand) (int64, error) {
			return 0, errors.New("pq: password authentication failed")
		},
	}
	handler := NewOrderHandler(facade, zap.New(core))
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, withActor(customer), placeRequest(), nil)

	if bytes.Contains(resp.Body.Bytes(), []byte("password")) {
		t.Fatalf("internal detail leaked: %s", resp.Body.String())
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one error log, got %d", logs.Len())
	}
}

func TestOrderHandlerLocalizesErrors(t *testing.T) {
	facade := handlerstest.OrderFacadeStub{
		PlaceFn: func(context.Context, model.Actor, usecase.PlaceOrderCommand) (int64, error) {
			return 0, domainErrors.ErrEmptyCart
		},
	}
	handler := NewOrderHandler(facade, zap.NewNop())
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Place, withActor(customer), placeRequest(), map[string]string{"Accept-Language": "vi"})
	if got := decode[dto.ErrorResponse](t, resp).Message; got != "Giỏ hàng trống" {
		t.Fatalf("expected vietnamese message, got %q", got)
	}
}

func TestOrderHandlerUpdateStatus(t *testing.T) {
	shipper := int64(9)
	var got usecase.UpdateStatusCommand
	facade := handlerstest.OrderFacadeStub{
		UpdateFn: func(_ context.Context, _ model.Actor, cmd usecase.UpdateStatusCommand) (bool, error) {
			got = cmd
			return true, nil
		},
	}
	handler := NewOrderHandler(facade, zap.NewNop())
	admin := model.Actor{UserID: 1, Role: model.RoleAdmin}

	body := dto.UpdateStatusRequest{Status: "SHIPPED", ShipperID: &shipper}
	resp := performRequest(t, http.MethodPatch, "/api/orders/:id/status", "/api/orders/40/status", handler.UpdateStatus, withActor(admin), body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !decode[dto.UpdateStatusResponse](t, resp).Success {
		t.Fatal("expected success")
	}
	if got.OrderID != 40 || got.Status != model.OrderStatusShipped || got.ShipperID == nil || *got.ShipperID != 9 {
		t.Fatalf("unexpected command %+v", got)
	}
}

func TestOrderHandlerUpdateStatusErrors(t *testing.T) {
	handler := NewOrderHandler(handlerstest.OrderFacadeStub{}, zap.NewNop())
	body := dto.UpdateStatusRequest{Status: "CANCELED"}

	resp := performRequest(t, http.MethodPatch, "/api/orders/:id/status", "/api/orders/abc/status", handler.UpdateStatus, withActor(customer), body, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPatch, "/api/orders/:id/status", "/api/orders/1/status", handler.UpdateStatus, withActor(customer), dto.UpdateStatusRequest{}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", resp.Code)
	}

	handler = NewOrderHandler(handlerstest.OrderFacadeStub{
		UpdateFn: func(context.Context, model.Actor, usecase.UpdateStatusCommand) (bool, error) {
			return false, &domainErrors.TransitionError{From: model.OrderStatusDelivered, To: model.OrderStatusCanceled}
		},
	}, zap.NewNop())
	resp = performRequest(t, http.MethodPatch, "/api/orders/:id/status", "/api/orders/1/status", handler.UpdateStatus, withActor(customer), body, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if decode[dto.ErrorResponse](t, resp).Code != "INVALID_TRANSITION" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestVoucherHandlerValidate(t *testing.T) {
	discount := decimal.RequireFromString("12.50")
	var gotTotal decimal.Decimal
	var gotUser int64
	facade := handlerstest.VoucherFacadeStub{
		ValidateFn: func(_ context.Context, code string, total decimal.Decimal, userID int64) (usecase.ValidateVoucherResult, error) {
			gotTotal, gotUser = total, userID
			return usecase.ValidateVoucherResult{
				IsValid:        true,
				DiscountAmount: &discount,
				Voucher: &usecase.VoucherSummary{
					Code:          code,
					DiscountType:  model.DiscountTypePercentage,
					DiscountValue: decimal.NewFromInt(10),
					EndDate:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	handler := NewVoucherHandler(facade, zap.NewNop())

	resp := performRequest(t, http.MethodPost, "/api/vouchers/validate", "/api/vouchers/validate", handler.Validate, withActor(customer), `{"code":"SAVE10","order_total":"125.00"}`, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decode[dto.ValidateVoucherResponse](t, resp)
	if !body.IsValid || body.DiscountAmount == nil || !body.DiscountAmount.Equal(discount) {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Voucher == nil || body.Voucher.Code != "SAVE10" || body.Voucher.DiscountType != string(model.DiscountTypePercentage) {
		t.Fatalf("unexpected voucher %+v", body.Voucher)
	}
	if body.ErrorCode != "" || body.ErrorMessage != "" {
		t.Fatalf("unexpected error fields %+v", body)
	}
	if !gotTotal.Equal(decimal.RequireFromString("125")) || gotUser != customer.UserID {
		t.Fatalf("unexpected facade args %s %d", gotTotal, gotUser)
	}
}

func TestVoucherHandlerValidateRejection(t *testing.T) {
	facade := handlerstest.VoucherFacadeStub{
		ValidateFn: func(context.Context, string, decimal.Decimal, int64) (usecase.ValidateVoucherResult, error) {
			return usecase.ValidateVoucherResult{Reason: domainErrors.VoucherBelowMinimumOrder, ErrorMessage: "order total is below the voucher minimum"}, nil
		},
	}
	handler := NewVoucherHandler(facade, zap.NewNop())

	resp := performRequest(t, http.MethodPost, "/api/vouchers/validate", "/api/vouchers/validate", handler.Validate, withActor(customer), `{"code":"SAVE10","order_total":10}`, map[string]string{"Accept-Language": "vi-VN"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := decode[dto.ValidateVoucherResponse](t, resp)
	if body.IsValid || body.ErrorCode != "VOUCHER_BELOW_MINIMUM_ORDER" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.ErrorMessage != "Đơn hàng chưa đạt giá trị tối thiểu của mã giảm giá" {
		t.Fatalf("expected localized message, got %q", body.ErrorMessage)
	}
	if body.DiscountAmount != nil || body.Voucher != nil {
		t.Fatalf("rejections carry no discount: %+v", body)
	}
}

func TestVoucherHandlerValidateErrors(t *testing.T) {
	handler := NewVoucherHandler(handlerstest.VoucherFacadeStub{}, zap.NewNop())
	resp := performRequest(t, http.MethodPost, "/api/vouchers/validate", "/api/vouchers/validate", handler.Validate, withActor(customer), `{"order_total":"1"}`, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code, got %d", resp.Code)
	}

	handler = NewVoucherHandler(handlerstest.VoucherFacadeStub{
		ValidateFn: func(context.Context, string, decimal.Decimal, int64) (usecase.ValidateVoucherResult, error) {
			return usecase.ValidateVoucherResult{}, fmt.Errorf("%w: order total must not be negative", domainErrors.ErrInvalidInput)
		},
	}, zap.NewNop())
	resp = performRequest(t, http.MethodPost, "/api/vouchers/validate", "/api/vouchers/validate", handler.Validate, withActor(customer), `{"code":"X","order_total":"-1"}`, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestVoucherHandlerApply(t *testing.T) {
	discount := decimal.RequireFromString("5")
	total := decimal.RequireFromString("45")
	var gotOrder, gotUser int64
	facade := handlerstest.VoucherFacadeStub{
		ApplyFn: func(_ context.Context, _ string, orderID, userID int64) (usecase.ApplyVoucherResult, error) {
			gotOrder, gotUser = orderID, userID
			return usecase.ApplyVoucherResult{Success: true, DiscountAmount: &discount, NewTotal: &total}, nil
		},
	}
	handler := NewVoucherHandler(facade, zap.NewNop())

	resp := performRequest(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", handler.Apply, withActor(customer), dto.ApplyVoucherRequest{Code: "SAVE5", OrderID: 40}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decode[dto.ApplyVoucherResponse](t, resp)
	if !body.Success || body.NewTotal == nil || !body.NewTotal.Equal(total) {
		t.Fatalf("unexpected body %+v", body)
	}
	if gotOrder != 40 || gotUser != customer.UserID {
		t.Fatalf("unexpected facade args %d %d", gotOrder, gotUser)
	}
}

func TestVoucherHandlerApplyErrors(t *testing.T) {
	handler := NewVoucherHandler(handlerstest.VoucherFacadeStub{
		ApplyFn: func(context.Context, string, int64, int64) (usecase.ApplyVoucherResult, error) {
			return usecase.ApplyVoucherResult{Reason: domainErrors.VoucherPerUserLimit}, nil
		},
	}, zap.NewNop())
	resp := performRequest(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", handler.Apply, withActor(customer), dto.ApplyVoucherRequest{Code: "SAVE5", OrderID: 40}, nil)
	body := decode[dto.ApplyVoucherResponse](t, resp)
	if resp.Code != http.StatusOK || body.Success || body.ErrorCode != "VOUCHER_PER_USER_LIMIT_REACHED" || body.ErrorMessage == "" {
		t.Fatalf("unexpected response %d %+v", resp.Code, body)
	}

	resp = performRequest(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", handler.Apply, withActor(customer), dto.ApplyVoucherRequest{Code: "SAVE5"}, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without order id, got %d", resp.Code)
	}

	handler = NewVoucherHandler(handlerstest.VoucherFacadeStub{
		ApplyFn: func(context.Context, string, int64, int64) (usecase.ApplyVoucherResult, error) {
			return usecase.ApplyVoucherResult{}, fmt.Errorf("%w: order 40 is CONFIRMED", domainErrors.ErrOrderNotPending)
		},
	}, zap.NewNop())
	resp = performRequest(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", handler.Apply, withActor(customer), dto.ApplyVoucherRequest{Code: "SAVE5", OrderID: 40}, nil)
	if resp.Code != http.StatusUnprocessableEntity || decode[dto.ErrorResponse](t, resp).Code != "ORDER_NOT_PENDING" {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(handlerstest.StorefrontFacadeStub{}, zap.NewNop())
	resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", handler.Check, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	handler = NewHealthHandler(handlerstest.StorefrontFacadeStub{HealthErr: errors.New("db down")}, zap.NewNop())
	resp = performRequest(t, http.MethodGet, "/healthz", "/healthz", handler.Check, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[domainErrors.Kind]int{
		domainErrors.KindValidation: http.StatusUnprocessableEntity,
		domainErrors.KindNotFound:   http.StatusNotFound,
		domainErrors.KindPermission: http.StatusForbidden,
		domainErrors.KindConflict:   http.StatusConflict,
		domainErrors.KindInternal:   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusFor(kind); got != want {
			t.Fatalf("kind %s: expected %d, got %d", kind, want, got)
		}
	}
}

var _ StorefrontFacade = handlerstest.StorefrontFacadeStub{}
