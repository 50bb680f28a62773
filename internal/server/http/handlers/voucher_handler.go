package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/usecase"
)

// VoucherHandler serves voucher validation and application.
type VoucherHandler struct {
	facade VoucherFacade
	logger *zap.Logger
}

// NewVoucherHandler constructs VoucherHandler.
func NewVoucherHandler(facade VoucherFacade, logger *zap.Logger) *VoucherHandler {
	return &VoucherHandler{facade: facade, logger: logger}
}

// Validate handles POST /api/vouchers/validate.
func (h *VoucherHandler) Validate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.ValidateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.facade.ValidateVoucher(c.Request.Context(), req.Code, req.OrderTotal, actor.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := dto.ValidateVoucherResponse{
		IsValid:        result.IsValid,
		DiscountAmount: result.DiscountAmount,
		Voucher:        toVoucherSummary(result.Voucher),
	}
	resp.ErrorCode, resp.ErrorMessage = localizedReason(c, result.Reason)
	c.JSON(http.StatusOK, resp)
}

// Apply handles POST /api/vouchers/apply.
func (h *VoucherHandler) Apply(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.ApplyVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.facade.ApplyVoucher(c.Request.Context(), req.Code, req.OrderID, actor.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := dto.ApplyVoucherResponse{
		Success:        result.Success,
		DiscountAmount: result.DiscountAmount,
		NewTotal:       result.NewTotal,
	}
	resp.ErrorCode, resp.ErrorMessage = localizedReason(c, result.Reason)
	c.JSON(http.StatusOK, resp)
}

func toVoucherSummary(summary *usecase.VoucherSummary) *dto.VoucherSummaryResponse {
	if summary == nil {
		return nil
	}
	return &dto.VoucherSummaryResponse{
		Code:          summary.Code,
		Description:   summary.Description,
		DiscountType:  string(summary.DiscountType),
		DiscountValue: summary.DiscountValue,
		EndDate:       summary.EndDate,
	}
}
