package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/i18n"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// currentActor extracts the authenticated actor, aborting with 401 when absent.
func currentActor(c *gin.Context) (model.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		abortWith(c, http.StatusUnauthorized, i18n.CodeUnauthorized)
		return model.Actor{}, false
	}
	return actor, true
}

func statusFor(kind domainErrors.Kind) int {
	switch kind {
	case domainErrors.KindValidation:
		return http.StatusUnprocessableEntity
	case domainErrors.KindNotFound:
		return http.StatusNotFound
	case domainErrors.KindPermission:
		return http.StatusForbidden
	case domainErrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a use case error onto a status and a localized body.
// Internal failures are logged and reported without detail.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	kind := domainErrors.KindOf(err)
	code := domainErrors.Code(err)
	if kind == domainErrors.KindInternal {
		code = i18n.CodeInternal
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDContextKey)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	abortWith(c, statusFor(kind), code)
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWith(c, http.StatusBadRequest, i18n.CodeBadRequest)
}

func abortWith(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Code:    code,
		Message: i18n.Message(middleware.Language(c), code),
	})
}

func localizedReason(c *gin.Context, reason domainErrors.VoucherReason) (string, string) {
	if reason == "" {
		return "", ""
	}
	return string(reason), i18n.Message(middleware.Language(c), string(reason))
}
