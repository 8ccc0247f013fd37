package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_commerce/internal/apperror"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "kind"} for err. Internal causes are logged
// and hidden from the caller.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	msg := apperror.MessageOf(err)
	if kind == apperror.KindInternal {
		logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		msg = "internal error"
	}
	c.JSON(statusFor(kind), gin.H{"error": msg, "kind": kind.String()})
}

func badRequest(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Warn("invalid request", zap.String("request_id", requestID(c)), zap.String("reason", msg), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "kind": apperror.KindValidation.String()})
}
