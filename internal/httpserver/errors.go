package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// writeError maps workflow errors onto HTTP statuses. Conflicts keep their 409
// so the frontend can refetch and retry; other external failures keep the
// remote status when it is a client error and degrade to 502 otherwise.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	var (
		notComplete     *domain.CartNotCompleteError
		notActive       *domain.CartNotActiveError
		paymentNotFound *domain.CartPaymentNotFoundError
		redeemErr       *domain.RedeemDiscountCodeError
		tokenErr        *domain.TokenError
		conflict        *domain.ConcurrentModificationError
		external        *domain.ExternalError
	)

	switch {
	case errors.As(err, &notComplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": notComplete.Message})
	case errors.As(err, &notActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": notActive.Message})
	case errors.As(err, &paymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": paymentNotFound.Message})
	case errors.As(err, &redeemErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": redeemErr.Message, "errorCode": redeemErr.ErrorCode})
	case errors.As(err, &tokenErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": tokenErr.Message})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Message, "currentVersion": conflict.CurrentVersion})
	case errors.As(err, &external):
		status := external.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": external.Message, "errorCode": external.ErrorCode})
	default:
		logger.Printf("action %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
