package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"glalex-shop/internal/domain"
	"glalex-shop/internal/service/account"
	"glalex-shop/internal/service/order"
)

// fail maps service errors onto HTTP statuses in one place so every
// handler reports the same way.
func fail(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, domain.ErrOrderTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "order already taken"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrEmptyBody):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message body is empty"})
	case errors.Is(err, account.ErrInvalidCredentials), errors.Is(err, account.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, order.ErrUnpaid):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "order not paid"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
