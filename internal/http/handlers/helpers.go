package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/middleware"
	"github.com/myriadhero/tea-shop/internal/http/validation"
)

// formErrors answers in the {"errors": {field: [msg]}} shape the checkout
// script understands.
func formErrors(c *gin.Context, status int, fe validation.FieldErrors) {
	c.AbortWithStatusJSON(status, gin.H{"errors": fe.Lists(), "request_id": middleware.GetRequestID(c)})
}

func formError(c *gin.Context, status int, msg string) {
	formErrors(c, status, validation.FieldErrors{"__all__": msg})
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
