package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/flash"
	"github.com/myriadhero/tea-shop/pkg/view"
)

const CtxKeyFlash = "flash"

// FlashMiddleware moves a pending flash from its cookie into the context.
// Flashes are single use.
func FlashMiddleware(codec *flash.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if f := codec.Take(c); f != nil {
			c.Set(CtxKeyFlash, f)
		}
		c.Next()
	}
}

func GetFlash(c *gin.Context) *view.Flash {
	f, _ := c.Value(CtxKeyFlash).(*view.Flash)
	return f
}
