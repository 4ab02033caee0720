package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/cartcookie"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
)

const cartCountKey = "cart_count"

// CartCount puts the number of items in the visitor's cart into the context
// for the header badge. Lookup failures count as an empty cart.
func CartCount(ck *cartcookie.Codec, carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := 0
		if id, ok := ck.GetCartID(c); ok {
			if sum, err := carts.Summarize(c.Request.Context(), id); err == nil {
				n = sum.Count
			}
		}
		c.Set(cartCountKey, n)
		c.Next()
	}
}

func GetCartCount(c *gin.Context) int {
	v, ok := c.Get(cartCountKey)
	if !ok {
		return 0
	}
	n, _ := v.(int)
	return n
}
