package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/flash"
	"github.com/myriadhero/tea-shop/pkg/view"
)

// RedirectWithFlash answers 302 to location with a one-shot notice. A flash
// that cannot be encoded is dropped; the redirect still happens.
func RedirectWithFlash(c *gin.Context, codec *flash.Codec, location string, kind view.FlashKind, msg string) {
	_ = codec.Write(c, view.Flash{Kind: kind, Message: msg})
	c.Redirect(http.StatusFound, location)
}
