// Package flash carries one-shot notices across a redirect in a signed cookie.
package flash

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/signedcookie"
	"github.com/myriadhero/tea-shop/pkg/view"
)

var ErrInvalid = errors.New("invalid flash cookie")

// maxAge only has to cover one redirect.
const maxAge = 2 * time.Minute

type Codec struct {
	CookieName string
	Secure     bool
	signer     signedcookie.Signer
}

func NewCodec(secret []byte, cookieName string, secure bool) *Codec {
	return &Codec{CookieName: cookieName, Secure: secure, signer: signedcookie.New(secret)}
}

func (c *Codec) Encode(f view.Flash) (string, error) {
	return c.signer.Seal(f)
}

func (c *Codec) Decode(v string) (*view.Flash, error) {
	var f view.Flash
	if err := c.signer.Open(v, &f); err != nil {
		return nil, ErrInvalid
	}
	if strings.TrimSpace(f.Message) == "" {
		return nil, ErrInvalid
	}
	return &f, nil
}

func (c *Codec) CookieMaxAge() int { return int(maxAge.Seconds()) }

// Write queues f for the next page the browser loads.
func (c *Codec) Write(ctx *gin.Context, f view.Flash) error {
	v, err := c.Encode(f)
	if err != nil {
		return err
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, v, c.CookieMaxAge(), "/", "", c.Secure, true)
	return nil
}

// Take reads and clears the pending flash. An invalid cookie is cleared too.
func (c *Codec) Take(ctx *gin.Context) *view.Flash {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return nil
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.Secure, true)
	f, err := c.Decode(v)
	if err != nil {
		return nil
	}
	return f
}
