// Package cartcookie keeps the anonymous visitor's cart id, and an optional
// saved shipping address, in signed cookies.
package cartcookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/signedcookie"
	"github.com/myriadhero/tea-shop/pkg/view"
)

var ErrInvalid = errors.New("invalid cart cookie")

const (
	addressCookie = "saved_address"
	addressTTL    = 365 * 24 * time.Hour
	defaultTTL    = 30 * 24 * time.Hour
)

type Codec struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
	signer     signedcookie.Signer
}

func New(secret []byte, name string, secure bool, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Codec{CookieName: name, Secure: secure, TTL: ttl, signer: signedcookie.New(secret)}
}

func (c *Codec) Encode(cartID string) string { return c.signer.Sign(cartID) }

func (c *Codec) Decode(v string) (string, error) {
	id, err := c.signer.Verify(v)
	if err != nil {
		return "", ErrInvalid
	}
	return id, nil
}

// GetCartID reads the cart cookie. A forged or stale value is cleared.
func (c *Codec) GetCartID(ctx *gin.Context) (string, bool) {
	v, err := ctx.Cookie(c.CookieName)
	if err != nil || v == "" {
		return "", false
	}
	id, err := c.Decode(v)
	if err != nil {
		c.Clear(ctx)
		return "", false
	}
	return id, true
}

func (c *Codec) Set(ctx *gin.Context, cartID string) {
	c.write(ctx, c.CookieName, c.Encode(cartID), c.TTL)
}

func (c *Codec) Clear(ctx *gin.Context) {
	c.write(ctx, c.CookieName, "", -1)
}

// SetAddress remembers a shipping address for the next checkout.
func (c *Codec) SetAddress(ctx *gin.Context, a view.AddressDefaults) error {
	v, err := c.signer.Seal(a)
	if err != nil {
		return err
	}
	c.write(ctx, addressCookie, v, addressTTL)
	return nil
}

func (c *Codec) GetAddress(ctx *gin.Context) (*view.AddressDefaults, bool) {
	v, err := ctx.Cookie(addressCookie)
	if err != nil || v == "" {
		return nil, false
	}
	var a view.AddressDefaults
	if err := c.signer.Open(v, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *Codec) write(ctx *gin.Context, name, value string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, maxAge, "/", "", c.Secure, true)
}
