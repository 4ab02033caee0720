// Package http wires the storefront's gin engine.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/cartcookie"
	"github.com/myriadhero/tea-shop/internal/http/flash"
	"github.com/myriadhero/tea-shop/internal/http/handlers"
	"github.com/myriadhero/tea-shop/internal/http/middleware"
	"github.com/myriadhero/tea-shop/internal/http/render"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/modules/products"
	"github.com/myriadhero/tea-shop/web"
)

type Deps struct {
	Logger   *slog.Logger
	Carts    *cart.Service
	Products *products.Repo
	Orders   *orders.Service
	Provider payments.Provider
	Webhooks *payments.WebhookService

	CookieSecret     []byte
	CookieSecure     bool
	CartTTL          time.Duration
	BaseURL          string
	AllowedCountries []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(render.Templates())

	flashCodec := flash.NewCodec(d.CookieSecret, "flash", d.CookieSecure)
	ck := cartcookie.New(d.CookieSecret, "cart_id", d.CookieSecure, d.CartTTL)

	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.ErrorHandler(d.Logger),
		middleware.Recovery(d.Logger),
	)

	r.GET("/healthz", handlers.Healthz)
	r.StaticFS("/static", http.FS(web.Static()))

	webhooks := handlers.NewWebhookHandler(d.Logger, d.Provider, d.Webhooks)
	r.POST("/webhooks/:provider", webhooks.Handle)

	shop := r.Group("/shop")
	shop.Use(middleware.FlashMiddleware(flashCodec), middleware.CartCount(ck, d.Carts))
	{
		ch := handlers.NewCartHandler(d.Carts, d.Products, flashCodec, ck, d.Logger)
		shop.GET("/cart/", ch.Get)
		shop.POST("/cart/", ch.Post)

		co := handlers.NewCheckoutHandler(d.Orders, d.Provider, flashCodec, ck, d.BaseURL, d.AllowedCountries, d.Logger)
		shop.GET("/checkout/", co.Get)
		shop.POST("/checkout/details/", co.Details)
		shop.GET("/checkout/success/", co.Success)
	}

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/shop/cart/") })
	r.NoRoute(func(c *gin.Context) { render.ErrorPage(c, http.StatusNotFound, "Page not found.") })

	return r
}
