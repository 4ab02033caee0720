package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myriadhero/tea-shop/internal/http/cartcookie"
	"github.com/myriadhero/tea-shop/internal/http/flash"
	"github.com/myriadhero/tea-shop/internal/http/middleware"
	"github.com/myriadhero/tea-shop/internal/http/render"
	"github.com/myriadhero/tea-shop/internal/http/validation"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/products"
	"github.com/myriadhero/tea-shop/internal/shared/apperr"
	"github.com/myriadhero/tea-shop/pkg/view"
)

const cartPath = "/shop/cart/"

type CartHandler struct {
	Carts    *cart.Service
	Products *products.Repo
	Flash    *flash.Codec
	CK       *cartcookie.Codec
	Logger   *slog.Logger
}

func NewCartHandler(carts *cart.Service, prods *products.Repo, fl *flash.Codec, ck *cartcookie.Codec, logger *slog.Logger) *CartHandler {
	return &CartHandler{Carts: carts, Products: prods, Flash: fl, CK: ck, Logger: logger}
}

type cartItemForm struct {
	ProductSlug    string `form:"product_slug" binding:"required,max=150"`
	Quantity       int    `form:"quantity" binding:"omitempty,min=1,max=99"`
	SetQuantity    bool   `form:"set_quantity"`
	RemoveFromCart bool   `form:"remove_from_cart"`
}

// GET /shop/cart/
func (h *CartHandler) Get(c *gin.Context) {
	cartID, _ := h.CK.GetCartID(c)
	sum, err := h.Carts.Summarize(c.Request.Context(), cartID)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"count":          sum.Count,
			"subtotal_cents": sum.SubtotalCents,
			"currency":       sum.Currency,
			"lines":          cartLines(sum),
		})
		return
	}

	prods, err := h.Products.ListPublished(c.Request.Context())
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	cards := make([]view.ProductCard, 0, len(prods))
	for _, p := range prods {
		cards = append(cards, view.ProductCard{
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       view.FormatMoney(p.PriceCents, p.Currency),
			InStock:     p.Quantity > 0,
		})
	}

	render.Page(c, http.StatusOK, "cart.html", "Cart", view.CartPage{
		Lines:    cartLines(sum),
		Count:    sum.Count,
		Subtotal: view.FormatMoney(sum.SubtotalCents, sum.Currency),
		Products: cards,
	})
}

// POST /shop/cart/
func (h *CartHandler) Post(c *gin.Context) {
	ctx := c.Request.Context()

	var in cartItemForm
	if err := c.ShouldBind(&in); err != nil {
		fe := validation.FromBindError(err, &in)
		if middleware.WantsJSON(c) {
			formErrors(c, http.StatusBadRequest, fe)
			return
		}
		render.RedirectWithFlash(c, h.Flash, cartPath, view.FlashError, "Could not update the cart.")
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	p, err := h.Products.BySlug(ctx, in.ProductSlug)
	if errors.Is(err, products.ErrNotFound) {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	cartID, hasCart := h.CK.GetCartID(c)

	if in.RemoveFromCart {
		if hasCart {
			deleted, err := h.Carts.Repo().RemoveProduct(ctx, cartID, p.ID)
			if err != nil {
				middleware.Fail(c, apperr.Wrap(err))
				return
			}
			if deleted {
				h.CK.Clear(c)
			}
		}
		h.done(c, view.FlashInfo, p.Name+" removed from your cart.")
		return
	}

	if hasCart {
		if _, err := h.Carts.Repo().Get(ctx, cartID); errors.Is(err, cart.ErrNotFound) {
			hasCart = false
		}
	}
	if !hasCart {
		created, err := h.Carts.Repo().Create(ctx)
		if err != nil {
			middleware.Fail(c, apperr.Wrap(err))
			return
		}
		cartID = created.ID
	}

	if err := h.Carts.Repo().AddProduct(ctx, cartID, p.ID, in.Quantity, in.SetQuantity); err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	h.CK.Set(c, cartID)
	h.Logger.InfoContext(ctx, "cart updated", "cart_id", cartID, "product", p.Slug, "qty", in.Quantity, "set", in.SetQuantity)

	msg := p.Name + " added to your cart."
	if in.SetQuantity {
		msg = p.Name + " quantity updated."
	}
	h.done(c, view.FlashSuccess, msg)
}

func (h *CartHandler) done(c *gin.Context, kind view.FlashKind, msg string) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg})
		return
	}
	render.RedirectWithFlash(c, h.Flash, cartPath, kind, msg)
}

func cartLines(sum cart.Summary) []view.CartLine {
	out := make([]view.CartLine, 0, len(sum.Lines))
	for _, ln := range sum.Lines {
		out = append(out, view.CartLine{
			ProductSlug: ln.ProductSlug,
			Name:        ln.Name,
			Description: ln.Description,
			Quantity:    ln.Quantity,
			UnitPrice:   view.FormatMoney(ln.UnitPriceCents, sum.Currency),
			LineTotal:   view.FormatMoney(ln.LineTotalCents, sum.Currency),
		})
	}
	return out
}
