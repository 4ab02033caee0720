package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/myriadhero/tea-shop/internal/mailer"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/pkg/view"
)

// Receipts sends order receipts once an order is paid.
type Receipts struct {
	mailer   mailer.Service
	repo     *orders.Repo
	from     string
	fromName string
	logger   *slog.Logger
}

func NewReceipts(m mailer.Service, repo *orders.Repo, from, fromName string) *Receipts {
	return &Receipts{mailer: m, repo: repo, from: from, fromName: fromName, logger: slog.Default()}
}

func (r *Receipts) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// SendOrderPaid is meant for payments.WebhookService.OnPaid: failures are
// logged, never returned, because the payment is already recorded.
func (r *Receipts) SendOrderPaid(ctx context.Context, orderID string) {
	if err := r.send(ctx, orderID); err != nil {
		r.logger.ErrorContext(ctx, "receipt email failed", "order_id", orderID, "err", err)
		return
	}
	r.logger.InfoContext(ctx, "receipt email sent", "order_id", orderID)
}

func (r *Receipts) send(ctx context.Context, orderID string) error {
	o, items, err := r.repo.GetWithItems(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Email == "" {
		return fmt.Errorf("order %s has no email", orderID)
	}
	msg, err := BuildReceipt(o, items)
	if err != nil {
		return err
	}
	msg.From = r.from
	msg.FromName = r.fromName
	return r.mailer.Send(ctx, msg)
}

type receiptLine struct {
	Name     string
	Quantity int
	Total    string
}

type receiptData struct {
	OrderID string
	Name    string
	Lines   []receiptLine
	Total   string
	Address []string
}

var receiptHTML = template.Must(template.New("receipt").Parse(`<html>
  <body style="font-family: sans-serif;">
    <h2>Thanks for your order</h2>
    <p>Hi {{.Name}}, we have received your payment.</p>
    <p><strong>Order:</strong> #{{.OrderID}}</p>
    <table>
      {{range .Lines}}<tr><td>{{.Name}}</td><td>&times; {{.Quantity}}</td><td>{{.Total}}</td></tr>
      {{end}}
    </table>
    <p><strong>Total:</strong> {{.Total}}</p>
    {{if .Address}}<p>Shipping to:<br>{{range .Address}}{{.}}<br>{{end}}</p>{{end}}
  </body>
</html>
`))

// BuildReceipt renders the receipt for a paid order; sender fields are left empty.
func BuildReceipt(o orders.Order, items []orders.OrderItem) (mailer.Email, error) {
	d := receiptData{OrderID: o.ID, Total: view.FormatMoney(o.AmountCents, o.Currency)}
	if a := o.Address; a != nil {
		d.Name = a.Name
		for _, ln := range []string{a.Line1, a.Line2, strings.TrimSpace(a.City + " " + a.State + " " + a.PostalCode), a.Country} {
			if ln != "" {
				d.Address = append(d.Address, ln)
			}
		}
	}
	if d.Name == "" {
		d.Name = "there"
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\nWe have received your payment for order #%s.\n\n", d.Name, o.ID)
	for _, it := range items {
		ln := receiptLine{Name: it.ProductName, Quantity: it.Quantity, Total: view.FormatMoney(it.LineTotalCents, o.Currency)}
		d.Lines = append(d.Lines, ln)
		fmt.Fprintf(&text, "  %s x %d  %s\n", ln.Name, ln.Quantity, ln.Total)
	}
	fmt.Fprintf(&text, "\nTotal: %s\n", d.Total)
	if len(d.Address) > 0 {
		fmt.Fprintf(&text, "\nShipping to:\n  %s\n", strings.Join(d.Address, "\n  "))
	}

	var html bytes.Buffer
	if err := receiptHTML.Execute(&html, d); err != nil {
		return mailer.Email{}, err
	}
	return mailer.Email{
		To:       []string{o.Email},
		Subject:  "Your Tea Shop receipt #" + shortID(o.ID),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
