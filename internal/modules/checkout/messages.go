package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

const (
	MsgAddressIncomplete = "Address is incomplete."
	MsgServerGeneric     = "An unexpected error occurred. Please try refreshing the page."
	MsgConfirmGeneric    = "An unexpected error occurred."

	MsgSucceeded     = "Payment succeeded!"
	MsgProcessing    = "Your payment is processing."
	MsgTryAgain      = "Your payment was not successful, please try again."
	MsgSomethingWent = "Something went wrong."
)

// StatusMessage maps a payment intent status to the text shown after the
// redirect back from the payments page.
func StatusMessage(status string) string {
	switch status {
	case payments.StatusSucceeded:
		return MsgSucceeded
	case payments.StatusProcessing:
		return MsgProcessing
	case payments.StatusRequiresPaymentMethod:
		return MsgTryAgain
	default:
		return MsgSomethingWent
	}
}

// ServerErrorMessage turns a rejected details-update body into display text.
// Anything other than a JSON object with an "errors" field yields the
// generic retry message.
func ServerErrorMessage(body []byte) string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 || string(payload.Errors) == "null" {
		return MsgServerGeneric
	}
	if msg := formatErrors(payload.Errors); msg != "" {
		return msg
	}
	return MsgServerGeneric
}

// formatErrors accepts the shapes servers commonly send: a string, a list of
// strings, or an object of field -> string | []string.
func formatErrors(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(flatten(list), " ")
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs := flatten([]any{fields[k]})
			if len(msgs) == 0 {
				continue
			}
			text := strings.Join(msgs, " ")
			if k == "__all__" || k == "" {
				parts = append(parts, text)
				continue
			}
			parts = append(parts, k+": "+text)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func flatten(in []any) []string {
	var out []string
	for _, v := range in {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case []any:
			out = append(out, flatten(t)...)
		case map[string]any:
			// {"message": "...", "code": "..."}
			if m, ok := t["message"].(string); ok && m != "" {
				out = append(out, m)
			}
		case nil:
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

// ConfirmationMessage maps an immediate confirmation failure to display text.
// Only card and validation errors are shown verbatim.
func ConfirmationMessage(err error) string {
	var ce *payments.ConfirmError
	if errors.As(err, &ce) && ce.CustomerFacing() {
		return ce.Message
	}
	return MsgConfirmGeneric
}
