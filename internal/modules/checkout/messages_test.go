package checkout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

func TestServerErrorMessage(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"errors":"Cart is empty."}`, "Cart is empty."},
		{`{"errors":["a","b"]}`, "a b"},
		{`{"errors":{"email":["Enter a valid email address."],"__all__":["Order is no longer pending."]}}`,
			"Order is no longer pending. email: Enter a valid email address."},
		{`{"errors":{"name":[{"message":"This field is required.","code":"required"}]}}`, "name: This field is required."},
		{`{"errors":{"name":[]}}`, MsgServerGeneric},
		{`{"errors":null}`, MsgServerGeneric},
		{`{"errors":""}`, MsgServerGeneric},
		{`[1,2]`, MsgServerGeneric},
		{`nope`, MsgServerGeneric},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ServerErrorMessage([]byte(tc.body)), tc.body)
	}
}

func TestConfirmationMessage(t *testing.T) {
	card := &payments.ConfirmError{Type: payments.ErrorTypeCard, Message: "Your card has insufficient funds."}
	assert.Equal(t, "Your card has insufficient funds.", ConfirmationMessage(card))
	assert.Equal(t, "Your card has insufficient funds.", ConfirmationMessage(fmt.Errorf("confirm: %w", card)))
	assert.Equal(t, MsgConfirmGeneric, ConfirmationMessage(&payments.ConfirmError{Type: "rate_limit_error", Message: "slow down"}))
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Payment succeeded!", StatusMessage("succeeded"))
	assert.Equal(t, "Something went wrong.", StatusMessage(""))
}
