package view

import (
	"encoding/json"
	"html/template"
)

// AddressDefaults pre-fills the address element.
type AddressDefaults struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CheckoutConfig is injected into the checkout page for the payment script.
type CheckoutConfig struct {
	PublishableKey   string           `json:"publishable_key"`
	ClientSecret     string           `json:"client_secret"`
	UpdateDetailsURL string           `json:"update_details_url"`
	RedirectURL      string           `json:"redirect_success_url"`
	AllowedCountries []string         `json:"allowed_countries"`
	DefaultValues    *AddressDefaults `json:"default_values,omitempty"`
}

// JSON is safe to drop into a <script type="application/json"> block.
func (c CheckoutConfig) JSON() (template.JS, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

type CheckoutPage struct {
	Config        CheckoutConfig
	ConfigJSON    template.JS
	PaymentIntent string
	Email         string
	Lines         []CartLine
	Count         int
	Total         string
}
