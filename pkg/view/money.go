package view

import (
	"fmt"
	"strings"
)

// FormatMoney renders cents as a currency string: 1250 AUD -> "A$12.50".
func FormatMoney(cents int, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currencySymbol(strings.ToUpper(currency)), cents/100, cents%100)
}

func currencySymbol(code string) string {
	switch code {
	case "AUD":
		return "A$"
	case "NZD":
		return "NZ$"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}
