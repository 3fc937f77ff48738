package model

import "time"

// Business is a ledger grouping transactions under one name and currency.
type Business struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"lastUpdated"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency,omitempty"` // ISO code, e.g. USD, GHS, EUR
}

// CurrencySymbol returns the display symbol for the business currency.
func (b Business) CurrencySymbol() string {
	return CurrencySymbol(b.Currency)
}

// CurrencySymbol maps an ISO currency code to its display symbol.
// Unknown or empty codes fall back to the dollar sign.
func CurrencySymbol(code string) string {
	switch code {
	case "GHS":
		return "₵"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return "$"
	}
}
