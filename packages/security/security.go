package security

import "github.com/shopspring/decimal"

// Security describes a tradable instrument. Every field is optional.
// SecurityID is nil when the id is null or absent; an empty string is kept.
type Security struct {
	SecurityID            *string             `json:"PpaSecurityId,omitempty"`
	Name                  string              `json:"name,omitempty"`
	Ticker                string              `json:"ticker,omitempty"`
	Cusip                 string              `json:"cusip,omitempty"`
	Sedol                 string              `json:"sedol,omitempty"`
	Isin                  string              `json:"isin,omitempty"`
	Apir                  string              `json:"apir,omitempty"`
	ProductTypeLevel1Name string              `json:"productTypeLevel1Name,omitempty"`
	ProductTypeLevel6Name string              `json:"productTypeLevel6Name,omitempty"`
	Country               string              `json:"country,omitempty"`
	Currency              string              `json:"currency,omitempty"`
	ExchangeCode          string              `json:"exchangeCode,omitempty"`
	Price                 decimal.NullDecimal `json:"price"`
	PriceCurrency         string              `json:"priceCurrency,omitempty"`
}

// ID returns the security id, or "" when there is none
func (s Security) ID() string {
	if s.SecurityID == nil {
		return ""
	}
	return *s.SecurityID
}

// HasPrice reports whether the service returned a price
func (s Security) HasPrice() bool {
	return s.Price.Valid
}
