// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing amounts entered by the user and
// the closed list of display currencies.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a display label for amounts. It never takes part in
// arithmetic and stored amounts are never converted.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// DefaultCurrencyCode is used when no currency is stored or the stored code
// is unknown.
const DefaultCurrencyCode = "USD"

var currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "RUB", Symbol: "₽", Name: "Russian Ruble"},
}

// Currencies returns the selectable currencies, default first.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// LookupCurrency finds a currency by its exact code.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// CurrencyOrDefault returns the currency for code, or the default one.
func CurrencyOrDefault(code string) Currency {
	if c, ok := LookupCurrency(code); ok {
		return c
	}
	c, _ := LookupCurrency(DefaultCurrencyCode)
	return c
}

// Format renders an amount with the currency symbol and two decimals,
// e.g. "$12.50".
func (c Currency) Format(amount decimal.Decimal) string {
	return c.Symbol + FormatAmount(amount)
}

// ParseAmount converts user input to a strictly positive decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Non-numeric input, NaN, infinities, zero and negative values return
// ErrInvalidAmount. The value is kept at the precision it was entered with.
//
// Examples:
//
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
