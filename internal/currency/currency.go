package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCode is the storefront's pricing base. Catalog prices are stored in it
// and every multiplier in a rate table is relative to it.
const BaseCode = "USD"

// Currency is one storefront display currency. Multiplier is relative to the
// base; Luxury marks the Gulf currencies highlighted in the currency picker.
type Currency struct {
	Code       string          `json:"code"`
	Symbol     string          `json:"symbol"`
	Flag       string          `json:"flag"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Luxury     bool            `json:"luxury"`
}

// RateTable is a snapshot of conversion multipliers with its fetch time.
// rate[base] = 1 by definition.
type RateTable struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Rate returns the multiplier for code, treating the base as 1.
func (t *RateTable) Rate(code string) (decimal.Decimal, bool) {
	if code == t.Base {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t.Rates[code]
	return rate, ok
}

// Age reports how long ago the table was fetched.
func (t *RateTable) Age(now time.Time) time.Duration {
	return now.Sub(t.FetchedAt)
}

// seedCurrencies is the bundled offline default. The remote table is
// authoritative once fetched; these multipliers only serve startup and
// no-remote deployments.
var seedCurrencies = []Currency{
	{Code: "USD", Symbol: "$", Flag: "\U0001F1FA\U0001F1F8", Multiplier: decimal.RequireFromString("1")},
	{Code: "EUR", Symbol: "€", Flag: "\U0001F1EA\U0001F1FA", Multiplier: decimal.RequireFromString("0.92")},
	{Code: "GBP", Symbol: "£", Flag: "\U0001F1EC\U0001F1E7", Multiplier: decimal.RequireFromString("0.79")},
	{Code: "AED", Symbol: "د.إ", Flag: "\U0001F1E6\U0001F1EA", Multiplier: decimal.RequireFromString("3.67"), Luxury: true},
	{Code: "SAR", Symbol: "ر.س", Flag: "\U0001F1F8\U0001F1E6", Multiplier: decimal.RequireFromString("3.75"), Luxury: true},
	{Code: "QAR", Symbol: "ر.ق", Flag: "\U0001F1F6\U0001F1E6", Multiplier: decimal.RequireFromString("3.64"), Luxury: true},
	{Code: "KWD", Symbol: "د.ك", Flag: "\U0001F1F0\U0001F1FC", Multiplier: decimal.RequireFromString("0.31"), Luxury: true},
	{Code: "BHD", Symbol: "د.ب", Flag: "\U0001F1E7\U0001F1ED", Multiplier: decimal.RequireFromString("0.38"), Luxury: true},
	{Code: "OMR", Symbol: "ر.ع", Flag: "\U0001F1F4\U0001F1F2", Multiplier: decimal.RequireFromString("0.38"), Luxury: true},
	{Code: "EGP", Symbol: "ج.م", Flag: "\U0001F1EA\U0001F1EC", Multiplier: decimal.RequireFromString("48.50")},
}

// SeedCurrencies returns a copy of the bundled currency list.
func SeedCurrencies() []Currency {
	out := make([]Currency, len(seedCurrencies))
	copy(out, seedCurrencies)
	return out
}

func seedTable(fetchedAt time.Time) *RateTable {
	rates := make(map[string]decimal.Decimal, len(seedCurrencies))
	for _, c := range seedCurrencies {
		rates[c.Code] = c.Multiplier
	}
	return &RateTable{Base: BaseCode, Rates: rates, FetchedAt: fetchedAt}
}
