package types

import "github.com/shopspring/decimal"

// Rupiah formats an amount the way the storefront renders prices: no
// fractional digits, since the marketplace trades in whole rupiah.
func Rupiah(amount decimal.Decimal) string {
	return amount.Round(0).String()
}

// GramsToKilograms converts a carrier weight from grams to the kilogram
// figure the quote API expects, rounded up so a parcel is never underquoted.
func GramsToKilograms(grams decimal.Decimal) decimal.Decimal {
	kg := grams.Div(decimal.NewFromInt(1000))
	return kg.RoundCeil(2)
}
