package view

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	priceLanguage = language.MustParse("en-IE")
	priceCurrency = currency.EUR
)

const euroSign = "€"

// FormatPrice форматирует цену как "€250,000": евро, без дробной части.
func FormatPrice(amount float64) string {
	p := message.NewPrinter(priceLanguage)
	return euroSign + p.Sprint(number.Decimal(math.Round(amount), number.MaxFractionDigits(0)))
}
