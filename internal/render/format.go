package render

import (
	"math"
	"time"

	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/aculich/gcp-billing-watcher/internal/i18n"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"JPY": "¥",
	"EUR": "€",
	"GBP": "£",
}

// FractionDigits returns the number of decimals shown for code.
func FractionDigits(code string) int {
	if code == "JPY" {
		return 0
	}
	return 2
}

// FormatCurrency formats amount with the currency symbol and locale
// grouping. Rounding is half away from zero.
func FormatCurrency(amount float64, code string, lang i18n.Language) string {
	digits := FractionDigits(code)
	scale := math.Pow10(digits)
	rounded := math.Round(amount*scale) / scale

	sign := ""
	if rounded < 0 {
		sign = "-"
	}

	p := message.NewPrinter(lang.Tag())
	digitsText := p.Sprint(number.Decimal(math.Abs(rounded), number.Scale(digits)))

	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	return sign + symbol + digitsText
}

var timestampLayouts = map[i18n.Language]string{
	i18n.English:  "Jan 2, 2006, 3:04:05 PM",
	i18n.Japanese: "2006/1/2 15:04:05",
}

// FormatTimestamp formats t in loc using the layout for lang.
func FormatTimestamp(t time.Time, lang i18n.Language, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	layout, ok := timestampLayouts[lang]
	if !ok {
		layout = timestampLayouts[i18n.English]
	}
	return t.In(loc).Format(layout)
}
