package render

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.Italian)

// FormatMoney renders an amount with its currency symbol. Codes the ISO
// table doesn't know fall back to the embedded symbol map and a plain
// two-decimal figure.
func FormatMoney(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return symbolFor(code) + strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return moneyPrinter.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
