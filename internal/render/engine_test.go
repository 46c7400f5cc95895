package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhubapp/toolhub-backend/internal/template"
)

func testContext() template.Context {
	return template.Context{
		Company:  template.Company{Name: "Studio Rossi", Address: "Via Roma 1\nMilano, IT", TaxID: "IT12345678901"},
		Client:   template.Party{Name: "ACME Srl", Address: "Via Verdi 9"},
		Defaults: template.Defaults{VATRate: 22, Currency: "EUR"},
		Today:    "2026-08-31",
	}
}

func TestComputeTotals(t *testing.T) {
	items := []LineItem{
		{Description: "Consulenza", Quantity: 2, UnitPrice: 50},
		{Description: "Trasferta", Quantity: 1, UnitPrice: 30},
	}
	totals := ComputeTotals(items, 22, 0)
	assert.InDelta(t, 130.0, totals.Subtotal, 0.01)
	assert.InDelta(t, 28.6, totals.Tax, 0.01)
	assert.InDelta(t, 158.6, totals.Total, 0.01)
	assert.Zero(t, totals.Discount)
}

func TestComputeTotalsDiscountBeforeTax(t *testing.T) {
	items := []LineItem{{Description: "Servizio", Quantity: 1, UnitPrice: 100}}
	totals := ComputeTotals(items, 22, 10)
	assert.InDelta(t, 100.0, totals.Subtotal, 0.01)
	assert.InDelta(t, 10.0, totals.Discount, 0.01)
	assert.InDelta(t, 19.8, totals.Tax, 0.01)
	assert.InDelta(t, 109.8, totals.Total, 0.01)
}

func TestRenderValidation(t *testing.T) {
	_, err := Render(KindQuote, testContext(), Payload{}, DocNumber())
	assert.ErrorIs(t, err, ErrNoItems)

	items := make([]LineItem, MaxLineItems+1)
	for i := range items {
		items[i] = LineItem{Description: "x", Quantity: 1, UnitPrice: 1}
	}
	_, err = Render(KindQuote, testContext(), Payload{LineItems: items}, DocNumber())
	assert.ErrorIs(t, err, ErrTooManyItems)
}

// pageCount counts page objects in the raw output. The pages tree root also
// carries a /Type /Page prefix, hence the minus one.
func pageCount(out []byte) int {
	return bytes.Count(out, []byte("/Type /Page")) - 1
}

func TestRenderSinglePage(t *testing.T) {
	p := Payload{
		LineItems: []LineItem{{Description: "Consulenza", Quantity: 2, UnitPrice: 50}},
		TaxRate:   22,
	}
	out, err := Render(KindQuote, testContext(), p, "A1B2C3")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, 1, pageCount(out))
}

func TestRenderPaginatesLongTables(t *testing.T) {
	items := make([]LineItem, 60)
	for i := range items {
		items[i] = LineItem{Description: fmt.Sprintf("Voce %d", i+1), Quantity: 1, UnitPrice: 10}
	}
	out, err := Render(KindInvoice, testContext(), Payload{LineItems: items, TaxRate: 22}, "ZZZZZZ")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pageCount(out), 2)
}

func TestRenderNotesGetOwnPage(t *testing.T) {
	p := Payload{
		LineItems: []LineItem{{Description: "Servizio", Quantity: 1, UnitPrice: 10}},
		Notes:     "Pagamento a 30 giorni.",
	}
	out, err := Render(KindQuote, testContext(), p, "A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, 2, pageCount(out))
}

func TestRenderBadLogoStillProduces(t *testing.T) {
	p := Payload{
		LineItems: []LineItem{{Description: "Servizio", Quantity: 1, UnitPrice: 10}},
		Logo:      "data:image/png;base64,not-base64!!",
	}
	out, err := Render(KindQuote, testContext(), p, "A1B2C3")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestClipKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "corto", clip("corto", 58))

	long := strings.Repeat("è", 80)
	got := clip(long, 58)
	assert.True(t, utf8.ValidString(got), "clip must never split a rune")
	assert.Equal(t, strings.Repeat("è", 55)+"...", got)
}

func TestConversionRate(t *testing.T) {
	rate, ok := ConversionRate("EUR", "USD", 0)
	require.True(t, ok)
	assert.InDelta(t, 1.07, rate, 0.0001)

	rate, ok = ConversionRate("EUR", "USD", 2.5)
	require.True(t, ok)
	assert.Equal(t, 2.5, rate)

	_, ok = ConversionRate("EUR", "JPY", 0)
	assert.False(t, ok)

	rate, ok = ConversionRate("EUR", "EUR", 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)
}

func TestFormatMoneyFallback(t *testing.T) {
	assert.Equal(t, "12.30", FormatMoney(12.3, "ZZZ"))
}

func TestDocNumber(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, re, DocNumber())
	}
}
