// Package render lays out quote and invoice PDFs. Coordinates are in
// points on A4 portrait pages; the layout is fixed rather than flowed,
// with an explicit page break between line-item rows only.
package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math/rand"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/toolhubapp/toolhub-backend/internal/template"
)

type Kind string

const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

// Title is the banner printed at the top of the document.
func (k Kind) Title() string {
	switch k {
	case KindInvoice:
		return "FATTURA"
	default:
		return "PREVENTIVO"
	}
}

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Payload is the client-supplied body of an export or invoice request.
type Payload struct {
	LineItems    []LineItem `json:"line_items"`
	TaxRate      float64    `json:"taxRate"`
	Currency     string     `json:"currency"`
	Discount     float64    `json:"discount"`
	Notes        string     `json:"notes"`
	ConvertTo    string     `json:"convertTo"`
	RateOverride float64    `json:"rateOverride"`
	Logo         string     `json:"logo"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

var (
	ErrNoItems      = errors.New("render: no line items")
	ErrTooManyItems = errors.New("render: too many line items")
)

// MaxLineItems caps document size. Exported so writers that persist payloads
// for later rendering can reject oversized input up front.
const MaxLineItems = 500

// ComputeTotals runs the document arithmetic. Accumulation is unrounded;
// rounding happens once, at formatting time. The discount is a percentage
// of the subtotal, and tax applies to the discounted base.
func ComputeTotals(items []LineItem, taxRate, discountPct float64) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Quantity * it.UnitPrice
	}
	if discountPct > 0 {
		t.Discount = t.Subtotal * discountPct / 100
	}
	taxable := t.Subtotal - t.Discount
	if taxRate > 0 {
		t.Tax = taxable * taxRate / 100
	}
	t.Total = taxable + t.Tax
	return t
}

const docNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DocNumber returns a 6-character uppercase base36 document number.
func DocNumber() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = docNumberAlphabet[rand.Intn(len(docNumberAlphabet))]
	}
	return string(b)
}

// Layout constants. Rows past breakY continue on a fresh page at resumeY;
// a row is never split across pages.
const (
	tableTopY = 200.0
	firstRowY = 226.0
	rowStep   = 18.0
	breakY    = 700.0
	resumeY   = 60.0
)

// Render builds the full PDF in memory and returns its bytes. Callers
// stream the result only after a nil error, so a failed build never leaks
// a partial document.
func Render(kind Kind, ctx template.Context, p Payload, number string) ([]byte, error) {
	if len(p.LineItems) == 0 {
		return nil, ErrNoItems
	}
	if len(p.LineItems) > MaxLineItems {
		return nil, ErrTooManyItems
	}

	code := p.Currency
	if code == "" {
		code = ctx.Defaults.Currency
	}
	taxRate := p.TaxRate
	if taxRate == 0 {
		taxRate = ctx.Defaults.VATRate
	}
	totals := ComputeTotals(p.LineItems, taxRate, p.Discount)

	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 0)
	if footer := strings.TrimSpace(ctx.Defaults.FooterNote); footer != "" {
		pdf.SetFooterFunc(func() {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetTextColor(148, 163, 184)
			pdf.Text(40, 810, tr(footer))
		})
	}
	pdf.AddPage()

	drawLogo(pdf, p.Logo)

	pdf.SetTextColor(30, 58, 138)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(40, 105, tr(kind.Title()))

	pdf.SetTextColor(100, 116, 139)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(400, 50, tr("N. "+number))
	pdf.Text(400, 64, tr("Data: "+ctx.Today))

	drawParty(pdf, tr, 40, "FORNITORE", supplierLines(ctx))
	drawParty(pdf, tr, 300, "CLIENTE", clientLines(ctx))

	pdf.SetDrawColor(203, 213, 225)
	pdf.Line(40, tableTopY, 555, tableTopY)
	drawHeaders(pdf)

	y := firstRowY
	pdf.SetTextColor(15, 23, 42)
	pdf.SetFont("Helvetica", "", 10)
	for _, it := range p.LineItems {
		if y > breakY {
			pdf.AddPage()
			y = resumeY
			drawHeaders(pdf)
			pdf.SetTextColor(15, 23, 42)
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.Text(45, y, tr(clip(it.Description, 58)))
		pdf.Text(300, y, tr(fmtQty(it.Quantity)))
		pdf.Text(360, y, tr(FormatMoney(it.UnitPrice, code)))
		pdf.Text(450, y, tr(FormatMoney(it.Quantity*it.UnitPrice, code)))
		y += rowStep
	}

	y += 30
	if y > breakY {
		pdf.AddPage()
		y = resumeY
	}
	y = drawTotal(pdf, tr, y, "SUBTOTALE", FormatMoney(totals.Subtotal, code), false)
	if totals.Discount > 0 {
		label := "SCONTO (" + fmtQty(p.Discount) + "%)"
		y = drawTotal(pdf, tr, y, label, "-"+FormatMoney(totals.Discount, code), false)
	}
	y = drawTotal(pdf, tr, y, "TASSE ("+fmtQty(taxRate)+"%)", FormatMoney(totals.Tax, code), false)
	y = drawTotal(pdf, tr, y, "TOTALE", FormatMoney(totals.Total, code), true)

	if p.ConvertTo != "" && p.ConvertTo != code {
		if rate, ok := ConversionRate(code, p.ConvertTo, p.RateOverride); ok {
			converted := FormatMoney(totals.Total*rate, p.ConvertTo)
			drawTotal(pdf, tr, y, "TOTALE ("+p.ConvertTo+")", converted, false)
		}
	}

	if notes := strings.TrimSpace(p.Notes); notes != "" {
		pdf.AddPage()
		pdf.SetTextColor(30, 58, 138)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(40, 60, "NOTE")
		pdf.SetTextColor(15, 23, 42)
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetXY(40, 80)
		pdf.MultiCell(515, 16, tr(notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHeaders(pdf *fpdf.Fpdf) {
	pdf.SetTextColor(100, 116, 139)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(45, tableTopY+14, "DESCRIZIONE")
	pdf.Text(300, tableTopY+14, "QTA")
	pdf.Text(360, tableTopY+14, "PREZZO")
	pdf.Text(450, tableTopY+14, "TOTALE")
}

func drawParty(pdf *fpdf.Fpdf, tr func(string) string, x float64, label string, lines []string) {
	pdf.SetTextColor(100, 116, 139)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(x, 130, label)
	pdf.SetTextColor(15, 23, 42)
	pdf.SetFont("Helvetica", "", 10)
	y := 146.0
	for _, line := range lines {
		pdf.Text(x, y, tr(line))
		y += 14
	}
}

func drawTotal(pdf *fpdf.Fpdf, tr func(string) string, y float64, label, value string, emphasize bool) float64 {
	if emphasize {
		pdf.SetTextColor(30, 58, 138)
		pdf.SetFont("Helvetica", "B", 12)
	} else {
		pdf.SetTextColor(15, 23, 42)
		pdf.SetFont("Helvetica", "", 10)
	}
	pdf.Text(360, y, tr(label))
	pdf.Text(450, y, tr(value))
	return y + rowStep
}

func supplierLines(ctx template.Context) []string {
	lines := []string{ctx.Company.Name}
	lines = append(lines, strings.Split(ctx.Company.Address, "\n")...)
	lines = append(lines, "P.IVA "+ctx.Company.TaxID)
	if ctx.Company.Regime != "" {
		lines = append(lines, ctx.Company.Regime)
	}
	return lines
}

func clientLines(ctx template.Context) []string {
	lines := []string{ctx.Client.Name}
	if ctx.Client.Address != "" {
		lines = append(lines, strings.Split(ctx.Client.Address, "\n")...)
	}
	return lines
}

func fmtQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// clip shortens a description to max runes. Counting runes, not bytes, so a
// multi-byte character is never split into an invalid sequence.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// drawLogo places a data-URI image at the top left. Anything that fails to
// decode gets a neutral placeholder block instead of poisoning the document
// with a sticky library error.
func drawLogo(pdf *fpdf.Fpdf, dataURI string) {
	if dataURI == "" {
		return
	}
	const x, y, size = 40.0, 40.0, 42.0
	raw, imgType, err := decodeDataURI(dataURI)
	if err != nil {
		pdf.SetFillColor(226, 232, 240)
		pdf.Rect(x, y, size, size, "F")
		return
	}
	opts := fpdf.ImageOptions{ImageType: imgType}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(raw))
	pdf.ImageOptions("logo", x, y, size, size, false, opts, 0, "")
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.New("not a data URI")
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data URI")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("unsupported data URI encoding")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}
	switch format {
	case "png":
		return raw, "PNG", nil
	case "jpeg":
		return raw, "JPG", nil
	}
	return nil, "", fmt.Errorf("unsupported image format %q", format)
}
