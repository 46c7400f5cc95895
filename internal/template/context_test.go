package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/toolhubapp/toolhub-backend/internal/profile"
)

func TestBuildFallbacks(t *testing.T) {
	ctx := Build(nil, nil)
	assert.Equal(t, FallbackCompanyName, ctx.Company.Name)
	assert.Equal(t, FallbackAddress, ctx.Company.Address)
	assert.Equal(t, FallbackTaxID, ctx.Company.TaxID)
	assert.Equal(t, FallbackClientName, ctx.Client.Name)
	assert.Equal(t, FallbackCurrency, ctx.Defaults.Currency)
	assert.Equal(t, time.Now().Format("2006-01-02"), ctx.Today)
}

func TestBuildMergesProfileAndClient(t *testing.T) {
	p := &profile.BusinessProfile{
		LegalName:       "Studio Rossi",
		Address:         "Via Roma 1",
		City:            "Milano",
		Zip:             "20121",
		Country:         "IT",
		VATNumber:       "IT12345678901",
		Regime:          "Forfettario",
		DefaultVATRate:  22,
		DefaultCurrency: "USD",
	}
	c := &profile.Client{Name: "ACME Srl", Address: "Via Verdi 9"}

	ctx := Build(p, c)
	assert.Equal(t, "Studio Rossi", ctx.Company.Name)
	assert.Equal(t, "Via Roma 1\nMilano\n20121\nIT", ctx.Company.Address)
	assert.Equal(t, "IT12345678901", ctx.Company.TaxID)
	assert.Equal(t, "ACME Srl", ctx.Client.Name)
	assert.Equal(t, "Via Verdi 9", ctx.Client.Address)
	assert.Equal(t, 22.0, ctx.Defaults.VATRate)
	assert.Equal(t, "USD", ctx.Defaults.Currency)
}

func TestBuildPartialProfileKeepsFallbacks(t *testing.T) {
	ctx := Build(&profile.BusinessProfile{LegalName: "Solo Nome"}, nil)
	assert.Equal(t, "Solo Nome", ctx.Company.Name)
	assert.Equal(t, FallbackAddress, ctx.Company.Address)
	assert.Equal(t, FallbackTaxID, ctx.Company.TaxID)
}

func TestApply(t *testing.T) {
	ctx := Context{
		Company:  Company{Name: "Studio Rossi", TaxID: "IT123"},
		Client:   Party{Name: "ACME"},
		Defaults: Defaults{VATRate: 22, Currency: "EUR", FooterNote: "Grazie"},
		Today:    "2026-08-31",
	}

	cases := map[string]string{
		"Preventivo per {{client.name}}":         "Preventivo per ACME",
		"{{ company.name }} - {{company.taxId}}": "Studio Rossi - IT123",
		"IVA {{defaults.vatRate}}%":              "IVA 22%",
		"Data: {{today}}":                        "Data: 2026-08-31",
		"{{unknown.path}} resta vuoto":           " resta vuoto",
		"{{company.nope}}x":                      "x",
		"senza placeholder":                      "senza placeholder",
		"{{defaults.footerNote}}":                "Grazie",
	}
	for in, want := range cases {
		assert.Equal(t, want, Apply(in, ctx), "input %q", in)
	}
}

func TestApplyRateFormatting(t *testing.T) {
	ctx := Context{Defaults: Defaults{VATRate: 22.5}}
	assert.Equal(t, "22.5", Apply("{{defaults.vatRate}}", ctx))
}
