// Package template merges a business profile and a client into the context
// fed to {{dotted.path}} substitution in free-text note fields.
package template

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/toolhubapp/toolhub-backend/internal/logger"
	"github.com/toolhubapp/toolhub-backend/internal/profile"
)

// Fallback literals used when profile fields are missing. These match what
// the quote renderer prints for anonymous users.
const (
	FallbackCompanyName = "La Mia Azienda"
	FallbackAddress     = "Via Esempio 123\nCity, IT"
	FallbackTaxID       = "IT00000000000"
	FallbackClientName  = "Cliente"
	FallbackCurrency    = "EUR"
)

type Company struct {
	Name    string
	Address string
	TaxID   string
	Regime  string
}

type Party struct {
	Name    string
	Address string
}

type Defaults struct {
	VATRate    float64
	Currency   string
	FooterNote string
}

// Context is the read-only merged view handed to the document renderer and
// to placeholder substitution.
type Context struct {
	Company  Company
	Client   Party
	Defaults Defaults
	Today    string
}

// Build merges profile and client into a Context. Pure: no I/O, and nil
// inputs degrade to the documented fallbacks instead of failing.
func Build(p *profile.BusinessProfile, c *profile.Client) Context {
	ctx := Context{
		Company: Company{
			Name:    FallbackCompanyName,
			Address: FallbackAddress,
			TaxID:   FallbackTaxID,
		},
		Client: Party{
			Name: FallbackClientName,
		},
		Defaults: Defaults{
			Currency: FallbackCurrency,
		},
		Today: time.Now().Format("2006-01-02"),
	}

	if p != nil {
		if p.LegalName != "" {
			ctx.Company.Name = p.LegalName
		}
		if addr := joinAddress(p.Address, p.City, p.Zip, p.Country); addr != "" {
			ctx.Company.Address = addr
		}
		if p.VATNumber != "" {
			ctx.Company.TaxID = p.VATNumber
		}
		ctx.Company.Regime = p.Regime
		if p.DefaultVATRate > 0 {
			ctx.Defaults.VATRate = p.DefaultVATRate
		}
		if p.DefaultCurrency != "" {
			ctx.Defaults.Currency = p.DefaultCurrency
		}
		ctx.Defaults.FooterNote = p.DefaultFooterNote
	}
	if c != nil {
		if c.Name != "" {
			ctx.Client.Name = c.Name
		}
		ctx.Client.Address = c.Address
	}
	return ctx
}

func joinAddress(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Apply substitutes every {{dotted.path}} token with the stringified value
// at that path. Unresolvable paths become the empty string, logged but never
// an error. This is deliberately not a template language: no conditionals,
// loops, or escaping.
func Apply(text string, ctx Context) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := resolve(path, ctx)
		if !ok {
			logger.Get().Debug().Str("path", path).Msg("template: unresolved placeholder")
			return ""
		}
		return value
	})
}

// resolve pattern-matches the known context sections rather than reflecting
// over arbitrary structures.
func resolve(path string, ctx Context) (string, bool) {
	parts := strings.SplitN(path, ".", 2)
	if len(parts) == 1 {
		if strings.EqualFold(parts[0], "today") {
			return ctx.Today, true
		}
		return "", false
	}

	section, field := strings.ToLower(parts[0]), strings.ToLower(parts[1])
	switch section {
	case "company":
		switch field {
		case "name":
			return ctx.Company.Name, true
		case "address":
			return ctx.Company.Address, true
		case "taxid":
			return ctx.Company.TaxID, true
		case "regime":
			return ctx.Company.Regime, true
		}
	case "client":
		switch field {
		case "name":
			return ctx.Client.Name, true
		case "address":
			return ctx.Client.Address, true
		}
	case "defaults":
		switch field {
		case "vatrate":
			return strconv.FormatFloat(ctx.Defaults.VATRate, 'f', -1, 64), true
		case "currency":
			return ctx.Defaults.Currency, true
		case "footernote":
			return ctx.Defaults.FooterNote, true
		}
	}
	return "", false
}
