package profile

import "time"

// BusinessProfile is the per-account invoicing identity. One row per account,
// maintained by upsert.
type BusinessProfile struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	AccountID         uint      `gorm:"uniqueIndex;not null" json:"-"`
	LegalName         string    `json:"legal_name"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	Zip               string    `json:"zip"`
	Country           string    `json:"country"`
	VATNumber         string    `json:"vat_number"`
	TaxCode           string    `json:"tax_code"`
	Regime            string    `json:"regime"`
	DefaultVATRate    float64   `json:"default_vat_rate"`
	DefaultCurrency   string    `json:"default_currency"`
	DefaultFooterNote string    `json:"default_footer_note"`
	UpdatedAt         time.Time `json:"-"`
}

// Client is a billing counterparty.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"index;not null" json:"-"`
	Name      string    `json:"name"`
	TaxID     string    `json:"vat"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"-"`
}
