package invoices

import "time"

// Invoice stores the document as entered plus the totals frozen at creation
// time, so a later profile edit never changes an issued invoice. Items holds
// the line items as a JSON array.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"index" json:"-"`
	ClientID  uint      `json:"client_id,omitempty"`
	Number    string    `json:"number"`
	Currency  string    `json:"currency"`
	TaxRate   float64   `json:"taxRate"`
	Discount  float64   `json:"discount"`
	Subtotal  float64   `json:"subtotal"`
	Tax       float64   `json:"tax"`
	Total     float64   `json:"total"`
	Notes     string    `json:"notes,omitempty"`
	Items     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// QuoteTemplate is a saved export payload the user can reload by name.
// Payload is kept as the raw JSON that was submitted.
type QuoteTemplate struct {
	ID        uint      `gorm:"primaryKey"`
	AccountID uint      `gorm:"index"`
	Name      string
	Payload   string
	CreatedAt time.Time
}

// Download is one metered tool use, the unit the free-tier daily cap counts.
type Download struct {
	ID        uint `gorm:"primaryKey"`
	AccountID uint `gorm:"index"`
	ToolKey   string
	CreatedAt time.Time
}
