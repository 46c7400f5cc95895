package invoices

import (
	"time"

	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/logger"
)

// FreeDailyExports is the non-pro cap on metered exports per UTC day.
const FreeDailyExports = 3

const toolQuotePDF = "quote_pdf"

// exportsToday counts metered exports since UTC midnight. The cap resets on
// a calendar-day boundary, not a rolling 24h window.
func exportsToday(accountID uint, now time.Time) (int64, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var n int64
	err := db.DB.Model(&Download{}).
		Where("account_id = ? AND tool_key = ? AND created_at >= ?", accountID, toolQuotePDF, dayStart).
		Count(&n).Error
	return n, err
}

// recordDownload meters a successful export. Best effort: a metering write
// failure must not fail a download the user already received.
func recordDownload(accountID uint) {
	d := Download{AccountID: accountID, ToolKey: toolQuotePDF, CreatedAt: time.Now().UTC()}
	if err := db.DB.Create(&d).Error; err != nil {
		logger.Get().Error().Err(err).Uint("account", accountID).Msg("failed to record download")
	}
}
