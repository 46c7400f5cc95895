package invoices

import (
	"log"

	"github.com/toolhubapp/toolhub-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&Invoice{}, &QuoteTemplate{}, &Download{}); err != nil {
		log.Fatal("Failed to auto-migrate invoice tables: ", err)
	}
}
