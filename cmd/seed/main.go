// Seeds a demo account with a saved profile and one client, for local
// frontend work against a fresh database.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/toolhubapp/toolhub-backend/internal/auth"
	"github.com/toolhubapp/toolhub-backend/internal/config"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/invoices"
	"github.com/toolhubapp/toolhub-backend/internal/logger"
	"github.com/toolhubapp/toolhub-backend/internal/profile"
)

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	db.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	auth.Init(cfg)
	profile.Init()
	invoices.Init()

	account, err := auth.Register("demo@toolhub.app", "demo1234", "Demo User", false)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	p := profile.BusinessProfile{
		AccountID:       account.ID,
		LegalName:       "Studio Demo SRL",
		Address:         "Via Esempio 123",
		City:            "Milano",
		Zip:             "20121",
		Country:         "IT",
		VATNumber:       "IT01234567890",
		Regime:          "Regime forfettario",
		DefaultVATRate:  22,
		DefaultCurrency: "EUR",
	}
	if err := db.DB.Create(&p).Error; err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	c := profile.Client{
		AccountID: account.ID,
		Name:      "ACME Srl",
		TaxID:     "IT09876543210",
		Address:   "Via Verdi 9, Roma",
	}
	if err := db.DB.Create(&c).Error; err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded account %d (demo@toolhub.app / demo1234)", account.ID)
}
