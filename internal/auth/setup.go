package auth

import (
	"log"

	"github.com/toolhubapp/toolhub-backend/internal/config"
	"github.com/toolhubapp/toolhub-backend/internal/db"
)

func Init(cfg *config.Config) {
	if err := db.DB.AutoMigrate(&Account{}, &Session{}, &PasswordResetToken{}); err != nil {
		log.Fatal("Failed to auto-migrate auth tables: ", err)
	}

	secureCookies = cfg.Production()
	debugResetTokens = !cfg.Production()
}
