package profile

import (
	"log"

	"github.com/toolhubapp/toolhub-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&BusinessProfile{}, &Client{}); err != nil {
		log.Fatal("Failed to auto-migrate profile tables: ", err)
	}
}
