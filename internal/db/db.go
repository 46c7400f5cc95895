package db

import (
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the application database. Postgres is used when databaseURL
// is non-empty; otherwise a local SQLite file at sqlitePath (pure-Go driver,
// no cgo toolchain needed anywhere we deploy).
func Connect(databaseURL, sqlitePath string) {
	// Verbose gorm logger to surface slow queries in hosted logs.
	lg := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var (
		d   *gorm.DB
		err error
	)
	if databaseURL != "" {
		d, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{Logger: lg})
	} else {
		d, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{Logger: lg})
	}
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB: ", err)
	}

	if databaseURL != "" {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// SQLite serialises writes; a single connection avoids lock churn.
		sqlDB.SetMaxOpenConns(1)
	}

	DB = d
}

// ConnectTest swaps in an in-memory SQLite database. Intended for tests.
func ConnectTest() {
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatal("Failed to open in-memory database: ", err)
	}
	if sqlDB, err := d.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	DB = d
}
