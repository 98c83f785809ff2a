package client

import (
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shoplink/internal/model"
)

// InitDBClient opens the relational store. MySQL DSNs are used in
// deployment; anything else (file path or :memory:) falls back to sqlite,
// which is what local dev and tests run on.
func InitDBClient(databaseURL string) *gorm.DB {
	var dialector gorm.Dialector
	if strings.Contains(databaseURL, "@tcp(") {
		dialector = mysql.Open(databaseURL)
	} else {
		dialector = sqlite.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		log.Fatal(err)
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Shop{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.SellerWallet{},
		&model.WalletTransaction{},
		&model.RedemptionCode{},
		&model.Subscription{},
		&model.PaymentProof{},
	)
}
