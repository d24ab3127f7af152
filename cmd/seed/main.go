// Command seed populates a fresh database with the demo coin catalog and
// an admin account so the dashboard and admin panel work out of the box.
package main

import (
	"fmt"
	"os"

	"cryptofolio/internal/config"
	"cryptofolio/internal/database"
	"cryptofolio/internal/logger"
	"cryptofolio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// catalog is the demo coin set shown on the market table.
var catalog = []models.Coin{
	{Symbol: "BTC", Name: "Bitcoin"},
	{Symbol: "ETH", Name: "Ethereum"},
	{Symbol: "BNB", Name: "BNB"},
	{Symbol: "SOL", Name: "Solana"},
	{Symbol: "XRP", Name: "XRP"},
	{Symbol: "ADA", Name: "Cardano"},
	{Symbol: "DOGE", Name: "Dogecoin"},
	{Symbol: "DOT", Name: "Polkadot"},
	{Symbol: "LTC", Name: "Litecoin"},
	{Symbol: "LINK", Name: "Chainlink"},
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	if _, err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	if err := seedCoins(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

// seedCoins inserts any catalog coins not already present.
func seedCoins(db *gorm.DB) error {
	for _, coin := range catalog {
		var count int64
		db.Model(&models.Coin{}).Where("symbol = ?", coin.Symbol).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&coin).Error; err != nil {
			return fmt.Errorf("failed to seed coin %s: %w", coin.Symbol, err)
		}
		logger.Get().Infof("Seeded coin %s (%s)", coin.Symbol, coin.Name)
	}
	return nil
}

// seedAdmin creates the admin account when it does not exist. Credentials
// come from ADMIN_EMAIL / ADMIN_PASSWORD; without them nothing is created.
func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Get().Warn("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Admin",
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	logger.Get().Infof("Seeded admin account %s", email)
	return nil
}
