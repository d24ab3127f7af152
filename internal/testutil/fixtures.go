package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cryptofolio/internal/models"
	"cryptofolio/internal/wallet"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates a user with the admin role.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	user.Role = models.RoleAdmin
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test user to admin: %v", err)
	}
	return user
}

// CreateTestCoin creates a catalog coin with a unique symbol.
func CreateTestCoin(t *testing.T, db *gorm.DB) *models.Coin {
	t.Helper()

	n := nextID()
	return CreateTestCoinWithSymbol(t, db, fmt.Sprintf("TST%d", n))
}

// CreateTestCoinWithSymbol creates a catalog coin with the given symbol.
func CreateTestCoinWithSymbol(t *testing.T, db *gorm.DB, symbol string) *models.Coin {
	t.Helper()

	coin := &models.Coin{
		Symbol: symbol,
		Name:   fmt.Sprintf("Test Coin %s", symbol),
	}
	if err := db.Create(coin).Error; err != nil {
		t.Fatalf("failed to create test coin: %v", err)
	}
	return coin
}

// CreateTestTrade appends a ledger row of the given kind and quantity priced
// at unitPrice.
func CreateTestTrade(t *testing.T, db *gorm.DB, userID, symbol string, kind wallet.TradeKind, quantity, unitPrice float64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		Symbol:     symbol,
		Kind:       kind,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: quantity * unitPrice,
		ExecutedAt: time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return tx
}
