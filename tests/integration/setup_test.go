package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cryptofolio/internal/handlers"
	"cryptofolio/internal/logger"
	"cryptofolio/internal/middleware"
	"cryptofolio/internal/models"
	"cryptofolio/internal/prices"
	"cryptofolio/internal/services"
	"cryptofolio/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Coin{},
		&models.Transaction{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestFetcher builds a fetcher over the given sources with retries
// driven synchronously and the cache effectively disabled, so a test can
// change the stub quote server's price between requests.
func newTestFetcher(sources ...prices.Source) *prices.Fetcher {
	return prices.NewFetcher(sources, prices.FetcherOptions{
		CacheTTL:    time.Nanosecond,
		BackoffBase: time.Millisecond,
		Generator:   prices.NewGenerator(1),
		Sleep:       func(ctx context.Context, d time.Duration) {},
	})
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and the given live quote sources.
func setupApp(t *testing.T, sources ...prices.Source) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	fetcher := newTestFetcher(sources...)

	// Services
	userService := services.NewUserService(db)
	coinService := services.NewCoinService(db, fetcher)
	ledgerService := services.NewLedgerService(db, coinService, fetcher)
	walletService := services.NewWalletService(ledgerService, fetcher)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	coinHandler := handlers.NewCoinHandler(coinService)
	priceHandler := handlers.NewPriceHandler(fetcher)
	orderHandler := handlers.NewOrderHandler(ledgerService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(userService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/coins", coinHandler.GetMarket)
	protected.GET("/prices", priceHandler.GetPrices)
	protected.GET("/prices/:symbol", priceHandler.GetPrice)

	orders := protected.Group("/orders")
	orders.POST("/buy", orderHandler.Buy)
	orders.POST("/sell", orderHandler.Sell)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.GET("/export", transactionHandler.Export)

	protected.GET("/wallet", walletHandler.GetWallet)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", adminHandler.ListUsers)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	return &testApp{DB: db, Router: router}
}

// quoteServer is a stub upstream quote API whose price can be changed
// between requests.
type quoteServer struct {
	*httptest.Server

	mu       sync.Mutex
	price    float64
	previous float64
	status   int
	requests atomic.Int64
}

// newQuoteServer starts a stub serving GET /price?symbol=X with the given
// price and no 24h history. The server is closed when the test ends.
func newQuoteServer(t *testing.T, price float64) *quoteServer {
	t.Helper()

	qs := &quoteServer{price: price, status: http.StatusOK}
	qs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		qs.requests.Add(1)
		qs.mu.Lock()
		price, previous, status := qs.price, qs.previous, qs.status
		qs.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"price":%v,"previousPrice":%v}`, price, previous)
	}))
	t.Cleanup(qs.Close)
	return qs
}

// setPrice updates the stub's current and previous price.
func (qs *quoteServer) setPrice(price, previous float64) {
	qs.mu.Lock()
	qs.price, qs.previous = price, previous
	qs.mu.Unlock()
}

// setStatus makes the stub answer every request with the given HTTP status.
func (qs *quoteServer) setStatus(status int) {
	qs.mu.Lock()
	qs.status = status
	qs.mu.Unlock()
}

// seedCoin inserts a catalog entry directly.
func (app *testApp) seedCoin(t *testing.T, symbol, name string) {
	t.Helper()
	if err := app.DB.Create(&models.Coin{Symbol: symbol, Name: name}).Error; err != nil {
		t.Fatalf("failed to seed coin %s: %v", symbol, err)
	}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// loginUser logs in and returns the token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}

// promoteToAdmin flips a user's role in the database. The caller must log
// in again afterwards to get a token carrying the admin role.
func (app *testApp) promoteToAdmin(t *testing.T, userID string) {
	t.Helper()
	err := app.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", models.RoleAdmin).Error
	if err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
}
