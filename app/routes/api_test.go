package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/routes"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/shashiranjanraj/billmate/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupAPI(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:routes_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Sale{}, &models.SaleItem{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close() //nolint:errcheck
	})

	r := router.New()
	routes.RegisterAPI(r)
	return r.Handler(), db
}

type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func registerAndLogin(t *testing.T, h http.Handler, email, role string) string {
	t.Helper()

	rec, _ := do(t, h, http.MethodPost, "/api/register", "", map[string]interface{}{
		"name": "Staff Member", "email": email, "password": "secret12345", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, h, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email": email, "password": "secret12345",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestHealthz(t *testing.T) {
	h, _ := setupAPI(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthRequiredOnStaffRoutes(t *testing.T) {
	h, _ := setupAPI(t)

	rec, _ := do(t, h, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogWritesAreAdminOnly(t *testing.T) {
	h, _ := setupAPI(t)
	cashier := registerAndLogin(t, h, "cashier@billmate.local", "cashier")

	rec, _ := do(t, h, http.MethodPost, "/api/products", cashier, map[string]interface{}{
		"name": "Blocked", "sku": "BLK-001", "price": 1.0, "stock": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckoutFlowEndToEnd(t *testing.T) {
	h, db := setupAPI(t)
	admin := registerAndLogin(t, h, "admin@billmate.local", "admin")

	// Create a product through the API.
	rec, env := do(t, h, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "House Blend 250g", "sku": "HSB-250", "price": 7.50, "stock": 10,
		"category": "beverages",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))
	require.NotZero(t, product.ID)

	// Sell four units with a discount and tax.
	rec, env = do(t, h, http.MethodPost, "/api/sales", admin, map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": product.ID, "quantity": 4}},
		"payment_method": "CARD",
		"discount_pct":   10,
		"tax_pct":        5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale models.Sale
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Regexp(t, `^SAL-\d{8}-\d{4}$`, sale.SaleNumber)
	assert.InDelta(t, 30.00, sale.Total, 0.001)
	assert.InDelta(t, 3.00, sale.Discount, 0.001)
	assert.InDelta(t, 1.35, sale.Tax, 0.001)
	assert.InDelta(t, 28.35, sale.FinalAmount, 0.001)

	var left models.Product
	require.NoError(t, db.First(&left, product.ID).Error)
	assert.Equal(t, 6, left.Stock)

	// Receipt for the committed sale.
	rec, env = do(t, h, http.MethodGet, fmt.Sprintf("/api/sales/%d", sale.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var receipt struct {
		SaleNumber string `json:"sale_number"`
		Lines      []struct {
			SKU      string `json:"sku"`
			Quantity int    `json:"quantity"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.Equal(t, sale.SaleNumber, receipt.SaleNumber)
	require.Len(t, receipt.Lines, 1)
	assert.Equal(t, "HSB-250", receipt.Lines[0].SKU)

	// Daily report reflects the sale.
	rec, env = do(t, h, http.MethodGet, "/api/reports/today", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Count int64   `json:"count"`
		Net   float64 `json:"net"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.EqualValues(t, 1, summary.Count)
	assert.InDelta(t, 28.35, summary.Net, 0.001)
}

func TestCheckoutInsufficientStockResponse(t *testing.T) {
	h, db := setupAPI(t)
	admin := registerAndLogin(t, h, "admin2@billmate.local", "admin")

	product := models.Product{Name: "Scarce", SKU: "SCR-001", Price: 2.00, Stock: 3, Category: "test", Active: true}
	require.NoError(t, db.Create(&product).Error)

	rec, env := do(t, h, http.MethodPost, "/api/sales", admin, map[string]interface{}{
		"items":          []map[string]interface{}{{"product_id": product.ID, "quantity": 5}},
		"payment_method": "CASH",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Insufficient stock", env.Message)

	var lines []struct {
		ProductID uint `json:"product_id"`
		Requested int  `json:"requested"`
		Available int  `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Errors, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, product.ID, lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Requested)
	assert.Equal(t, 3, lines[0].Available)

	// Stock untouched, no sale row.
	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 3, after.Stock)
	var n int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestCheckoutValidationResponse(t *testing.T) {
	h, _ := setupAPI(t)
	admin := registerAndLogin(t, h, "admin3@billmate.local", "admin")

	rec, env := do(t, h, http.MethodPost, "/api/sales", admin, map[string]interface{}{
		"items":          []map[string]interface{}{},
		"payment_method": "CASH",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Errors, &fields))
	assert.Contains(t, fields, "items")
}

func TestStockAdjustmentEndpoints(t *testing.T) {
	h, db := setupAPI(t)
	admin := registerAndLogin(t, h, "admin4@billmate.local", "admin")

	product := models.Product{Name: "Adjusted", SKU: "ADJ-001", Price: 1.00, Stock: 10, Category: "test", Active: true}
	require.NoError(t, db.Create(&product).Error)

	rec, _ := do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/stock/increment", product.ID), admin,
		map[string]interface{}{"quantity": 5, "reason": "delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/products/%d/stock/decrement", product.ID), admin,
		map[string]interface{}{"quantity": 20, "reason": "write-off"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var after models.Product
	require.NoError(t, db.First(&after, product.ID).Error)
	assert.Equal(t, 15, after.Stock)
}
