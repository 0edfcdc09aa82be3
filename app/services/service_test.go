package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/repositories"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

// setupDB opens a fresh in-memory database, migrates the schema, and points
// the global connection at it for the duration of the test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq)

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
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Till One", Email: fmt.Sprintf("till%d@billmate.local", testDBSeq), Role: models.RoleCashier, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, SKU: sku, Price: price, Stock: stock, Category: "test", Active: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func saleCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&n).Error)
	return n
}

// newCheckout returns a checkout service with the clock pinned, so sale
// numbers are deterministic.
func newCheckout(at time.Time) *CheckoutService {
	return &CheckoutService{
		products: repositories.NewProductRepository(),
		sales:    repositories.NewSaleRepository(),
		now:      func() time.Time { return at },
	}
}
