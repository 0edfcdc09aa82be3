package repositories

import (
	"fmt"
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:repositories_test_%d?mode=memory&cache=shared", testDBSeq)

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

func seedProduct(t *testing.T, db *gorm.DB, name, sku string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, SKU: sku, Price: price, Stock: stock, Category: "test", Active: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}
