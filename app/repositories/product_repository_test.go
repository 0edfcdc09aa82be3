package repositories

import (
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDecrementStockGuard(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Beans", "BNS-001", 12.00, 5)

	repo := NewProductRepository()

	// Down to exactly zero is allowed.
	require.NoError(t, repo.DecrementStock(p.ID, 5))
	got, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	// One more unit must fail and leave stock untouched.
	err = repo.DecrementStock(p.ID, 1)
	require.ErrorIs(t, err, ErrStockConflict)
	got, err = repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestDecrementStockUnknownProduct(t *testing.T) {
	setupDB(t)

	repo := NewProductRepository()
	err := repo.DecrementStock(9999, 1)
	assert.ErrorIs(t, err, ErrStockConflict)
}

func TestIncrementStock(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Beans", "BNS-002", 12.00, 2)

	repo := NewProductRepository()
	require.NoError(t, repo.IncrementStock(p.ID, 8))

	got, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestFindByIDExcludesRetired(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Retired Roast", "RET-001", 9.00, 4)

	repo := NewProductRepository()
	require.NoError(t, repo.Retire(p.ID))

	_, err := repo.FindByID(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Retiring twice reports not found — the active row is gone.
	err = repo.Retire(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHasSaleHistory(t *testing.T) {
	db := setupDB(t)
	sold := seedProduct(t, db, "Sold Once", "SLD-001", 4.00, 10)
	unsold := seedProduct(t, db, "Never Sold", "NSL-001", 4.00, 10)

	sale := models.Sale{
		SaleNumber: "SAL-20260829-0001", Total: 4, FinalAmount: 4,
		PaymentMethod: models.PaymentCash, UserID: 1,
		Items: []models.SaleItem{{ProductID: sold.ID, Quantity: 1, Price: 4}},
	}
	require.NoError(t, db.Create(&sale).Error)

	repo := NewProductRepository()

	has, err := repo.HasSaleHistory(sold.ID)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasSaleHistory(unsold.ID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSearchPaginatesAndFilters(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, "Arabica Dark", "ARA-001", 11.00, 10)
	seedProduct(t, db, "Arabica Light", "ARA-002", 11.00, 10)
	seedProduct(t, db, "Robusta", "ROB-001", 8.00, 10)
	mug := seedProduct(t, db, "Mug", "MUG-001", 6.00, 10)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", mug.ID).
		UpdateColumn("category", "merch").Error)

	repo := NewProductRepository()

	products, pagination, err := repo.Search("arabica", "", 1, 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.EqualValues(t, 2, pagination.Total)
	assert.Equal(t, 2, pagination.Pages)
	assert.True(t, pagination.HasNext)

	products, _, err = repo.Search("", "merch", 1, 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, mug.ID, products[0].ID)

	// SKU matches too.
	products, _, err = repo.Search("ROB", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Robusta", products[0].Name)
}

func TestLowStockOrdering(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, "Plenty", "PLN-001", 1.00, 50)
	mid := seedProduct(t, db, "Mid", "MID-001", 1.00, 7)
	low := seedProduct(t, db, "Low", "LOW-001", 1.00, 2)

	repo := NewProductRepository()
	products, err := repo.LowStock(10)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, low.ID, products[0].ID)
	assert.Equal(t, mid.ID, products[1].ID)
}
