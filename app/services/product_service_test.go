package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProductCreateDefaultsCategory(t *testing.T) {
	setupDB(t)

	svc := NewProductService()
	p, err := svc.Create(requests.ProductRequest{
		Name: "Paper Cups", SKU: "CUP-001", Price: 0.15, Stock: 400,
	})
	require.NoError(t, err)
	assert.Equal(t, "general", p.Category)
	assert.True(t, p.Active)
}

func TestProductUpdateDoesNotTouchStock(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Lid", "LID-001", 0.05, 250)

	svc := NewProductService()
	updated, err := svc.Update(p.ID, requests.ProductRequest{
		Name: "Lid Large", SKU: "LID-001", Price: 0.07, Stock: 9000,
	})
	require.NoError(t, err)

	assert.Equal(t, "Lid Large", updated.Name)
	assert.InDelta(t, 0.07, updated.Price, 0.001)
	assert.Equal(t, 250, productStock(t, db, p.ID))
}

func TestProductDeleteWithoutHistoryRemovesRow(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Sticker", "STK-001", 1.00, 10)

	svc := NewProductService()
	require.NoError(t, svc.Delete(p.ID))

	var n int64
	require.NoError(t, db.Unscoped().Model(&models.Product{}).Where("id = ?", p.ID).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestProductDeleteWithHistoryRetires(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Classic Mug", "CMG-001", 8.00, 10)

	checkout := newCheckout(checkoutDay)
	_, err := checkout.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	svc := NewProductService()
	err = svc.Delete(p.ID)
	assert.ErrorIs(t, err, ErrHasSaleHistory)

	// Row survives, retired; historical receipts keep resolving.
	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.False(t, got.Active)

	// Retired products disappear from Get.
	_, err = svc.Get(p.ID)
	var nfErr *NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestAdjustStockIncrementAndDecrement(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Syrup", "SYR-001", 6.50, 10)

	svc := NewProductService()

	got, err := svc.AdjustStock(p.ID, 15, "delivery")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Stock)

	got, err = svc.AdjustStock(p.ID, -5, "breakage")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Rare Beans", "RAR-001", 30.00, 3)

	svc := NewProductService()
	_, err := svc.AdjustStock(p.ID, -4, "write-off")

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 3, productStock(t, db, p.ID))
}

func TestAdjustStockZeroDeltaRejected(t *testing.T) {
	db := setupDB(t)
	p := seedProduct(t, db, "Napkins", "NAP-001", 0.02, 1000)

	svc := NewProductService()
	_, err := svc.AdjustStock(p.ID, 0, "noop")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestProductListFilters(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, "Espresso Cup", "ECP-001", 3.00, 50)
	seedProduct(t, db, "Espresso Saucer", "ESA-001", 2.00, 50)
	latte := seedProduct(t, db, "Latte Glass", "LGL-001", 4.00, 50)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", latte.ID).
		UpdateColumn("active", false).Error)

	svc := NewProductService()

	products, pagination, err := svc.List("espresso", "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.EqualValues(t, 2, pagination.Total)

	// Retired products never show up.
	products, _, err = svc.List("", "", 1, 10)
	require.NoError(t, err)
	for _, p := range products {
		assert.NotEqual(t, latte.ID, p.ID)
	}
}

func TestProductRetireMissing(t *testing.T) {
	setupDB(t)

	svc := NewProductService()
	err := svc.Retire(404)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.NotErrorIs(t, err, gorm.ErrRecordNotFound)
}
