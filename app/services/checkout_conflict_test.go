package services

import (
	"context"
	"sync"
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// rigDuplicateSaleNumbers installs a create hook that, for the first n sale
// inserts, slips a rival row with the same number into the transaction just
// before the real insert. The unique index then fires exactly as it would
// when a concurrent checkout commits the same number first; the rival rolls
// back with the failed transaction, so a retry starts from a clean slate.
func rigDuplicateSaleNumbers(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	var inRival bool
	err := db.Callback().Create().Before("gorm:create").Register("rig_sale_number_race", func(tx *gorm.DB) {
		if inRival || n == 0 {
			return
		}
		sale, ok := tx.Statement.Dest.(*models.Sale)
		if !ok || sale.SaleNumber == "" {
			return
		}
		n--
		inRival = true
		defer func() { inRival = false }()

		rival := models.Sale{
			SaleNumber:    sale.SaleNumber,
			PaymentMethod: models.PaymentCash,
			UserID:        sale.UserID,
		}
		tx.Session(&gorm.Session{NewDB: true}).Create(&rival)
	})
	require.NoError(t, err)
}

func TestCheckoutRetriesAfterSaleNumberRace(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Raced", "RCE-001", 3.00, 10)

	// Lose the sale-number race exactly once; the second attempt must win.
	rigDuplicateSaleNumbers(t, db, 1)

	svc := newCheckout(checkoutDay)
	sale, err := svc.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	assert.Equal(t, "SAL-20260829-0001", sale.SaleNumber)
	assert.Equal(t, 8, productStock(t, db, p.ID))
	assert.EqualValues(t, 1, saleCount(t, db))
}

func TestCheckoutConflictExhaustionReturnsConflictError(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Contested", "CNT-001", 3.00, 10)

	// Lose the race on every attempt.
	rigDuplicateSaleNumbers(t, db, config.CheckoutMaxAttempts())

	svc := newCheckout(checkoutDay)
	_, err := svc.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
	})

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)

	// Every attempt rolled back whole: no sale rows, stock untouched.
	assert.EqualValues(t, 0, saleCount(t, db))
	assert.Equal(t, 10, productStock(t, db, p.ID))
}

func TestCheckoutConcurrentSalesNeverOversell(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Last Batch", "LBT-001", 2.50, 5)

	svc := newCheckout(checkoutDay)

	// More tills than stock: with 5 units and 8 single-unit checkouts,
	// exactly 5 may succeed and stock must land on zero, never below.
	const tills = 8
	var wg sync.WaitGroup
	errs := make([]error, tills)
	for i := 0; i < tills; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
				Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 1}},
				PaymentMethod: models.PaymentCash,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorAs(t, err, new(*InsufficientStockError), "unexpected failure: %v", err)
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, productStock(t, db, p.ID))
	assert.EqualValues(t, 5, saleCount(t, db))

	// Committed numbers are all distinct.
	var numbers []string
	require.NoError(t, db.Model(&models.Sale{}).Pluck("sale_number", &numbers).Error)
	seen := map[string]bool{}
	for _, n := range numbers {
		assert.False(t, seen[n], "sale number %s issued twice", n)
		seen[n] = true
	}
}
