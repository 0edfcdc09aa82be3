package services

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/repositories"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReports(at time.Time) *ReportService {
	return &ReportService{
		sales: repositories.NewSaleRepository(),
		now:   func() time.Time { return at },
	}
}

func TestTodaySummaryAggregates(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	coffee := seedProduct(t, db, "Coffee", "RCF-001", 10.00, 100)
	tea := seedProduct(t, db, "Tea", "RTE-001", 5.00, 100)

	checkout := newCheckout(checkoutDay)
	_, err := checkout.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: coffee.ID, Quantity: 2}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	_, err = checkout.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: tea.ID, Quantity: 3}},
		PaymentMethod: models.PaymentCard,
		DiscountPct:   20,
	})
	require.NoError(t, err)

	reports := newReports(time.Now())
	summary, err := reports.Today()
	require.NoError(t, err)

	assert.EqualValues(t, 2, summary.Count)
	assert.InDelta(t, 35.00, summary.Gross, 0.001)  // 20 + 15
	assert.InDelta(t, 3.00, summary.Discount, 0.001) // 20% of 15
	assert.InDelta(t, 32.00, summary.Net, 0.001)
	assert.EqualValues(t, 5, summary.ItemsSold)
	assert.InDelta(t, 20.00, summary.ByPayment[models.PaymentCash], 0.001)
	assert.InDelta(t, 12.00, summary.ByPayment[models.PaymentCard], 0.001)
	require.NotNil(t, summary.FirstSaleAt)
	require.NotNil(t, summary.LastSaleAt)
}

func TestRangeRejectsInvertedBounds(t *testing.T) {
	setupDB(t)

	reports := NewReportService()
	from := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	_, err := reports.Range(from, from)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = reports.Range(from, from.AddDate(0, 0, -1))
	require.ErrorAs(t, err, &vErr)
}

func TestRangeEmptyWindow(t *testing.T) {
	setupDB(t)

	reports := NewReportService()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	summary, err := reports.Range(from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.EqualValues(t, 0, summary.Count)
	assert.Zero(t, summary.Gross)
	assert.Nil(t, summary.FirstSaleAt)
	assert.Empty(t, summary.ByPayment)
}

func TestBuildReceiptUsesSnapshotPrices(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Flat White", "FLW-001", 3.80, 40)

	checkout := newCheckout(checkoutDay)
	sale, err := checkout.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: models.PaymentCard,
		TaxPct:        10,
		CustomerName:  "Walk-in",
	})
	require.NoError(t, err)

	// Catalogue price changes after the sale must not affect the receipt.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).
		UpdateColumn("price", 12.00).Error)

	reports := NewReportService()
	receipt, err := reports.BuildReceipt(sale.ID)
	require.NoError(t, err)

	assert.Equal(t, sale.SaleNumber, receipt.SaleNumber)
	assert.Equal(t, user.Name, receipt.Cashier)
	assert.Equal(t, "Walk-in", receipt.CustomerName)
	require.Len(t, receipt.Lines, 1)
	assert.InDelta(t, 3.80, receipt.Lines[0].UnitPrice, 0.001)
	assert.InDelta(t, 7.60, receipt.Lines[0].LineTotal, 0.001)
	assert.InDelta(t, 7.60, receipt.Total, 0.001)
	assert.InDelta(t, 0.76, receipt.Tax, 0.001)
	assert.InDelta(t, 8.36, receipt.FinalAmount, 0.001)
}

func TestBuildReceiptMissingSale(t *testing.T) {
	setupDB(t)

	reports := NewReportService()
	_, err := reports.BuildReceipt(12345)

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestSalesHistoryPagination(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Refill", "RFL-001", 1.00, 100)

	checkout := newCheckout(checkoutDay)
	for i := 0; i < 5; i++ {
		_, err := checkout.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
			Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 1}},
			PaymentMethod: models.PaymentCash,
		})
		require.NoError(t, err)
	}

	reports := NewReportService()
	sales, pagination, err := reports.Sales(1, 2)
	require.NoError(t, err)

	assert.Len(t, sales, 2)
	assert.EqualValues(t, 5, pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)
}
