package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDriver records every pushed payload instead of delivering it.
type captureDriver struct {
	payloads [][]byte
}

func (d *captureDriver) Push(payload []byte) error {
	d.payloads = append(d.payloads, payload)
	return nil
}

func (d *captureDriver) Pop(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCheckoutDispatchesLowStockAlert(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	// Default threshold is 10: 12 - 3 = 9 crosses it.
	p := seedProduct(t, db, "Filter Papers", "FIL-001", 4.00, 12)

	driver := &captureDriver{}
	queue.SetDriver(driver)
	t.Cleanup(func() { queue.SetDriver(queue.NewMemoryDriver()) })

	svc := newCheckout(checkoutDay)
	_, err := svc.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 3}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)

	require.Len(t, driver.payloads, 1)

	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(driver.payloads[0], &env))
	assert.Equal(t, "jobs.LowStockAlertJob", env.Type)

	var alert struct {
		ProductID uint `json:"product_id"`
		Stock     int  `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(env.Payload, &alert))
	assert.Equal(t, p.ID, alert.ProductID)
	assert.Equal(t, 9, alert.Stock)
}

func TestCheckoutAboveThresholdDispatchesNothing(t *testing.T) {
	db := setupDB(t)
	user := seedUser(t, db)
	p := seedProduct(t, db, "Beans Sack", "SAC-001", 40.00, 100)

	driver := &captureDriver{}
	queue.SetDriver(driver)
	t.Cleanup(func() { queue.SetDriver(queue.NewMemoryDriver()) })

	svc := newCheckout(checkoutDay)
	_, err := svc.Checkout(context.Background(), user.ID, requests.CreateSaleRequest{
		Items:         []requests.CartLine{{ProductID: p.ID, Quantity: 5}},
		PaymentMethod: models.PaymentCash,
	})
	require.NoError(t, err)
	assert.Empty(t, driver.payloads)
}
