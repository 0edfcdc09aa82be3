// Package jobs defines the background jobs billmate dispatches onto the
// queue. Register every job type in RegisterAll so the worker can
// deserialize it by name.
package jobs

import (
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/queue"
)

// LowStockAlertJob is dispatched after a checkout leaves a product at or
// below the configured threshold. The handler logs at WARN so the alert
// lands in the Mongo audit trail when that handler is enabled.
type LowStockAlertJob struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

func (j LowStockAlertJob) Handle() error {
	logger.Warn("low stock",
		"product_id", j.ProductID,
		"name", j.Name,
		"sku", j.SKU,
		"stock", j.Stock,
		"threshold", j.Threshold,
	)
	return nil
}

// RegisterAll makes every job type known to the queue. Called once at boot.
func RegisterAll() {
	queue.Register("jobs.LowStockAlertJob", func() queue.Job { return &LowStockAlertJob{} })
}
