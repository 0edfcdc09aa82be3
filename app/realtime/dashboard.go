// Package realtime pushes committed sales to connected dashboard clients
// over the websocket hub.
package realtime

import (
	"encoding/json"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/event"
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/ws"
)

// Dashboard is the hub behind GET /api/ws/dashboard.
var Dashboard = ws.NewHub()

// saleEvent is the wire shape pushed to dashboard clients.
type saleEvent struct {
	Event       string  `json:"event"`
	SaleNumber  string  `json:"sale_number"`
	FinalAmount float64 `json:"final_amount"`
	Items       int     `json:"items"`
	Payment     string  `json:"payment_method"`
}

// Boot starts the hub and subscribes it to checkout commits. Call once at
// server startup.
func Boot() {
	go Dashboard.Run()

	event.Listen(services.EventSaleCreated, func(payload interface{}) {
		sale, ok := payload.(*models.Sale)
		if !ok {
			return
		}

		msg, err := json.Marshal(saleEvent{
			Event:       services.EventSaleCreated,
			SaleNumber:  sale.SaleNumber,
			FinalAmount: sale.FinalAmount,
			Items:       len(sale.Items),
			Payment:     sale.PaymentMethod,
		})
		if err != nil {
			logger.Error("realtime: marshal sale event", "error", err)
			return
		}

		Dashboard.Broadcast <- msg
	})
}
