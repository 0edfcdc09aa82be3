package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shashiranjanraj/billmate/app/jobs"
	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/repositories"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/config"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/shashiranjanraj/billmate/pkg/event"
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/metrics"
	"github.com/shashiranjanraj/billmate/pkg/queue"
	"gorm.io/gorm"
)

// EventSaleCreated is fired after a checkout commits, with the fully-loaded
// *models.Sale as payload. The dashboard websocket feed listens on it.
const EventSaleCreated = "sale.created"

// CheckoutService coordinates the sale transaction: it validates the cart,
// prices every line from the authoritative catalogue, generates the sale
// number, persists the sale with its items, and decrements stock — all
// inside one database transaction. Either everything commits or nothing
// does.
type CheckoutService struct {
	products *repositories.ProductRepository
	sales    *repositories.SaleRepository

	// now is swappable in tests to pin the sale-number date scope.
	now func() time.Time
}

func NewCheckoutService() *CheckoutService {
	return &CheckoutService{
		products: repositories.NewProductRepository(),
		sales:    repositories.NewSaleRepository(),
		now:      time.Now,
	}
}

// Checkout processes one sale for the authenticated user.
//
// The transaction retries (bounded by CHECKOUT_MAX_ATTEMPTS) only when a
// concurrent checkout won a race this attempt lost: a duplicate sale number
// or a serialization/deadlock failure. Business failures — missing product,
// insufficient stock, bad input — are final and reported immediately.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, req requests.CreateSaleRequest) (*models.Sale, error) {
	if err := s.validate(req); err != nil {
		metrics.CheckoutTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	maxAttempts := config.CheckoutMaxAttempts()

	var sale *models.Sale
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sale, err = s.attempt(ctx, userID, req)
		if err == nil {
			break
		}
		if !retryableConflict(err) {
			break
		}

		metrics.StockConflicts.Inc()
		logger.Warn("checkout: conflict, retrying",
			"attempt", attempt, "max", maxAttempts, "error", err)

		if attempt == maxAttempts {
			err = &ConflictError{Reason: "concurrent checkout, please retry"}
		}
	}

	if err != nil {
		metrics.CheckoutTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	s.afterCommit(sale)
	return sale, nil
}

// validate applies every business-rule check that needs no datastore
// access. Failures here guarantee the database was never touched.
func (s *CheckoutService) validate(req requests.CreateSaleRequest) error {
	fields := map[string]string{}

	if len(req.Items) == 0 {
		fields["items"] = "The cart must contain at least one line."
	}

	maxQty := config.CheckoutMaxLineQty()
	for i, line := range req.Items {
		switch {
		case line.ProductID == 0:
			fields[fmt.Sprintf("items[%d].product_id", i)] = "The product id is required."
		case line.Quantity < 1:
			fields[fmt.Sprintf("items[%d].quantity", i)] = "The quantity must be at least 1."
		case line.Quantity > maxQty:
			fields[fmt.Sprintf("items[%d].quantity", i)] = fmt.Sprintf("The quantity must not be greater than %d.", maxQty)
		}
	}

	if !models.ValidPaymentMethod(req.PaymentMethod) {
		fields["payment_method"] = "The payment method must be CASH, CARD, or DIGITAL_WALLET."
	}
	if req.DiscountPct < 0 || req.DiscountPct > 100 {
		fields["discount_pct"] = "The discount percentage must be between 0 and 100."
	}
	if req.TaxPct < 0 || req.TaxPct > 100 {
		fields["tax_pct"] = "The tax percentage must be between 0 and 100."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// attempt runs one full checkout transaction.
func (s *CheckoutService) attempt(ctx context.Context, userID uint, req requests.CreateSaleRequest) (*models.Sale, error) {
	var saleID uint

	txErr := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		sales := s.sales.WithTx(tx)

		// Lock and load each distinct product once; duplicate cart lines
		// for the same product are validated against their combined total.
		loaded := map[uint]*models.Product{}
		requested := map[uint]int{}
		order := make([]uint, 0, len(req.Items))

		for _, line := range req.Items {
			if _, ok := loaded[line.ProductID]; !ok {
				p, err := products.FindByIDForUpdate(line.ProductID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return &NotFoundError{Entity: "product", ID: line.ProductID}
					}
					return fmt.Errorf("checkout: load product %d: %w", line.ProductID, err)
				}
				loaded[line.ProductID] = &p
				order = append(order, line.ProductID)
			}
			requested[line.ProductID] += line.Quantity
		}

		// Validate every line before mutating anything, and report all
		// shortages together rather than short-circuiting on the first.
		var shortages []StockShortage
		for _, id := range order {
			p := loaded[id]
			if p.Stock < requested[id] {
				shortages = append(shortages, StockShortage{
					ProductID:   id,
					ProductName: p.Name,
					Requested:   requested[id],
					Available:   p.Stock,
				})
			}
		}
		if len(shortages) > 0 {
			return &InsufficientStockError{Lines: shortages}
		}

		// Price each line from the locked product row — the snapshot the
		// sale keeps forever, regardless of later catalogue changes.
		items := make([]models.SaleItem, len(req.Items))
		total := 0.0
		for i, line := range req.Items {
			p := loaded[line.ProductID]
			items[i] = models.SaleItem{
				ProductID: p.ID,
				Quantity:  line.Quantity,
				Price:     p.Price,
			}
			total += p.Price * float64(line.Quantity)
		}

		total = round2(total)
		discount := round2(total * req.DiscountPct / 100)
		tax := round2((total - discount) * req.TaxPct / 100)
		final := round2(total - discount + tax)

		number, err := NextSaleNumber(tx, s.now())
		if err != nil {
			return err
		}

		sale := models.Sale{
			SaleNumber:    number,
			Total:         total,
			Discount:      discount,
			Tax:           tax,
			FinalAmount:   final,
			PaymentMethod: req.PaymentMethod,
			UserID:        userID,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			Notes:         req.Notes,
			Items:         items,
		}
		if err := sales.CreateWithItems(&sale); err != nil {
			return fmt.Errorf("checkout: create sale: %w", err)
		}

		// Guarded decrement, one per distinct product. The WHERE stock >= ?
		// clause is defense in depth on top of the row locks above.
		for _, id := range order {
			if err := products.DecrementStock(id, requested[id]); err != nil {
				return fmt.Errorf("checkout: %w", err)
			}
		}

		saleID = sale.ID
		return nil
	})

	if txErr != nil {
		return nil, classify(txErr)
	}

	// Reload outside the transaction with display data resolved.
	full, err := s.sales.FindByID(saleID)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return &full, nil
}

// afterCommit handles everything that must not affect the committed sale:
// metrics, the dashboard event, and the low-stock alert job.
func (s *CheckoutService) afterCommit(sale *models.Sale) {
	metrics.CheckoutTotal.WithLabelValues("success").Inc()
	metrics.SaleAmount.Observe(sale.FinalAmount)
	metrics.ItemsPerSale.Observe(float64(len(sale.Items)))

	event.Fire(EventSaleCreated, sale)

	threshold := config.LowStockThreshold()
	for _, item := range sale.Items {
		p, err := s.products.FindByID(item.ProductID)
		if err != nil {
			continue
		}
		if p.LowStock(threshold) {
			if err := queue.Dispatch(jobs.LowStockAlertJob{
				ProductID: p.ID,
				Name:      p.Name,
				SKU:       p.SKU,
				Stock:     p.Stock,
				Threshold: threshold,
			}); err != nil {
				logger.Error("checkout: dispatch low-stock alert", "error", err)
			}
		}
	}

	logger.Info("checkout: sale committed",
		"sale_number", sale.SaleNumber,
		"final_amount", sale.FinalAmount,
		"items", len(sale.Items),
		"user_id", sale.UserID,
	)
}

// classify maps a transaction error onto the checkout taxonomy. Typed
// domain errors pass through; anything unexpected becomes a StorageError.
func classify(err error) error {
	var vErr *ValidationError
	var nfErr *NotFoundError
	var stockErr *InsufficientStockError
	var cErr *ConflictError
	switch {
	case errors.As(err, &vErr), errors.As(err, &nfErr), errors.As(err, &stockErr), errors.As(err, &cErr):
		return err
	case retryableConflict(err):
		return err
	default:
		return &StorageError{Err: err}
	}
}

// retryableConflict reports whether err looks like a lost race worth one
// more attempt: duplicate sale number, serialization failure, deadlock, or
// a guarded stock update that matched no row.
func retryableConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, repositories.ErrStockConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "serialization") ||
		strings.Contains(msg, "deadlock")
}

func outcomeLabel(err error) string {
	var nfErr *NotFoundError
	var stockErr *InsufficientStockError
	var cErr *ConflictError
	switch {
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &nfErr):
		return "not_found"
	case errors.As(err, &cErr):
		return "conflict"
	default:
		return "error"
	}
}

// round2 rounds to currency precision (2 decimal places).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
