package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/repositories"
	"github.com/shashiranjanraj/billmate/pkg/orm"
	"gorm.io/gorm"
)

// ReportService serves the read-only aggregations: daily summaries,
// date-range summaries, and printable receipts. No invariants of its own —
// everything is derived from committed sales.
type ReportService struct {
	sales *repositories.SaleRepository

	now func() time.Time
}

func NewReportService() *ReportService {
	return &ReportService{
		sales: repositories.NewSaleRepository(),
		now:   time.Now,
	}
}

// Today aggregates all sales committed since local midnight.
func (s *ReportService) Today() (repositories.Summary, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.sales.Summarize(from, from.AddDate(0, 0, 1))
}

// Range aggregates sales in [from, to). to must be after from.
func (s *ReportService) Range(from, to time.Time) (repositories.Summary, error) {
	if !to.After(from) {
		return repositories.Summary{}, &ValidationError{Fields: map[string]string{
			"to": "The end of the range must be after the start.",
		}}
	}
	return s.sales.Summarize(from, to)
}

// ReceiptLine is one printable line of a receipt.
type ReceiptLine struct {
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// Receipt is the display form of one sale, built entirely from snapshot
// prices — later catalogue edits never change it.
type Receipt struct {
	SaleNumber    string        `json:"sale_number"`
	IssuedAt      time.Time     `json:"issued_at"`
	Cashier       string        `json:"cashier"`
	CustomerName  string        `json:"customer_name,omitempty"`
	Lines         []ReceiptLine `json:"lines"`
	Total         float64       `json:"total"`
	Discount      float64       `json:"discount"`
	Tax           float64       `json:"tax"`
	FinalAmount   float64       `json:"final_amount"`
	PaymentMethod string        `json:"payment_method"`
	Notes         string        `json:"notes,omitempty"`
}

// BuildReceipt renders the receipt for a sale.
func (s *ReportService) BuildReceipt(saleID uint) (Receipt, error) {
	sale, err := s.sales.FindByID(saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Receipt{}, &NotFoundError{Entity: "sale", ID: saleID}
		}
		return Receipt{}, fmt.Errorf("receipt: load sale %d: %w", saleID, err)
	}

	lines := make([]ReceiptLine, len(sale.Items))
	for i, item := range sale.Items {
		lines[i] = ReceiptLine{
			Name:      item.Product.Name,
			SKU:       item.Product.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: round2(item.LineTotal()),
		}
	}

	return Receipt{
		SaleNumber:    sale.SaleNumber,
		IssuedAt:      sale.CreatedAt,
		Cashier:       sale.User.Name,
		CustomerName:  sale.CustomerName,
		Lines:         lines,
		Total:         sale.Total,
		Discount:      sale.Discount,
		Tax:           sale.Tax,
		FinalAmount:   sale.FinalAmount,
		PaymentMethod: sale.PaymentMethod,
		Notes:         sale.Notes,
	}, nil
}

// Sales returns one page of past sales for the sales history screen.
func (s *ReportService) Sales(page, limit int) ([]models.Sale, orm.Pagination, error) {
	return s.sales.All(page, limit)
}
