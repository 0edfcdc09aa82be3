package repositories

import (
	"time"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/shashiranjanraj/billmate/pkg/orm"
	"gorm.io/gorm"
)

// SaleRepository handles database operations for Sale and SaleItem.
// Sales are write-once: there is no update or delete path.
type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository() *SaleRepository {
	return &SaleRepository{}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *SaleRepository) WithTx(tx *gorm.DB) *SaleRepository {
	return &SaleRepository{db: tx}
}

func (r *SaleRepository) conn() *gorm.DB {
	if r.db != nil {
		return r.db
	}
	return database.DB
}

// CreateWithItems inserts the sale row and all of its items in one nested
// write. GORM fills SaleID on each item from the association.
func (r *SaleRepository) CreateWithItems(sale *models.Sale) error {
	return r.conn().Create(sale).Error
}

// MaxSaleNumberForDay returns the sale number with the highest sequence for
// the given day prefix (e.g. "SAL-20260829"), or "" when the day has no
// sales yet. Must be called inside the checkout transaction; the unique
// index on sale_number backstops the scan-then-increment race.
//
// The comparison happens in Go rather than ORDER BY: sequences past 9999
// outgrow the 4-digit padding, and string ordering would rank "...-9999"
// above "...-10000". Same-day numbers share the prefix, so a longer number
// is always the larger sequence, and equal lengths compare lexicographically
// because of the zero padding.
func (r *SaleRepository) MaxSaleNumberForDay(prefix string) (string, error) {
	var numbers []string
	err := r.conn().
		Model(&models.Sale{}).
		Where("sale_number LIKE ?", prefix+"-%").
		Pluck("sale_number", &numbers).Error
	if err != nil {
		return "", err
	}

	best := ""
	for _, n := range numbers {
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best, nil
}

// FindByID loads a sale with its items, their product snapshots, and the
// processing user.
func (r *SaleRepository) FindByID(id uint) (models.Sale, error) {
	var sale models.Sale
	err := r.conn().
		Preload("Items").
		Preload("Items.Product").
		Preload("User").
		First(&sale, id).Error
	return sale, err
}

// All returns one page of sales, newest first, with items preloaded.
func (r *SaleRepository) All(page, limit int) ([]models.Sale, orm.Pagination, error) {
	var sales []models.Sale
	pagination, err := orm.Tx(r.conn()).
		Model(&models.Sale{}).
		Preload("Items").
		Preload("User").
		Order("created_at desc").
		GetWithPagination(&sales, page, limit)
	return sales, pagination, err
}

// Between returns all sales committed in [from, to), items preloaded.
func (r *SaleRepository) Between(from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.conn().
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&sales).Error
	return sales, err
}

// Summary holds read-only aggregates over a date range.
type Summary struct {
	Count       int64              `json:"count"`
	Gross       float64            `json:"gross"`
	Discount    float64            `json:"discount"`
	Tax         float64            `json:"tax"`
	Net         float64            `json:"net"`
	ByPayment   map[string]float64 `json:"by_payment"`
	ItemsSold   int64              `json:"items_sold"`
	FirstSaleAt *time.Time         `json:"first_sale_at,omitempty"`
	LastSaleAt  *time.Time         `json:"last_sale_at,omitempty"`
}

// Summarize aggregates all sales in [from, to).
func (r *SaleRepository) Summarize(from, to time.Time) (Summary, error) {
	sales, err := r.Between(from, to)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{ByPayment: map[string]float64{}}
	for i := range sales {
		sale := &sales[i]
		s.Count++
		s.Gross += sale.Total
		s.Discount += sale.Discount
		s.Tax += sale.Tax
		s.Net += sale.FinalAmount
		s.ByPayment[sale.PaymentMethod] += sale.FinalAmount
		for _, item := range sale.Items {
			s.ItemsSold += int64(item.Quantity)
		}
		created := sale.CreatedAt
		if s.FirstSaleAt == nil {
			s.FirstSaleAt = &created
		}
		last := created
		s.LastSaleAt = &last
	}
	return s, nil
}
