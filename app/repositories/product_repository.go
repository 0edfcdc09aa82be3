package repositories

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/pkg/database"
	"github.com/shashiranjanraj/billmate/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockConflict is returned when a guarded stock update matches no row:
// either the product vanished or the decrement would drive stock negative.
var ErrStockConflict = errors.New("stock update conflict")

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// WithTx returns a repository bound to the given transaction handle.
// The checkout coordinator uses this so every catalogue read and stock
// mutation shares one atomic unit of work.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) conn() *gorm.DB {
	if r.db != nil {
		return r.db
	}
	return database.DB
}

// FindByID looks up an active product by primary key.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.conn().Where("id = ? AND active = ?", id, true).First(&product).Error
	return product, err
}

// FindByIDForUpdate reads the product row under a row-level write lock so
// the stock check and the later decrement see the same committed state.
// SQLite has no FOR UPDATE; its single-writer model makes the lock moot.
func (r *ProductRepository) FindByIDForUpdate(id uint) (models.Product, error) {
	var product models.Product
	q := r.conn()
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("id = ? AND active = ?", id, true).First(&product).Error
	return product, err
}

// FindBySKU looks up an active product by SKU.
func (r *ProductRepository) FindBySKU(sku string) (models.Product, error) {
	var product models.Product
	err := r.conn().Where("sku = ? AND active = ?", sku, true).First(&product).Error
	return product, err
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.conn().Create(product).Error
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	return r.conn().Save(product).Error
}

// DecrementStock atomically subtracts qty from the product's stock.
// The WHERE stock >= ? guard makes over-decrement impossible even under
// weak isolation; zero rows affected means the caller's earlier check was
// invalidated by a concurrent writer.
func (r *ProductRepository) DecrementStock(id uint, qty int) error {
	res := r.conn().Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: decrement %d: %w", id, qty, ErrStockConflict)
	}
	return nil
}

// IncrementStock atomically adds qty to the product's stock. Used by
// returns and manual adjustments, never by checkout.
func (r *ProductRepository) IncrementStock(id uint, qty int) error {
	res := r.conn().Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: increment %d: %w", id, qty, ErrStockConflict)
	}
	return nil
}

// HasSaleHistory reports whether any sale item references the product.
func (r *ProductRepository) HasSaleHistory(id uint) (bool, error) {
	var n int64
	err := r.conn().Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}

// Retire soft-deletes the product from the catalogue (Active=false).
func (r *ProductRepository) Retire(id uint) error {
	res := r.conn().Model(&models.Product{}).
		Where("id = ? AND active = ?", id, true).
		UpdateColumn("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete removes a product row entirely. Callers must have verified the
// product has no sale history (ProductService enforces this).
func (r *ProductRepository) HardDelete(id uint) error {
	return r.conn().Unscoped().Delete(&models.Product{}, id).Error
}

// Search returns one page of active products, optionally filtered by a
// name/SKU term and category.
func (r *ProductRepository) Search(term, category string, page, limit int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product

	q := orm.Tx(r.conn()).Model(&models.Product{}).Where("active = ?", true)
	if term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR sku LIKE ?", like, like)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	pagination, err := q.Order("name asc").GetWithPagination(&products, page, limit)
	return products, pagination, err
}

// LowStock returns active products at or below the threshold.
func (r *ProductRepository) LowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.conn().
		Where("active = ? AND stock <= ?", true, threshold).
		Order("stock asc").
		Find(&products).Error
	return products, err
}
