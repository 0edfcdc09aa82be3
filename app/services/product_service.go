package services

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/app/repositories"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/config"
	"github.com/shashiranjanraj/billmate/pkg/cache"
	"github.com/shashiranjanraj/billmate/pkg/logger"
	"github.com/shashiranjanraj/billmate/pkg/orm"
	"github.com/shashiranjanraj/billmate/pkg/storage"
	"gorm.io/gorm"
)

// ErrHasSaleHistory is returned when a hard delete is requested for a
// product that sale items still reference. Such products can only be
// retired.
var ErrHasSaleHistory = errors.New("product has sale history; retire it instead")

const productCacheKey = "products:active"

// ProductService owns catalogue management. Stock mutations here share the
// same non-negative invariant as checkout, via the repository's guarded
// updates.
type ProductService struct {
	repo *repositories.ProductRepository
}

func NewProductService() *ProductService {
	return &ProductService{repo: repositories.NewProductRepository()}
}

// List returns one page of active products matching the search term and
// category filters.
func (s *ProductService) List(term, category string, page, limit int) ([]models.Product, orm.Pagination, error) {
	return s.repo.Search(term, category, page, limit)
}

// Get loads a single active product.
func (s *ProductService) Get(id uint) (models.Product, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, &NotFoundError{Entity: "product", ID: id}
		}
		return models.Product{}, err
	}
	return product, nil
}

// Create adds a product to the catalogue. An empty category falls back to
// the configured default.
func (s *ProductService) Create(req requests.ProductRequest) (models.Product, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = config.DefaultCategory()
	}

	product := models.Product{
		Name:     req.Name,
		SKU:      req.SKU,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: category,
		Active:   true,
	}
	if err := s.repo.Create(&product); err != nil {
		return models.Product{}, fmt.Errorf("product: create: %w", err)
	}

	cache.Forget(productCacheKey)
	return product, nil
}

// Update edits name, price, category, and SKU. Stock is not writable here —
// use the adjustment endpoints so every movement goes through a guarded
// update.
func (s *ProductService) Update(id uint, req requests.ProductRequest) (models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return models.Product{}, err
	}

	product.Name = req.Name
	product.SKU = req.SKU
	product.Price = req.Price
	if c := strings.TrimSpace(req.Category); c != "" {
		product.Category = c
	}

	if err := s.repo.Update(&product); err != nil {
		return models.Product{}, fmt.Errorf("product: update %d: %w", id, err)
	}

	cache.Forget(productCacheKey)
	return product, nil
}

// Delete removes a product. Products referenced by any sale item are never
// hard-deleted: they are retired so historical receipts stay resolvable.
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	referenced, err := s.repo.HasSaleHistory(id)
	if err != nil {
		return err
	}

	if referenced {
		if err := s.repo.Retire(id); err != nil {
			return err
		}
		cache.Forget(productCacheKey)
		return ErrHasSaleHistory
	}

	if err := s.repo.HardDelete(id); err != nil {
		return err
	}
	cache.Forget(productCacheKey)
	return nil
}

// Retire soft-deletes the product regardless of history.
func (s *ProductService) Retire(id uint) error {
	if err := s.repo.Retire(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "product", ID: id}
		}
		return err
	}
	cache.Forget(productCacheKey)
	return nil
}

// AdjustStock applies a manual stock movement outside the checkout path.
// Positive deltas are deliveries/returns, negative are write-offs; the
// guarded update keeps stock non-negative either way.
func (s *ProductService) AdjustStock(id uint, delta int, reason string) (models.Product, error) {
	if delta == 0 {
		return models.Product{}, &ValidationError{Fields: map[string]string{
			"quantity": "The adjustment quantity must not be zero.",
		}}
	}

	if _, err := s.Get(id); err != nil {
		return models.Product{}, err
	}

	var err error
	if delta > 0 {
		err = s.repo.IncrementStock(id, delta)
	} else {
		err = s.repo.DecrementStock(id, -delta)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrStockConflict) {
			return models.Product{}, &ConflictError{Reason: "adjustment would drive stock negative"}
		}
		return models.Product{}, err
	}

	logger.Info("stock adjusted", "product_id", id, "delta", delta, "reason", reason)
	cache.Forget(productCacheKey)

	return s.Get(id)
}

// LowStock lists active products at or below the configured threshold.
func (s *ProductService) LowStock() ([]models.Product, error) {
	return s.repo.LowStock(config.LowStockThreshold())
}

// AttachImage stores the uploaded image on the default disk and records its
// public URL on the product.
func (s *ProductService) AttachImage(id uint, filename string, r io.Reader) (models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return models.Product{}, err
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return models.Product{}, &ValidationError{Fields: map[string]string{
			"image": "The image must be a jpg, png, or webp file.",
		}}
	}

	key := fmt.Sprintf("products/%d/%d%s", id, time.Now().UnixNano(), ext)
	if err := storage.PutStream(key, r); err != nil {
		return models.Product{}, fmt.Errorf("product: store image: %w", err)
	}

	product.ImageURL = storage.URL(key)
	if err := s.repo.Update(&product); err != nil {
		return models.Product{}, err
	}

	cache.Forget(productCacheKey)
	return product, nil
}
