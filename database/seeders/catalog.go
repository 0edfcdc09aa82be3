package seeders

import (
	"errors"

	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("admin_user", SeedAdminUser)
	Register("catalog", SeedCatalog)
}

// SeedAdminUser creates the default admin account if no users exist yet.
// Change the password immediately on a real install.
func SeedAdminUser(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}

	return db.Create(&models.User{
		Name:     "Admin",
		Email:    "admin@billmate.local",
		Password: hash,
		Role:     models.RoleAdmin,
	}).Error
}

// SeedCatalog inserts a small demo catalogue, skipping SKUs that already
// exist so the seeder is re-runnable.
func SeedCatalog(db *gorm.DB) error {
	products := []models.Product{
		{Name: "Espresso", SKU: "BEV-ESP-01", Price: 2.50, Stock: 500, Category: "beverages", Active: true},
		{Name: "Cappuccino", SKU: "BEV-CAP-01", Price: 3.75, Stock: 500, Category: "beverages", Active: true},
		{Name: "Croissant", SKU: "BAK-CRO-01", Price: 2.20, Stock: 80, Category: "bakery", Active: true},
		{Name: "Sourdough Loaf", SKU: "BAK-SOU-01", Price: 5.90, Stock: 25, Category: "bakery", Active: true},
		{Name: "Orange Juice 330ml", SKU: "BEV-OJX-33", Price: 2.95, Stock: 120, Category: "beverages", Active: true},
		{Name: "Tote Bag", SKU: "MRC-TOT-01", Price: 9.99, Stock: 40, Category: "merch", Active: true},
	}

	for _, p := range products {
		err := db.Where("sku = ?", p.SKU).First(&models.Product{}).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
