package migrations

import (
	"github.com/shashiranjanraj/billmate/app/models"
	"github.com/shashiranjanraj/billmate/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260301000001_create_products_table", &CreateProductsTable{})
	migration.Register("20260301000002_create_sales_tables", &CreateSalesTables{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

// -------- 0002: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0003: sales + sale_items --------
// AutoMigrate creates the unique index on sales.sale_number; the checkout
// retry loop depends on it.

type CreateSalesTables struct{}

func (m *CreateSalesTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Sale{}, &models.SaleItem{})
}

func (m *CreateSalesTables) Down(db *gorm.DB) error {
	if err := db.Migrator().DropTable("sale_items"); err != nil {
		return err
	}
	return db.Migrator().DropTable("sales")
}
