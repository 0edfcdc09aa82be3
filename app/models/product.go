package models

import "gorm.io/gorm"

// Product represents a catalogue item.
//
// Stock must never go negative: every write path goes through a guarded
// UPDATE (WHERE stock >= ?) in the product repository. Products that have
// sale history are retired (Active=false) instead of deleted, so SaleItem
// rows always keep a resolvable product reference.
type Product struct {
	gorm.Model
	Name     string  `gorm:"size:255;not null;index" json:"name"`
	SKU      string  `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Price    float64 `gorm:"not null;default:0" json:"price"`
	Stock    int     `gorm:"not null;default:0" json:"stock"`
	Category string  `gorm:"size:100;index" json:"category"`
	ImageURL string  `gorm:"size:512" json:"image_url,omitempty"`
	Active   bool    `gorm:"not null;default:true;index" json:"active"`
}

// LowStock reports whether the product sits at or below the given threshold.
func (p Product) LowStock(threshold int) bool {
	return p.Stock <= threshold
}
