package models

import "gorm.io/gorm"

// Payment methods accepted at the till.
const (
	PaymentCash          = "CASH"
	PaymentCard          = "CARD"
	PaymentDigitalWallet = "DIGITAL_WALLET"
)

// ValidPaymentMethod reports whether m is one of the accepted enum values.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigitalWallet:
		return true
	}
	return false
}

// Sale is the persisted record of one completed checkout. It is written
// exactly once, atomically with its items, and never updated afterwards.
//
// Invariant: FinalAmount == Total - Discount + Tax (2-dp rounding), and
// SaleNumber is unique (enforced by the index) and monotonic per day.
type Sale struct {
	gorm.Model
	SaleNumber    string     `gorm:"size:32;uniqueIndex;not null" json:"sale_number"`
	Total         float64    `gorm:"not null" json:"total"`
	Discount      float64    `gorm:"not null;default:0" json:"discount"`
	Tax           float64    `gorm:"not null;default:0" json:"tax"`
	FinalAmount   float64    `gorm:"not null" json:"final_amount"`
	PaymentMethod string     `gorm:"size:20;not null" json:"payment_method"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	User          User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CustomerName  string     `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone string     `gorm:"size:50" json:"customer_phone,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem is one line of a sale. Price is the unit price captured at
// checkout time — a snapshot, deliberately decoupled from later catalogue
// price changes.
type SaleItem struct {
	gorm.Model
	SaleID    uint    `gorm:"not null;index" json:"sale_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

// LineTotal is the snapshot price times quantity.
func (i SaleItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
