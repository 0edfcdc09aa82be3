// Package requests holds the JSON request bodies accepted by the API,
// decoded and validated through pkg/bind.
package requests

// RegisterRequest creates a staff account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"nullable,in=admin,cashier"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProductRequest creates or updates a catalogue product.
type ProductRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	SKU      string  `json:"sku" validate:"required,alpha_dash,max=100"`
	Price    float64 `json:"price" validate:"numeric,gte=0"`
	Stock    int     `json:"stock" validate:"integer,gte=0"`
	Category string  `json:"category" validate:"nullable,max=100"`
}

// StockAdjustRequest moves stock outside the checkout path (deliveries,
// returns, corrections). Reason is kept for the audit log.
type StockAdjustRequest struct {
	Quantity int    `json:"quantity" validate:"required,integer,gte=1"`
	Reason   string `json:"reason" validate:"nullable,max=255"`
}

// CartLine is one productId/quantity pair submitted for checkout.
// Line-level bounds are enforced by the checkout coordinator so the error
// can name the offending line.
type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateSaleRequest is the checkout payload. Any client-supplied price is
// ignored; the coordinator always prices from the authoritative catalogue.
type CreateSaleRequest struct {
	Items         []CartLine `json:"items"`
	PaymentMethod string     `json:"payment_method" validate:"required,in=CASH,CARD,DIGITAL_WALLET"`
	DiscountPct   float64    `json:"discount_pct" validate:"nullable,numeric,gte=0,lte=100"`
	TaxPct        float64    `json:"tax_pct" validate:"nullable,numeric,gte=0,lte=100"`
	CustomerName  string     `json:"customer_name" validate:"nullable,max=255"`
	CustomerPhone string     `json:"customer_phone" validate:"nullable,max=50"`
	Notes         string     `json:"notes" validate:"nullable,max=1000"`
}
