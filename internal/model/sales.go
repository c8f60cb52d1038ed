package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStatus enum constants
const (
	SaleStatusActive            = "ACTIVE"
	SaleStatusPartiallyReturned = "PARTIALLY_RETURNED"
	SaleStatusReturned          = "RETURNED"
)

// PaymentTerms enum constants
const (
	PaymentTermsCash   = "CASH"
	PaymentTermsCredit = "CREDIT"
)

// Sales is one sale transaction against one InventoryItem. Stock is
// decremented immediately at creation time, not staged. RequestHash is the
// idempotency key rejecting exact duplicate submissions within a window.
type Sales struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference_number"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem  `gorm:"foreignKey:InventoryItemID" json:"inventory_item,omitempty"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	RetailPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"retail_price"`
	Discount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	UnitFinalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_final_price"` // retailPrice x quantity - discount
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount_paid"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"balance"`
	PaymentTerms    string          `gorm:"type:varchar(20);not null" json:"payment_terms"`
	Status          string          `gorm:"type:varchar(30);not null;default:'ACTIVE';index" json:"status"`
	RequestHash     string          `gorm:"type:varchar(64);index" json:"-"`
	SoldBy          *uuid.UUID      `gorm:"type:uuid" json:"sold_by"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SalesReturn requests the return of ReturnQuantity units of a Sales row.
// Unlike purchase returns, quantity effects are deferred until the
// transition into PROCESSED; Restockable decides whether stock comes back.
type SalesReturn struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference_number"`
	SalesID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"sales_id"`
	Sales           *Sales     `gorm:"foreignKey:SalesID" json:"sales,omitempty"`
	ReturnQuantity  int        `gorm:"type:int;not null" json:"return_quantity"`
	Reason          string     `gorm:"type:text;not null" json:"reason"`
	Restockable     bool       `gorm:"not null;default:true" json:"restockable"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SubmittedBy     *uuid.UUID `gorm:"type:uuid" json:"submitted_by"`
	ProcessedBy     *uuid.UUID `gorm:"type:uuid" json:"processed_by"`
	ProcessedAt     *time.Time `json:"processed_at"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *Sales) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (r *SalesReturn) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
