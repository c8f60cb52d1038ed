package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductTransactionType enum constants
const (
	ProductTxPurchase         = "PURCHASE"
	ProductTxSale             = "SALE"
	ProductTxReturnToSupplier = "RETURN_TO_SUPPLIER"
	ProductTxSalesReturn      = "SALES_RETURN"
	ProductTxWriteOff         = "WRITE_OFF"
	ProductTxAdjustment       = "ADJUSTMENT"
)

// Product is the master record a pharmacy item is tracked under. Average
// prices are recomputed from ACTIVE inventory items after every sale and
// conversion, so reports can price stock without walking batches.
type Product struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code               string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name               string          `gorm:"type:varchar(255);not null" json:"name"`
	GenericName        string          `gorm:"type:varchar(255)" json:"generic_name"`
	Category           string          `gorm:"type:varchar(100);index" json:"category"`
	Unit               string          `gorm:"type:varchar(50)" json:"unit"` // e.g. tablet, bottle, vial
	AverageCostPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"average_cost_price"`
	AverageRetailPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"average_retail_price"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ProductTransaction is the append-only financial/quantity trail keyed by
// product (not by item). Every inventory-affecting or price-affecting event
// lands here for reporting.
type ProductTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"-"`
	TransactionType string          `gorm:"type:varchar(30);not null;index" json:"transaction_type"`
	QuantityIn      int             `gorm:"type:int;not null;default:0" json:"quantity_in"`
	QuantityOut     int             `gorm:"type:int;not null;default:0" json:"quantity_out"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	ReferenceNumber string          `gorm:"type:varchar(30);index" json:"reference_number"` // Source document ref (PUR-/SALE-/PR-/SR-)
	Description     string          `gorm:"type:text" json:"description"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

// Supplier is the counterparty purchases are received from. Batch numbers
// are unique per supplier, not globally.
type Supplier struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Address       string         `gorm:"type:text" json:"address"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Customer is resolved or auto-created during sales creation.
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (t *ProductTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
