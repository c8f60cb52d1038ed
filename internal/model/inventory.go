package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BatchStatus enum constants
const (
	BatchStatusActive   = "ACTIVE"
	BatchStatusExpired  = "EXPIRED"
	BatchStatusDamaged  = "DAMAGED"
	BatchStatusRecalled = "RECALLED"
	BatchStatusReturned = "RETURNED"
	BatchStatusSoldOut  = "SOLD_OUT"
)

// ItemStatus enum constants
const (
	ItemStatusActive   = "ACTIVE"
	ItemStatusSoldOut  = "SOLD_OUT"
	ItemStatusExpired  = "EXPIRED"
	ItemStatusRecalled = "RECALLED"
)

// MovementType enum constants
const (
	MovementInbound    = "INBOUND"
	MovementOutbound   = "OUTBOUND"
	MovementAdjustment = "ADJUSTMENT"
	MovementTransfer   = "TRANSFER"
	MovementReturn     = "RETURN"
	MovementExpired    = "EXPIRED"
)

// InventoryBatch represents one received stock lot from a supplier.
// A batch is created by converting a verified Purchase and owns its items.
type InventoryBatch struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber  string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference_number"`
	BatchNumber      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_batch_supplier" json:"batch_number"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_batch_supplier" json:"supplier_id"`
	Supplier         *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	PurchaseID       *uuid.UUID      `gorm:"type:uuid;index" json:"purchase_id"` // Source purchase, nullable for opening stock
	Status           string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	InvoiceDate      *time.Time      `json:"invoice_date"`
	ManufacturedDate *time.Time      `json:"manufactured_date"`
	ExpiryDate       time.Time       `gorm:"not null;index" json:"expiry_date"`
	VerifiedBy       *uuid.UUID      `gorm:"type:uuid" json:"verified_by"`
	VerificationDate *time.Time      `json:"verification_date"`
	Items            []InventoryItem `gorm:"foreignKey:BatchID" json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// InventoryItem is one product line within a batch. InitialQuantity is the
// historical ceiling and never changes after creation; CurrentQuantity is
// mutated only by the ledger and must stay within [0, InitialQuantity].
type InventoryItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	Batch           *InventoryBatch `gorm:"foreignKey:BatchID" json:"-"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	InitialQuantity int             `gorm:"type:int;not null" json:"initial_quantity"`
	CurrentQuantity int             `gorm:"type:int;not null" json:"current_quantity"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_price"`
	RetailPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"retail_price"`
	Status          string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InventoryMovement is the append-only audit record of every CurrentQuantity
// change. Rows are never updated or deleted; the PreviousQuantity/NewQuantity
// snapshots make the chain independently verifiable.
type InventoryMovement struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	MovementType     string     `gorm:"type:varchar(20);not null;index" json:"movement_type"`
	Quantity         int        `gorm:"type:int;not null" json:"quantity"` // Signed delta
	PreviousQuantity int        `gorm:"type:int;not null" json:"previous_quantity"`
	NewQuantity      int        `gorm:"type:int;not null" json:"new_quantity"`
	Reason           string     `gorm:"type:text" json:"reason"`
	CreatedBy        *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

func (b *InventoryBatch) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (m *InventoryMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
