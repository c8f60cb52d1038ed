package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseStatus enum constants
const (
	PurchaseStatusActive    = "ACTIVE"
	PurchaseStatusConverted = "CONVERTED"
	PurchaseStatusReturned  = "RETURNED"
)

// PurchaseEdit action constants
const (
	EditActionInsert = "INSERT"
	EditActionUpdate = "UPDATE"
	EditActionDelete = "DELETE"
)

// Purchase mirrors an InventoryBatch before conversion. It becomes eligible
// for conversion only once VerifiedBy and VerificationDate are both set.
type Purchase struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber  string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference_number"`
	BatchNumber      string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_purchase_supplier" json:"batch_number"`
	SupplierID       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_supplier" json:"supplier_id"`
	Supplier         *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Status           string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	InvoiceDate      *time.Time     `json:"invoice_date"`
	ManufacturedDate *time.Time     `json:"manufactured_date"`
	ExpiryDate       time.Time      `gorm:"not null" json:"expiry_date"`
	VerifiedBy       *uuid.UUID     `gorm:"type:uuid" json:"verified_by"`
	VerificationDate *time.Time     `json:"verification_date"`
	InventoryBatchID *uuid.UUID     `gorm:"type:uuid;index" json:"inventory_batch_id"` // Set at conversion
	Items            []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items"`
	CreatedBy        *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// PurchaseItem carries the same quantity invariants as InventoryItem:
// CurrentQuantity stays within [0, InitialQuantity] and only the ledger
// moves it (supplier returns deduct from here once approved).
type PurchaseItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	Purchase        *Purchase       `gorm:"foreignKey:PurchaseID" json:"-"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	InitialQuantity int             `gorm:"type:int;not null" json:"initial_quantity"`
	CurrentQuantity int             `gorm:"type:int;not null" json:"current_quantity"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_price"`
	RetailPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"retail_price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PurchaseEdit is the append-only diff log for every mutation to a Purchase
// or PurchaseItem. One row per changed field.
type PurchaseEdit struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseID uuid.UUID  `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ItemID     *uuid.UUID `gorm:"type:uuid;index" json:"item_id"` // Null for header-level edits
	Action     string     `gorm:"type:varchar(10);not null" json:"action"`
	FieldName  string     `gorm:"type:varchar(100);not null" json:"field_name"`
	OldValue   string     `gorm:"type:text" json:"old_value"`
	NewValue   string     `gorm:"type:text" json:"new_value"`
	Reason     string     `gorm:"type:text" json:"reason"`
	EditedBy   *uuid.UUID `gorm:"type:uuid" json:"edited_by"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

// PurchaseReturn requests the return of ReturnQuantity units of one
// PurchaseItem to the supplier. Status moves strictly forward through
// the PurchaseReturnStatus machine; quantity effects fire on the
// transition into APPROVED.
type PurchaseReturn struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference_number"`
	PurchaseItemID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_item_id"`
	PurchaseItem    *PurchaseItem   `gorm:"foreignKey:PurchaseItemID" json:"purchase_item,omitempty"`
	ReturnQuantity  int             `gorm:"type:int;not null" json:"return_quantity"`
	ReturnPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"return_price"` // costPrice x returnQuantity
	Reason          string          `gorm:"type:text;not null" json:"reason"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SubmittedBy     *uuid.UUID      `gorm:"type:uuid" json:"submitted_by"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	ProcessedAt     *time.Time      `json:"processed_at"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (i *PurchaseItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (e *PurchaseEdit) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (r *PurchaseReturn) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
