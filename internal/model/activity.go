package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreatePurchase        = "CREATE_PURCHASE"
	ActionUpdatePurchase        = "UPDATE_PURCHASE"
	ActionVerifyPurchase        = "VERIFY_PURCHASE"
	ActionConvertPurchase       = "CONVERT_PURCHASE"
	ActionSubmitPurchaseReturn  = "SUBMIT_PURCHASE_RETURN"
	ActionPurchaseReturnStatus  = "PURCHASE_RETURN_STATUS"
	ActionCreateSale            = "CREATE_SALE"
	ActionSubmitSalesReturn     = "SUBMIT_SALES_RETURN"
	ActionSalesReturnStatus     = "SALES_RETURN_STATUS"
	ActionCreateCustomer        = "CREATE_CUSTOMER"
	ActionUpdateInventoryBatch  = "UPDATE_INVENTORY_BATCH"
	ActionInventoryAdjustment   = "INVENTORY_ADJUSTMENT"
	ActionInventoryExpirySweep  = "INVENTORY_EXPIRY_SWEEP"
	ActionRegisterUser          = "REGISTER_USER"
)

// ActivityLog tracks Who, What, and When for every mutating operation.
// Rows are written inside the same transaction as the mutation itself.
type ActivityLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Null when triggered by a system sweep
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Model       string     `gorm:"type:varchar(50);not null;index" json:"model"`
	RecordID    string     `gorm:"type:varchar(50);index" json:"record_id"`
	Action      string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Description string     `gorm:"type:text" json:"description"`
	Details     string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the change
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
