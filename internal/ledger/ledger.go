// Package ledger is the single entry point for every quantity-affecting
// event. All call sites (sales, returns, adjustments, conversions) go
// through Apply so the bounds invariants and the movement trail can never
// drift apart.
package ledger

import (
	"context"
	"errors"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplyInput describes one quantity delta against an inventory item.
type ApplyInput struct {
	ItemID       uuid.UUID
	Delta        int    // signed, non-zero
	MovementType string // model.Movement* constant
	Reason       string
	ActorID      *uuid.UUID
	// DepletionStatus is the terminal status the item takes when a negative
	// delta brings it to zero. The caller's event kind decides: SOLD_OUT for
	// sales-driven depletion, RECALLED for return-driven depletion.
	DepletionStatus string
}

// Notifier receives stock events after they are committed to the item row.
// The websocket hub implements it; a nil notifier disables broadcasting.
type Notifier interface {
	Notify(event string, payload interface{})
}

// Stock event names pushed to the notifier.
const (
	EventItemDepleted = "item.depleted"
	EventItemRestored = "item.restored"
)

// Ledger validates and applies quantity deltas and appends the immutable
// movement trail. It always runs inside the caller's transaction: the
// context carries the tx handle, so a later failure in the surrounding
// operation rolls the quantity change back too.
type Ledger struct {
	batches   repository.BatchRepository
	movements repository.MovementRepository
	purchases repository.PurchaseRepository
	notifier  Notifier
	log       logrus.FieldLogger
}

func New(
	batches repository.BatchRepository,
	movements repository.MovementRepository,
	purchases repository.PurchaseRepository,
	notifier Notifier,
	log logrus.FieldLogger,
) *Ledger {
	return &Ledger{
		batches:   batches,
		movements: movements,
		purchases: purchases,
		notifier:  notifier,
		log:       log,
	}
}

// Apply performs one delta against an InventoryItem: row-lock load, status
// gate, bounds checks, quantity write, movement append, and the depletion /
// restore status flips. Returns the updated item.
func (l *Ledger) Apply(ctx context.Context, in ApplyInput) (*model.InventoryItem, error) {
	if in.Delta == 0 {
		return nil, apperr.Validation("quantity delta must be non-zero")
	}

	item, err := l.batches.FindItemByIDForUpdate(ctx, in.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("inventory item %s not found", in.ItemID)
		}
		return nil, err
	}

	if err := checkItemStatus(item.Status, in); err != nil {
		return nil, err
	}

	previous := item.CurrentQuantity
	next := previous + in.Delta
	if next < 0 {
		return nil, apperr.InsufficientStock(
			"inventory item %s has %d units, requested %d", item.ID, previous, -in.Delta)
	}
	if next > item.InitialQuantity {
		return nil, apperr.Validation(
			"inventory item %s cannot exceed initial quantity %d (would become %d)",
			item.ID, item.InitialQuantity, next)
	}

	item.CurrentQuantity = next
	event := ""
	switch {
	case next == 0 && in.Delta < 0:
		status := in.DepletionStatus
		if status == "" {
			status = model.ItemStatusSoldOut
		}
		item.Status = status
		event = EventItemDepleted
	case next > 0 && item.Status == model.ItemStatusSoldOut:
		// Restocked after depletion (sales return)
		item.Status = model.ItemStatusActive
		event = EventItemRestored
	}

	if err := l.batches.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	movement := &model.InventoryMovement{
		ItemID:           item.ID,
		MovementType:     in.MovementType,
		Quantity:         in.Delta,
		PreviousQuantity: previous,
		NewQuantity:      next,
		Reason:           in.Reason,
		CreatedBy:        in.ActorID,
	}
	if err := l.movements.Create(ctx, movement); err != nil {
		return nil, err
	}

	l.reconcile(ctx, item)

	if event != "" && l.notifier != nil {
		l.notifier.Notify(event, item)
	}

	return item, nil
}

// ApplyPurchase performs one delta against a PurchaseItem under the same
// bounds discipline. Purchase items carry no movement rows; the calling
// service records the purchase-side event as a ProductTransaction.
func (l *Ledger) ApplyPurchase(ctx context.Context, itemID uuid.UUID, delta int) (*model.PurchaseItem, error) {
	if delta == 0 {
		return nil, apperr.Validation("quantity delta must be non-zero")
	}

	item, err := l.purchases.FindItemByIDForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase item %s not found", itemID)
		}
		return nil, err
	}

	previous := item.CurrentQuantity
	next := previous + delta
	if next < 0 {
		return nil, apperr.InsufficientStock(
			"purchase item %s has %d units, requested %d", item.ID, previous, -delta)
	}
	if next > item.InitialQuantity {
		return nil, apperr.Validation(
			"purchase item %s cannot exceed initial quantity %d (would become %d)",
			item.ID, item.InitialQuantity, next)
	}

	item.CurrentQuantity = next
	if err := l.purchases.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// checkItemStatus gates movements by the item's consumption state. EXPIRED
// items accept only EXPIRED write-offs; RECALLED items accept nothing;
// SOLD_OUT items accept inbound deltas only.
func checkItemStatus(status string, in ApplyInput) error {
	switch status {
	case model.ItemStatusActive:
		return nil
	case model.ItemStatusSoldOut:
		if in.Delta > 0 {
			return nil
		}
		return apperr.InvalidState("inventory item %s is sold out", in.ItemID)
	case model.ItemStatusExpired:
		if in.MovementType == model.MovementExpired && in.Delta < 0 {
			return nil
		}
		return apperr.InvalidState("inventory item %s is expired", in.ItemID)
	default:
		return apperr.InvalidState("inventory item %s is %s", in.ItemID, status)
	}
}

// reconcile recomputes the movement sum against the live quantity and logs a
// warning on mismatch. Drift is tolerated, never auto-corrected: historical
// data predating the movement log would otherwise block every operation.
func (l *Ledger) reconcile(ctx context.Context, item *model.InventoryItem) {
	sum, err := l.movements.SumByItem(ctx, item.ID)
	if err != nil {
		l.log.WithError(err).WithField("item_id", item.ID).
			Warn("ledger: movement sum unavailable for reconciliation")
		return
	}

	expected := int64(item.InitialQuantity) + sum
	if expected != int64(item.CurrentQuantity) {
		l.log.WithFields(logrus.Fields{
			"item_id":          item.ID,
			"initial_quantity": item.InitialQuantity,
			"movement_sum":     sum,
			"current_quantity": item.CurrentQuantity,
		}).Warn("ledger: movement log does not reconstruct current quantity")
	}
}
