package model

// PurchaseReturnStatus is the typed state of a supplier return. Transitions
// move strictly forward; PROCESSED, REJECTED and CANCELLED are terminal.
type PurchaseReturnStatus string

const (
	PurchaseReturnPending   PurchaseReturnStatus = "PENDING"
	PurchaseReturnApproved  PurchaseReturnStatus = "APPROVED"
	PurchaseReturnProcessed PurchaseReturnStatus = "PROCESSED"
	PurchaseReturnRejected  PurchaseReturnStatus = "REJECTED"
	PurchaseReturnCancelled PurchaseReturnStatus = "CANCELLED"
)

var purchaseReturnTransitions = map[PurchaseReturnStatus][]PurchaseReturnStatus{
	PurchaseReturnPending:   {PurchaseReturnApproved, PurchaseReturnRejected, PurchaseReturnCancelled},
	PurchaseReturnApproved:  {PurchaseReturnProcessed},
	PurchaseReturnProcessed: {},
	PurchaseReturnRejected:  {},
	PurchaseReturnCancelled: {},
}

// Valid reports whether s is a known purchase return status.
func (s PurchaseReturnStatus) Valid() bool {
	_, ok := purchaseReturnTransitions[s]
	return ok
}

// CanTransitionTo reports whether the target status is in the allowed-next
// set for s.
func (s PurchaseReturnStatus) CanTransitionTo(target PurchaseReturnStatus) bool {
	for _, next := range purchaseReturnTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s PurchaseReturnStatus) Terminal() bool {
	return s.Valid() && len(purchaseReturnTransitions[s]) == 0
}

// CountsAgainstQuota reports whether a return in this status still reserves
// its quantity against the source item's InitialQuantity. Failed-terminal
// returns release their reservation.
func (s PurchaseReturnStatus) CountsAgainstQuota() bool {
	return s != PurchaseReturnRejected && s != PurchaseReturnCancelled
}

// SalesReturnStatus is the typed state of a customer return. The machine only
// hard-blocks edits once PROCESSED or CANCELLED; quantity effects fire on the
// transition into PROCESSED.
type SalesReturnStatus string

const (
	SalesReturnPending   SalesReturnStatus = "PENDING"
	SalesReturnApproved  SalesReturnStatus = "APPROVED"
	SalesReturnProcessed SalesReturnStatus = "PROCESSED"
	SalesReturnCancelled SalesReturnStatus = "CANCELLED"
)

// Valid reports whether s is a known sales return status.
func (s SalesReturnStatus) Valid() bool {
	switch s {
	case SalesReturnPending, SalesReturnApproved, SalesReturnProcessed, SalesReturnCancelled:
		return true
	}
	return false
}

// Terminal reports whether s blocks any further edits.
func (s SalesReturnStatus) Terminal() bool {
	return s == SalesReturnProcessed || s == SalesReturnCancelled
}

// CanTransitionTo permits any move between non-terminal states; once
// PROCESSED or CANCELLED the return is frozen.
func (s SalesReturnStatus) CanTransitionTo(target SalesReturnStatus) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	return !s.Terminal() && target != s
}

// CountsTowardReturned reports whether a return in this status contributes
// to the cumulative returned quantity of its sale.
func (s SalesReturnStatus) CountsTowardReturned() bool {
	return s != SalesReturnCancelled
}
