package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurchaseReturnStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PurchaseReturnStatus
		to      PurchaseReturnStatus
		allowed bool
	}{
		{PurchaseReturnPending, PurchaseReturnApproved, true},
		{PurchaseReturnPending, PurchaseReturnRejected, true},
		{PurchaseReturnPending, PurchaseReturnCancelled, true},
		{PurchaseReturnPending, PurchaseReturnProcessed, false},
		{PurchaseReturnApproved, PurchaseReturnProcessed, true},
		{PurchaseReturnApproved, PurchaseReturnPending, false},
		{PurchaseReturnApproved, PurchaseReturnRejected, false},
		{PurchaseReturnProcessed, PurchaseReturnPending, false},
		{PurchaseReturnRejected, PurchaseReturnApproved, false},
		{PurchaseReturnCancelled, PurchaseReturnApproved, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPurchaseReturnStatusTerminal(t *testing.T) {
	assert.False(t, PurchaseReturnPending.Terminal())
	assert.False(t, PurchaseReturnApproved.Terminal())
	assert.True(t, PurchaseReturnProcessed.Terminal())
	assert.True(t, PurchaseReturnRejected.Terminal())
	assert.True(t, PurchaseReturnCancelled.Terminal())
}

func TestPurchaseReturnStatusQuota(t *testing.T) {
	// REJECTED and CANCELLED release their reservation; everything else
	// keeps counting against the item's initial quantity.
	assert.True(t, PurchaseReturnPending.CountsAgainstQuota())
	assert.True(t, PurchaseReturnApproved.CountsAgainstQuota())
	assert.True(t, PurchaseReturnProcessed.CountsAgainstQuota())
	assert.False(t, PurchaseReturnRejected.CountsAgainstQuota())
	assert.False(t, PurchaseReturnCancelled.CountsAgainstQuota())
}

func TestPurchaseReturnStatusValid(t *testing.T) {
	assert.True(t, PurchaseReturnPending.Valid())
	assert.False(t, PurchaseReturnStatus("SHIPPED").Valid())
	assert.False(t, PurchaseReturnStatus("").Valid())
}

func TestSalesReturnStatusTransitions(t *testing.T) {
	assert.True(t, SalesReturnPending.CanTransitionTo(SalesReturnApproved))
	assert.True(t, SalesReturnPending.CanTransitionTo(SalesReturnProcessed))
	assert.True(t, SalesReturnPending.CanTransitionTo(SalesReturnCancelled))
	assert.True(t, SalesReturnApproved.CanTransitionTo(SalesReturnProcessed))
	assert.True(t, SalesReturnApproved.CanTransitionTo(SalesReturnPending))

	// PROCESSED and CANCELLED freeze the return.
	assert.False(t, SalesReturnProcessed.CanTransitionTo(SalesReturnCancelled))
	assert.False(t, SalesReturnProcessed.CanTransitionTo(SalesReturnPending))
	assert.False(t, SalesReturnCancelled.CanTransitionTo(SalesReturnProcessed))

	assert.False(t, SalesReturnPending.CanTransitionTo(SalesReturnPending))
	assert.False(t, SalesReturnPending.CanTransitionTo(SalesReturnStatus("BOGUS")))
}

func TestSalesReturnStatusTerminal(t *testing.T) {
	assert.False(t, SalesReturnPending.Terminal())
	assert.False(t, SalesReturnApproved.Terminal())
	assert.True(t, SalesReturnProcessed.Terminal())
	assert.True(t, SalesReturnCancelled.Terminal())
}

func TestSalesReturnStatusCountsTowardReturned(t *testing.T) {
	assert.True(t, SalesReturnPending.CountsTowardReturned())
	assert.True(t, SalesReturnProcessed.CountsTowardReturned())
	assert.False(t, SalesReturnCancelled.CountsTowardReturned())
}
