package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPendingApproval, StatusPending},
		{StatusPendingApproval, StatusRejected},
		{StatusPendingApproval, StatusCancelled},
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransition(tr.to), "%s -> %s should be legal", tr.from, tr.to)
	}

	forbidden := []struct {
		from, to Status
	}{
		{StatusPending, StatusCompleted}, // cannot complete without confirming
		{StatusPending, StatusRejected},  // rejection is a sponsorship decision
		{StatusConfirmed, StatusPending}, // no going back to unpaid
		{StatusCancelled, StatusPending}, // terminal
		{StatusCancelled, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusRejected, StatusPending},
		{StatusPendingApproval, StatusConfirmed}, // must be approved first
	}
	for _, tr := range forbidden {
		assert.False(t, tr.from.CanTransition(tr.to), "%s -> %s should be illegal", tr.from, tr.to)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}

func TestCanBeScanned(t *testing.T) {
	base := Booking{
		Status:        StatusConfirmed,
		PaymentStatus: PaymentCompleted,
		QRScanLimit:   4,
		QRScanCount:   0,
	}

	t.Run("confirmed paid under quota scans", func(t *testing.T) {
		b := base
		assert.True(t, b.CanBeScanned())
		assert.Equal(t, 4, b.RemainingScans())
	})

	t.Run("quota exhausted blocks", func(t *testing.T) {
		b := base
		b.QRScanCount = 4
		assert.False(t, b.CanBeScanned())
		assert.Equal(t, 0, b.RemainingScans())
		assert.ErrorIs(t, b.scanRejectionReason(), ErrScanQuotaExhausted)
	})

	t.Run("unconfirmed blocks even under quota", func(t *testing.T) {
		b := base
		b.Status = StatusPending
		assert.False(t, b.CanBeScanned())
		assert.ErrorIs(t, b.scanRejectionReason(), ErrScanNotConfirmed)
	})

	t.Run("unpaid blocks", func(t *testing.T) {
		b := base
		b.PaymentStatus = PaymentPending
		assert.False(t, b.CanBeScanned())
		assert.ErrorIs(t, b.scanRejectionReason(), ErrScanUnpaid)
	})

	t.Run("not-confirmed reason wins over quota", func(t *testing.T) {
		b := base
		b.Status = StatusCancelled
		b.QRScanCount = 4
		assert.ErrorIs(t, b.scanRejectionReason(), ErrScanNotConfirmed)
	})
}

func TestOriginDispatch(t *testing.T) {
	assert.True(t, OriginGuest.RequiresApproval())
	assert.False(t, OriginUser.RequiresApproval())
	assert.False(t, OriginMember.RequiresApproval())
	assert.False(t, OriginOffline.RequiresApproval())

	assert.False(t, OriginOffline.IsOnlinePaid())
	assert.True(t, OriginUser.IsOnlinePaid())

	assert.False(t, BookingOrigin("walkup").IsValid())
	assert.True(t, OriginOffline.IsValid())
}
