package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srsevents/internal/events"
)

func pricedEvent() *events.Event {
	return &events.Event{
		UserPrice:   1500,
		MemberPrice: 1000,
		GuestPrice:  2000,
		KidPrice:    500,
	}
}

func TestCalculateOnlinePrice(t *testing.T) {
	event := pricedEvent()

	tests := []struct {
		name      string
		origin    BookingOrigin
		seats     int
		code      string
		wantUnit  float64
		wantGross float64
		wantFinal float64
	}{
		{"user tier full price", OriginUser, 2, "", 1500, 3000, 3000},
		{"member tier full price", OriginMember, 3, "", 1000, 3000, 3000},
		{"guest tier full price", OriginGuest, 1, "", 2000, 2000, 2000},
		{"earlybird takes 10 percent", OriginUser, 2, "EARLYBIRD", 1500, 3000, 2700},
		{"member20 takes 20 percent", OriginMember, 5, "MEMBER20", 1000, 5000, 4000},
		{"unknown code books at full price", OriginUser, 1, "BOGUS50", 1500, 1500, 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateOnlinePrice(event, tt.origin, tt.seats, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUnit, got.UnitPrice)
			assert.Equal(t, tt.wantGross, got.GrossAmount)
			assert.Equal(t, tt.wantFinal, got.FinalAmount)
			assert.Equal(t, tt.wantGross-tt.wantFinal, got.DiscountAmount)
		})
	}

	t.Run("rejects non-positive seat counts", func(t *testing.T) {
		_, err := CalculateOnlinePrice(event, OriginUser, 0, "")
		assert.ErrorIs(t, err, ErrValidationFailed)

		_, err = CalculateOnlinePrice(event, OriginUser, -3, "")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		e := &events.Event{UserPrice: 333.33}
		got, err := CalculateOnlinePrice(e, OriginUser, 3, "EARLYBIRD")
		require.NoError(t, err)
		assert.Equal(t, 999.99, got.GrossAmount)
		assert.Equal(t, 100.0, got.DiscountAmount)
		assert.Equal(t, 899.99, got.FinalAmount)
	})
}

func TestCalculateCategoryPrice(t *testing.T) {
	event := pricedEvent()

	t.Run("sums per-category amounts", func(t *testing.T) {
		got, err := CalculateCategoryPrice(event, TicketCounts{Member: 2, Guest: 1, Kid: 3}, "")
		require.NoError(t, err)
		// 2*1000 + 1*2000 + 3*500
		assert.Equal(t, 5500.0, got.GrossAmount)
		assert.Equal(t, 5500.0, got.FinalAmount)
	})

	t.Run("discount applies to the combined gross", func(t *testing.T) {
		got, err := CalculateCategoryPrice(event, TicketCounts{Member: 1, Kid: 2}, "FAMILY15")
		require.NoError(t, err)
		// gross 2000, 15% off
		assert.Equal(t, 2000.0, got.GrossAmount)
		assert.Equal(t, 300.0, got.DiscountAmount)
		assert.Equal(t, 1700.0, got.FinalAmount)
		assert.Equal(t, 15.0, got.DiscountPercent)
	})

	t.Run("rejects empty bookings", func(t *testing.T) {
		_, err := CalculateCategoryPrice(event, TicketCounts{}, "")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := CalculateCategoryPrice(event, TicketCounts{Member: -1, Guest: 2}, "")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 10.0, DiscountPercent("EARLYBIRD"))
	assert.Equal(t, 0.0, DiscountPercent(""))
	assert.Equal(t, 0.0, DiscountPercent("earlybird")) // codes are case-sensitive
}
