package bookings

import (
	"fmt"
	"math"

	"srsevents/internal/events"
)

// discountPercents maps promo codes to their percentage off the gross
// amount. Unknown codes resolve to 0% rather than erroring, so a mistyped
// code books at full price instead of failing the request. This table is the
// single source of truth for discount policy.
var discountPercents = map[string]float64{
	"EARLYBIRD":  10,
	"MEMBER20":   20,
	"FAMILY15":   15,
	"CORPORATE5": 5,
}

// DiscountPercent returns the percentage for a code, 0 for unknown or empty.
func DiscountPercent(code string) float64 {
	return discountPercents[code]
}

// TicketCounts is the per-category ticket breakdown of an offline booking.
type TicketCounts struct {
	Member int `json:"member_count"`
	Guest  int `json:"guest_count"`
	Kid    int `json:"kid_count"`
}

func (t TicketCounts) Total() int {
	return t.Member + t.Guest + t.Kid
}

// PriceBreakdown is the full monetary derivation for a booking, computed
// once at creation and stored on the row. Amounts are rupees rounded to two
// decimals.
type PriceBreakdown struct {
	UnitPrice       float64 `json:"unit_price"`
	GrossAmount     float64 `json:"gross_amount"`
	DiscountCode    string  `json:"discount_code,omitempty"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	FinalAmount     float64 `json:"final_amount"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func applyDiscount(gross float64, code string) (float64, float64, float64) {
	percent := DiscountPercent(code)
	discount := round2(gross * percent / 100)
	return percent, discount, round2(gross - discount)
}

// CalculateOnlinePrice prices a single-category online booking: every seat
// pays the origin's tier price. Pure; callers validate counts upstream.
func CalculateOnlinePrice(event *events.Event, origin BookingOrigin, seatCount int, discountCode string) (PriceBreakdown, error) {
	if seatCount <= 0 {
		return PriceBreakdown{}, fmt.Errorf("%w: seat count must be positive", ErrValidationFailed)
	}

	unit := event.UnitPriceFor(origin.String())
	gross := round2(unit * float64(seatCount))
	percent, discount, final := applyDiscount(gross, discountCode)

	return PriceBreakdown{
		UnitPrice:       unit,
		GrossAmount:     gross,
		DiscountCode:    discountCode,
		DiscountPercent: percent,
		DiscountAmount:  discount,
		FinalAmount:     final,
	}, nil
}

// CalculateCategoryPrice prices an offline booking from per-category counts:
// gross = member*memberPrice + guest*guestPrice + kid*kidPrice, then the
// discount applies to the combined gross.
func CalculateCategoryPrice(event *events.Event, counts TicketCounts, discountCode string) (PriceBreakdown, error) {
	if counts.Member < 0 || counts.Guest < 0 || counts.Kid < 0 {
		return PriceBreakdown{}, fmt.Errorf("%w: ticket counts cannot be negative", ErrValidationFailed)
	}
	if counts.Total() == 0 {
		return PriceBreakdown{}, fmt.Errorf("%w: booking must include at least one ticket", ErrValidationFailed)
	}

	gross := round2(event.MemberPrice*float64(counts.Member) +
		event.GuestPrice*float64(counts.Guest) +
		event.KidPrice*float64(counts.Kid))
	percent, discount, final := applyDiscount(gross, discountCode)

	return PriceBreakdown{
		UnitPrice:       event.MemberPrice,
		GrossAmount:     gross,
		DiscountCode:    discountCode,
		DiscountPercent: percent,
		DiscountAmount:  discount,
		FinalAmount:     final,
	}, nil
}
