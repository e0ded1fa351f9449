package bookings

import "time"

type BookingResponse struct {
	ID             string        `json:"id"`
	BookingID      string        `json:"booking_id"`
	EventID        string        `json:"event_id"`
	EventTitle     string        `json:"event_title,omitempty"`
	UserID         string        `json:"user_id,omitempty"`
	Origin         BookingOrigin `json:"origin"`
	SeatCount      int           `json:"seat_count"`
	TicketCounts   TicketCounts  `json:"ticket_counts"`
	MealCounts     MealCounts    `json:"meal_counts"`
	UnitPrice      float64       `json:"unit_price"`
	GrossAmount    float64       `json:"gross_amount"`
	DiscountCode   string        `json:"discount_code,omitempty"`
	DiscountAmount float64       `json:"discount_amount"`
	FinalAmount    float64       `json:"final_amount"`
	Status         Status        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	QRCode         string        `json:"qr_code,omitempty"`
	QRScanLimit    int           `json:"qr_scan_limit"`
	QRScanCount    int           `json:"qr_scan_count"`
	RemainingScans int           `json:"remaining_scans"`
	GuestDetails   *GuestDetails `json:"guest_details,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:             b.ID.String(),
		BookingID:      b.BookingID,
		EventID:        b.EventID.String(),
		Origin:         b.Origin,
		SeatCount:      b.SeatCount,
		TicketCounts:   b.TicketCounts,
		MealCounts:     b.MealCounts,
		UnitPrice:      b.UnitPrice,
		GrossAmount:    b.GrossAmount,
		DiscountCode:   b.DiscountCode,
		DiscountAmount: b.DiscountAmount,
		FinalAmount:    b.FinalAmount,
		Status:         b.Status,
		PaymentStatus:  b.PaymentStatus,
		PaymentMethod:  b.PaymentMethod,
		QRCode:         b.QRCode,
		QRScanLimit:    b.QRScanLimit,
		QRScanCount:    b.QRScanCount,
		RemainingScans: b.RemainingScans(),
		CreatedAt:      b.CreatedAt,
	}
	if b.UserID != nil {
		resp.UserID = b.UserID.String()
	}
	if b.Event.Title != "" {
		resp.EventTitle = b.Event.Title
	}
	if b.GuestDetails.Name != "" {
		gd := b.GuestDetails
		resp.GuestDetails = &gd
	}
	return resp
}

// PaymentOrderResponse is returned by InitiatePayment for the client to hand
// to the gateway checkout.
type PaymentOrderResponse struct {
	BookingID string  `json:"booking_id"`
	OrderID   string  `json:"order_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// ScanResponse is the operator feedback payload for a successful gate scan.
type ScanResponse struct {
	BookingID      string    `json:"booking_id"`
	EventID        string    `json:"event_id"`
	SeatCount      int       `json:"seat_count"`
	ScanCount      int       `json:"scan_count"`
	ScanLimit      int       `json:"scan_limit"`
	RemainingScans int       `json:"remaining_scans"`
	ScannedAt      time.Time `json:"scanned_at"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
