package bookings

import "github.com/google/uuid"

type CreateBookingRequest struct {
	EventID      string `json:"event_id" binding:"required,uuid"`
	SeatCount    int    `json:"seat_count" binding:"required,min=1"`
	DiscountCode string `json:"discount_code" binding:"omitempty,max=30"`

	// Guest sponsorship fields, required when booking as a guest.
	SponsoringMemberID string `json:"sponsoring_member_id" binding:"omitempty,uuid"`
	GuestName          string `json:"guest_name" binding:"omitempty,min=2,max=100"`
	GuestEmail         string `json:"guest_email" binding:"omitempty,email"`
	GuestPhone         string `json:"guest_phone" binding:"omitempty,min=8,max=15"`
}

type MealCountsRequest struct {
	MemberVeg    int `json:"member_veg" binding:"min=0"`
	MemberNonVeg int `json:"member_nonveg" binding:"min=0"`
	GuestVeg     int `json:"guest_veg" binding:"min=0"`
	GuestNonVeg  int `json:"guest_nonveg" binding:"min=0"`
	KidVeg       int `json:"kid_veg" binding:"min=0"`
	KidNonVeg    int `json:"kid_nonveg" binding:"min=0"`
}

func (r MealCountsRequest) toModel() MealCounts {
	return MealCounts{
		MemberVeg:    r.MemberVeg,
		MemberNonVeg: r.MemberNonVeg,
		GuestVeg:     r.GuestVeg,
		GuestNonVeg:  r.GuestNonVeg,
		KidVeg:       r.KidVeg,
		KidNonVeg:    r.KidNonVeg,
	}
}

type CreateOfflineBookingRequest struct {
	EventID      string            `json:"event_id" binding:"required,uuid"`
	MemberCount  int               `json:"member_count" binding:"min=0"`
	GuestCount   int               `json:"guest_count" binding:"min=0"`
	KidCount     int               `json:"kid_count" binding:"min=0"`
	MealCounts   MealCountsRequest `json:"meal_counts"`
	DiscountCode string            `json:"discount_code" binding:"omitempty,max=30"`

	// Contact for the walk-in party.
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"required,min=8,max=15"`

	// Manually recorded payment state. Paid requires a UTR reference and an
	// amount matching the computed final amount exactly.
	IsPaid        bool    `json:"is_paid"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash upi bank_transfer other"`
	UTRNumber     string  `json:"utr_number" binding:"omitempty,max=50"`
	AmountPaid    float64 `json:"amount_paid" binding:"min=0"`
}

type EditOfflineBookingRequest struct {
	MemberCount  *int               `json:"member_count" binding:"omitempty,min=0"`
	GuestCount   *int               `json:"guest_count" binding:"omitempty,min=0"`
	KidCount     *int               `json:"kid_count" binding:"omitempty,min=0"`
	MealCounts   *MealCountsRequest `json:"meal_counts"`
	DiscountCode *string            `json:"discount_code" binding:"omitempty,max=30"`
	Name         *string            `json:"name" binding:"omitempty,min=2,max=100"`
	Email        *string            `json:"email" binding:"omitempty,email"`
	Phone        *string            `json:"phone" binding:"omitempty,min=8,max=15"`

	// Settlement adjustment for already-paid bookings whose amount changes.
	AmountPaid *float64 `json:"amount_paid" binding:"omitempty,min=0"`
	UTRNumber  *string  `json:"utr_number" binding:"omitempty,max=50"`
}

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

type VerifyPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

type ScanQRRequest struct {
	QRCode   string `json:"qr_code" binding:"required,len=32,hexadecimal"`
	Location string `json:"location" binding:"omitempty,max=100"`
	Notes    string `json:"notes" binding:"omitempty,max=500"`
}

type BookingListQuery struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	EventID       string `form:"event_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=pending_approval pending rejected confirmed cancelled completed"`
	Origin        string `form:"origin" binding:"omitempty,oneof=user member guest offline"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending completed failed refunded"`
	Search        string `form:"search"`
}

// sponsoringMemberUUID parses the optional sponsor field; callers have
// already validated format via binding.
func (r *CreateBookingRequest) sponsoringMemberUUID() *uuid.UUID {
	if r.SponsoringMemberID == "" {
		return nil
	}
	id, err := uuid.Parse(r.SponsoringMemberID)
	if err != nil {
		return nil
	}
	return &id
}
