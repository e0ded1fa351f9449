package bookings

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"srsevents/internal/events"
	"srsevents/internal/users"
)

// MealCounts is the per-category veg/non-veg meal breakdown for catered
// events. The sum of all six must equal the booking's seat count at creation
// and on every edit.
type MealCounts struct {
	MemberVeg    int `json:"member_veg" gorm:"default:0"`
	MemberNonVeg int `json:"member_nonveg" gorm:"default:0"`
	GuestVeg     int `json:"guest_veg" gorm:"default:0"`
	GuestNonVeg  int `json:"guest_nonveg" gorm:"default:0"`
	KidVeg       int `json:"kid_veg" gorm:"default:0"`
	KidNonVeg    int `json:"kid_nonveg" gorm:"default:0"`
}

func (m MealCounts) Total() int {
	return m.MemberVeg + m.MemberNonVeg + m.GuestVeg + m.GuestNonVeg + m.KidVeg + m.KidNonVeg
}

// PaymentDetails carries the gateway and settlement references for a
// booking. For razorpay these are filled by InitiatePayment/VerifyPayment;
// for offline methods staff record the UTR by hand.
type PaymentDetails struct {
	OrderID      string     `json:"order_id,omitempty" gorm:"column:payment_order_id"`
	PaymentID    string     `json:"payment_id,omitempty" gorm:"column:payment_payment_id"`
	Signature    string     `json:"-" gorm:"column:payment_signature"`
	UTRNumber    string     `json:"utr_number,omitempty" gorm:"column:payment_utr_number"`
	AmountPaid   float64    `json:"amount_paid" gorm:"column:payment_amount_paid;default:0"`
	PaymentDate  *time.Time `json:"payment_date,omitempty" gorm:"column:payment_date"`
	RefundID     string     `json:"refund_id,omitempty" gorm:"column:payment_refund_id"`
	RefundAmount float64    `json:"refund_amount,omitempty" gorm:"column:payment_refund_amount;default:0"`
	RefundDate   *time.Time `json:"refund_date,omitempty" gorm:"column:payment_refund_date"`
}

// GuestDetails identifies a sponsored guest who may not have an account.
type GuestDetails struct {
	Name  string `json:"name,omitempty" gorm:"column:guest_name"`
	Email string `json:"email,omitempty" gorm:"column:guest_email"`
	Phone string `json:"phone,omitempty" gorm:"column:guest_phone"`
}

type Booking struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookingID string    `json:"booking_id" gorm:"uniqueIndex;not null;size:30"`

	EventID uuid.UUID    `json:"event_id" gorm:"type:uuid;not null;index"`
	Event   events.Event `json:"-" gorm:"foreignKey:EventID"`

	// UserID is nullable: offline bookings and unlinked guests have none.
	UserID *uuid.UUID  `json:"user_id,omitempty" gorm:"type:uuid;index"`
	User   *users.User `json:"-" gorm:"foreignKey:UserID"`

	Origin BookingOrigin `json:"origin" gorm:"type:varchar(10);not null;index"`

	SeatCount    int          `json:"seat_count" gorm:"not null;check:seat_count > 0"`
	TicketCounts TicketCounts `json:"ticket_counts" gorm:"embedded;embeddedPrefix:tickets_"`
	MealCounts   MealCounts   `json:"meal_counts" gorm:"embedded;embeddedPrefix:meals_"`

	UnitPrice       float64 `json:"unit_price" gorm:"not null"`
	GrossAmount     float64 `json:"gross_amount" gorm:"not null"`
	DiscountCode    string  `json:"discount_code,omitempty" gorm:"size:30"`
	DiscountPercent float64 `json:"discount_percent" gorm:"default:0"`
	DiscountAmount  float64 `json:"discount_amount" gorm:"default:0"`
	FinalAmount     float64 `json:"final_amount" gorm:"not null"`

	Status        Status        `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`

	PaymentDetails PaymentDetails `json:"payment_details" gorm:"embedded"`

	// QR entry token. Immutable once issued; the scan quota equals the seat
	// count so a group ticket admits N people across N scans.
	QRCode      string `json:"qr_code" gorm:"uniqueIndex;not null;size:32"`
	QRScanLimit int    `json:"qr_scan_limit" gorm:"not null"`
	QRScanCount int    `json:"qr_scan_count" gorm:"default:0"`

	QRScans []QRScan `json:"qr_scans,omitempty" gorm:"foreignKey:BookingID;references:ID"`

	// Guest sponsorship.
	SponsoringMemberID *uuid.UUID   `json:"sponsoring_member_id,omitempty" gorm:"type:uuid;index"`
	GuestDetails       GuestDetails `json:"guest_details,omitempty" gorm:"embedded"`

	CancellationReason string     `json:"cancellation_reason,omitempty" gorm:"size:500"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID `json:"cancelled_by,omitempty" gorm:"type:uuid"`

	CreatedBy      *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}

// QRScan is one entry in a booking's append-only scan log.
type QRScan struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BookingID uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;index"`
	ScannedAt time.Time  `json:"scanned_at" gorm:"not null;autoCreateTime"`
	ScannedBy *uuid.UUID `json:"scanned_by,omitempty" gorm:"type:uuid"`
	Location  string     `json:"location,omitempty" gorm:"size:100"`
	Notes     string     `json:"notes,omitempty" gorm:"size:500"`
}

func (QRScan) TableName() string {
	return "booking_qr_scans"
}

// RemainingScans never reports negative.
func (b *Booking) RemainingScans() int {
	remaining := b.QRScanLimit - b.QRScanCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CanBeScanned is the gate-entry predicate: confirmed, paid, and under quota.
func (b *Booking) CanBeScanned() bool {
	return b.Status == StatusConfirmed &&
		b.PaymentStatus == PaymentCompleted &&
		b.QRScanCount < b.QRScanLimit
}

// scanRejectionReason explains a failed CanBeScanned for operator feedback.
// Order matters: an unconfirmed booking is reported as such even if its
// quota would also fail.
func (b *Booking) scanRejectionReason() error {
	switch {
	case b.Status != StatusConfirmed:
		return ErrScanNotConfirmed
	case b.PaymentStatus != PaymentCompleted:
		return ErrScanUnpaid
	default:
		return ErrScanQuotaExhausted
	}
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

const bookingIDSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingID builds a human-readable booking reference:
// "SRS" + unix millis + 6 random uppercase alphanumerics. Collisions are
// possible in theory; the repository retries on unique violation.
func NewBookingID() (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(bookingIDSuffixChars)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate booking id: %w", err)
		}
		suffix[i] = bookingIDSuffixChars[n.Int64()]
	}
	return fmt.Sprintf("SRS%d%s", time.Now().UnixMilli(), suffix), nil
}

// NewQRToken generates the booking's entry token: 16 random bytes, hex
// encoded. Unique by construction for any realistic volume; the column's
// unique index backstops it.
func NewQRToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate qr token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
