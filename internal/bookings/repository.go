package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByBookingID(ctx context.Context, bookingID string) (*Booking, error)
	GetByQRCode(ctx context.Context, qrCode string) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	ListByUser(ctx context.Context, userID uuid.UUID, query *BookingListQuery) ([]Booking, int64, error)
	List(ctx context.Context, query *BookingListQuery) ([]Booking, int64, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID, query *BookingListQuery) ([]Booking, int64, error)
	ListPendingApprovalsForMember(ctx context.Context, memberID uuid.UUID) ([]Booking, error)

	// Confirm flips status and payment status together in one UPDATE so a
	// confirmed-but-unpaid row can never exist.
	Confirm(ctx context.Context, id uuid.UUID, details *PaymentDetails) error

	// IncrementScanCount is the guarded scan counter: the quota and
	// eligibility checks ride in the WHERE clause, so two simultaneous
	// scans cannot both pass a stale count. Returns the post-increment
	// count, or false when no row qualified.
	IncrementScanCount(ctx context.Context, id uuid.UUID) (int, bool, error)
	AppendScan(ctx context.Context, scan *QRScan) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const createRetries = 3

// Create inserts the booking, regenerating the human booking reference if it
// collides with an existing one.
func (r *repository) Create(ctx context.Context, booking *Booking) error {
	for attempt := 0; attempt < createRetries; attempt++ {
		err := r.db.WithContext(ctx).Create(booking).Error
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			newID, genErr := NewBookingID()
			if genErr != nil {
				return genErr
			}
			booking.BookingID = newID
			continue
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return fmt.Errorf("failed to create booking: booking id collisions exhausted %d attempts", createRetries)
}

func (r *repository) getOne(ctx context.Context, conds ...interface{}) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Preload("Event").First(&booking, conds...).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID string) (*Booking, error) {
	return r.getOne(ctx, "booking_id = ?", bookingID)
}

func (r *repository) GetByQRCode(ctx context.Context, qrCode string) (*Booking, error) {
	booking, err := r.getOne(ctx, "qr_code = ?", qrCode)
	if errors.Is(err, ErrBookingNotFound) {
		return nil, ErrQRCodeNotFound
	}
	return booking, err
}

func (r *repository) Update(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// HardDelete removes an erroneous offline entry and its scan log. Online
// bookings are never hard-deleted; the service enforces that.
func (r *repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&QRScan{}).Error; err != nil {
			return fmt.Errorf("failed to delete scan log: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&Booking{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrBookingNotFound
		}
		return nil
	})
}

func (r *repository) applyFilters(db *gorm.DB, query *BookingListQuery) *gorm.DB {
	if query.EventID != "" {
		db = db.Where("event_id = ?", query.EventID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Origin != "" {
		db = db.Where("origin = ?", query.Origin)
	}
	if query.PaymentStatus != "" {
		db = db.Where("payment_status = ?", query.PaymentStatus)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("booking_id ILIKE ? OR guest_name ILIKE ? OR guest_phone ILIKE ?",
			pattern, pattern, pattern)
	}
	return db
}

func (r *repository) paginate(ctx context.Context, db *gorm.DB, query *BookingListQuery) ([]Booking, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	var bookings []Booking
	err := db.Preload("Event").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, query *BookingListQuery) ([]Booking, int64, error) {
	db := r.applyFilters(r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID), query)
	return r.paginate(ctx, db, query)
}

func (r *repository) List(ctx context.Context, query *BookingListQuery) ([]Booking, int64, error) {
	db := r.applyFilters(r.db.WithContext(ctx).Model(&Booking{}), query)
	return r.paginate(ctx, db, query)
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID, query *BookingListQuery) ([]Booking, int64, error) {
	db := r.applyFilters(r.db.WithContext(ctx).Model(&Booking{}).Where("event_id = ?", eventID), query)
	return r.paginate(ctx, db, query)
}

func (r *repository) ListPendingApprovalsForMember(ctx context.Context, memberID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).Preload("Event").
		Where("sponsoring_member_id = ? AND status = ?", memberID, StatusPendingApproval).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return bookings, nil
}

func (r *repository) Confirm(ctx context.Context, id uuid.UUID, details *PaymentDetails) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":              StatusConfirmed,
			"payment_status":      PaymentCompleted,
			"payment_payment_id":  details.PaymentID,
			"payment_signature":   details.Signature,
			"payment_amount_paid": details.AmountPaid,
			"payment_date":        now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to confirm booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) IncrementScanCount(ctx context.Context, id uuid.UUID) (int, bool, error) {
	// RETURNING hands back the post-increment count so concurrent scans
	// each report a distinct admission number to the gate operator.
	var newCount int
	result := r.db.WithContext(ctx).Raw(
		`UPDATE bookings
		 SET qr_scan_count = qr_scan_count + 1
		 WHERE id = ? AND status = ? AND payment_status = ? AND qr_scan_count < qr_scan_limit
		 RETURNING qr_scan_count`,
		id, StatusConfirmed, PaymentCompleted).Scan(&newCount)
	if result.Error != nil {
		return 0, false, fmt.Errorf("failed to increment scan count: %w", result.Error)
	}
	return newCount, result.RowsAffected > 0, nil
}

func (r *repository) AppendScan(ctx context.Context, scan *QRScan) error {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return fmt.Errorf("failed to append scan log entry: %w", err)
	}
	return nil
}
