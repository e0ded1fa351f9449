package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"srsevents/internal/bookings"
	"srsevents/internal/events"
)

type Repository interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	RevenueSeries(ctx context.Context, interval string, from, to time.Time) ([]RevenuePoint, error)
	EventStats(ctx context.Context, eventID uuid.UUID) (*EventStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&events.Event{}).Where("is_active = ?", true).Count(&stats.TotalEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	if err := db.Model(&events.Event{}).
		Where("is_active = ? AND status = ?", true, events.StatusPublished).
		Count(&stats.PublishedEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count published events: %w", err)
	}

	if err := db.Model(&bookings.Booking{}).Count(&stats.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := db.Model(&bookings.Booking{}).
		Where("status = ?", bookings.StatusConfirmed).
		Count(&stats.ConfirmedBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}
	if err := db.Model(&bookings.Booking{}).
		Where("status = ?", bookings.StatusCancelled).
		Count(&stats.CancelledBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count cancelled bookings: %w", err)
	}
	if err := db.Model(&bookings.Booking{}).
		Where("status = ?", bookings.StatusPendingApproval).
		Count(&stats.PendingApprovals).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	type sums struct {
		Seats    int64
		Scans    int64
		Revenue  float64
		Refunded float64
	}
	var s sums
	err := db.Model(&bookings.Booking{}).
		Select(`COALESCE(SUM(CASE WHEN status NOT IN ('cancelled','rejected') THEN seat_count ELSE 0 END), 0) AS seats,
			COALESCE(SUM(qr_scan_count), 0) AS scans,
			COALESCE(SUM(CASE WHEN payment_status = 'completed' THEN final_amount ELSE 0 END), 0) AS revenue,
			COALESCE(SUM(CASE WHEN payment_status = 'refunded' THEN payment_refund_amount ELSE 0 END), 0) AS refunded`).
		Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking sums: %w", err)
	}
	stats.SeatsBooked = s.Seats
	stats.TotalScans = s.Scans
	stats.TotalRevenue = s.Revenue
	stats.RefundedAmount = s.Refunded

	return stats, nil
}

func (r *repository) RevenueSeries(ctx context.Context, interval string, from, to time.Time) ([]RevenuePoint, error) {
	switch interval {
	case "day", "week", "month":
	default:
		interval = "day"
	}

	var points []RevenuePoint
	err := r.db.WithContext(ctx).Model(&bookings.Booking{}).
		Select(fmt.Sprintf(`DATE_TRUNC('%s', created_at) AS period,
			COUNT(*) AS bookings,
			COALESCE(SUM(final_amount), 0) AS revenue`, interval)).
		Where("payment_status = ? AND created_at BETWEEN ? AND ?", bookings.PaymentCompleted, from, to).
		Group("period").
		Order("period ASC").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build revenue series: %w", err)
	}
	return points, nil
}

func (r *repository) EventStats(ctx context.Context, eventID uuid.UUID) (*EventStats, error) {
	var event events.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, events.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	stats := &EventStats{
		EventID:     event.ID.String(),
		Title:       event.Title,
		MaxCapacity: event.MaxCapacity,
		BookedSeats: event.BookedSeats,
	}
	if event.MaxCapacity > 0 {
		stats.UtilizationPct = float64(event.BookedSeats) / float64(event.MaxCapacity) * 100
	}

	type sums struct {
		Total     int64
		Confirmed int64
		Revenue   float64
		Scans     int64
	}
	var s sums
	err := r.db.WithContext(ctx).Model(&bookings.Booking{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed,
			COALESCE(SUM(CASE WHEN payment_status = 'completed' THEN final_amount ELSE 0 END), 0) AS revenue,
			COALESCE(SUM(qr_scan_count), 0) AS scans`).
		Where("event_id = ?", eventID).
		Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate event bookings: %w", err)
	}
	stats.TotalBookings = s.Total
	stats.ConfirmedBookings = s.Confirmed
	stats.Revenue = s.Revenue
	stats.ScansUsed = s.Scans

	return stats, nil
}
