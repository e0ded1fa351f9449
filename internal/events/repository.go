package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query *EventListQuery, publishedOnly bool) ([]Event, int64, error)

	// Seat ledger. All three mutate booked_seats with a single conditional
	// UPDATE so concurrent callers can never oversell capacity.
	ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error
	ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error
	AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, event *Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete soft-deletes by flipping is_active so historical bookings keep
// their event reference.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query *EventListQuery, publishedOnly bool) ([]Event, int64, error) {
	db := r.db.WithContext(ctx).Model(&Event{}).Where("is_active = ?", true)

	if publishedOnly {
		db = db.Where("status = ?", StatusPublished)
	} else if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Location != "" {
		db = db.Where("location ILIKE ?", "%"+query.Location+"%")
	}
	if query.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("start_date >= ?", from)
		}
	}
	if query.DateTo != "" {
		if to, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			db = db.Where("start_date <= ?", to.Add(24*time.Hour))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	var events []Event
	err := db.Order("start_date ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

// ReserveSeats takes seats from the event's remaining capacity. The capacity
// check and the increment happen in one UPDATE, so two bookings racing for
// the last seat cannot both win.
func (r *repository) ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("seat count must be positive, got %d", seats)
	}

	result := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ? AND is_active = ? AND status = ? AND booked_seats + ? <= max_capacity",
			eventID, true, StatusPublished, seats).
		UpdateColumn("booked_seats", gorm.Expr("booked_seats + ?", seats))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// The guarded UPDATE matched nothing. Re-read to tell the caller why.
		event, err := r.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if !event.Status.IsBookable() {
			return ErrEventNotBookable
		}
		return ErrCapacityExceeded
	}
	return nil
}

// ReleaseSeats returns seats to the pool, clamping at zero so a double
// release can never drive booked_seats negative.
func (r *repository) ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	if seats <= 0 {
		return fmt.Errorf("seat count must be positive, got %d", seats)
	}

	result := r.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", eventID).
		UpdateColumn("booked_seats", gorm.Expr("GREATEST(booked_seats - ?, 0)", seats))
	if result.Error != nil {
		return fmt.Errorf("failed to release seats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustSeats applies a signed delta, used when an offline booking is edited
// to a different seat count. Positive deltas go through the same capacity
// guard as ReserveSeats; negative deltas release.
func (r *repository) AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error {
	switch {
	case delta == 0:
		return nil
	case delta > 0:
		result := r.db.WithContext(ctx).Model(&Event{}).
			Where("id = ? AND booked_seats + ? <= max_capacity", eventID, delta).
			UpdateColumn("booked_seats", gorm.Expr("booked_seats + ?", delta))
		if result.Error != nil {
			return fmt.Errorf("failed to adjust seats: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if _, err := r.GetByID(ctx, eventID); err != nil {
				return err
			}
			return ErrCapacityExceeded
		}
		return nil
	default:
		return r.ReleaseSeats(ctx, eventID, -delta)
	}
}
