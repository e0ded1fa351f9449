package events

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"srsevents/pkg/cache"
	"srsevents/pkg/logger"
)

type Service interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest, createdBy uuid.UUID) (*EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req *UpdateEventRequest, modifiedBy uuid.UUID) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, query *EventListQuery, publishedOnly bool) (*PaginatedEvents, error)
	PublishEvent(ctx context.Context, id uuid.UUID, modifiedBy uuid.UUID) (*EventResponse, error)

	// Ledger passthroughs used by the bookings service.
	GetEventModel(ctx context.Context, id uuid.UUID) (*Event, error)
	ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error
	ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error
	AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{repo: repo, cache: cacheService, cacheTTL: cacheTTL}
}

func eventCacheKey(id uuid.UUID) string {
	return "event:" + id.String()
}

func (s *service) validateDatesAndPrices(start, end time.Time, userPrice, memberPrice, guestPrice float64) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	if memberPrice > userPrice {
		return fmt.Errorf("%w: member price cannot exceed user price", ErrValidation)
	}
	_ = guestPrice // no tier constraint on guest pricing
	return nil
}

func (s *service) CreateEvent(ctx context.Context, req *CreateEventRequest, createdBy uuid.UUID) (*EventResponse, error) {
	if err := s.validateDatesAndPrices(req.StartDate, req.EndDate, req.UserPrice, req.MemberPrice, req.GuestPrice); err != nil {
		return nil, err
	}

	event := &Event{
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		Location:            req.Location,
		Venue:               req.Venue,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		BannerImage:         req.BannerImage,
		HasRefreshments:     req.HasRefreshments,
		UserPrice:           req.UserPrice,
		MemberPrice:         req.MemberPrice,
		GuestPrice:          req.GuestPrice,
		KidPrice:            req.KidPrice,
		MaxCapacity:         req.MaxCapacity,
		MaxTicketsPerUser:   req.MaxTicketsPerUser,
		MaxTicketsPerMember: req.MaxTicketsPerMember,
		MaxTicketsPerGuest:  req.MaxTicketsPerGuest,
		Status:              StatusDraft,
		IsActive:            true,
		CreatedBy:           createdBy,
	}
	if event.MaxTicketsPerUser == 0 {
		event.MaxTicketsPerUser = 5
	}
	if event.MaxTicketsPerMember == 0 {
		event.MaxTicketsPerMember = 10
	}
	if event.MaxTicketsPerGuest == 0 {
		event.MaxTicketsPerGuest = 3
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	logger.Info("event created", "event_id", event.ID.String(), "title", event.Title)
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	var cached EventResponse
	if err := s.cache.Get(ctx, eventCacheKey(id), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("event cache read failed", "event_id", id.String(), "error", err)
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := event.ToResponse()
	if err := s.cache.Set(ctx, eventCacheKey(id), resp, s.cacheTTL); err != nil {
		logger.Warn("event cache write failed", "event_id", id.String(), "error", err)
	}
	return &resp, nil
}

func (s *service) GetEventModel(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req *UpdateEventRequest, modifiedBy uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if req.BannerImage != nil {
		event.BannerImage = *req.BannerImage
	}
	if req.HasRefreshments != nil {
		event.HasRefreshments = *req.HasRefreshments
	}
	if req.UserPrice != nil {
		event.UserPrice = *req.UserPrice
	}
	if req.MemberPrice != nil {
		event.MemberPrice = *req.MemberPrice
	}
	if req.GuestPrice != nil {
		event.GuestPrice = *req.GuestPrice
	}
	if req.KidPrice != nil {
		event.KidPrice = *req.KidPrice
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < event.BookedSeats {
			return nil, fmt.Errorf("%w: max capacity cannot be reduced below %d already-booked seats", ErrValidation, event.BookedSeats)
		}
		event.MaxCapacity = *req.MaxCapacity
	}
	if req.Status != nil {
		next := EventStatus(*req.Status)
		if !next.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
		}
		event.Status = next
	}

	if err := s.validateDatesAndPrices(event.StartDate, event.EndDate, event.UserPrice, event.MemberPrice, event.GuestPrice); err != nil {
		return nil, err
	}

	event.LastModifiedBy = &modifiedBy
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	logger.Info("event deleted", "event_id", id.String())
	return nil
}

func (s *service) ListEvents(ctx context.Context, query *EventListQuery, publishedOnly bool) (*PaginatedEvents, error) {
	events, total, err := s.repo.List(ctx, query, publishedOnly)
	if err != nil {
		return nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	return &PaginatedEvents{
		Events:     responses,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *service) PublishEvent(ctx context.Context, id uuid.UUID, modifiedBy uuid.UUID) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft events can be published", ErrValidation)
	}

	event.Status = StatusPublished
	event.LastModifiedBy = &modifiedBy
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	logger.Info("event published", "event_id", id.String())
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	if err := s.repo.ReserveSeats(ctx, eventID, seats); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	return nil
}

func (s *service) ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	if err := s.repo.ReleaseSeats(ctx, eventID, seats); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	return nil
}

func (s *service) AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error {
	if err := s.repo.AdjustSeats(ctx, eventID, delta); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	return nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, eventCacheKey(id)); err != nil {
		logger.Warn("event cache invalidation failed", "event_id", id.String(), "error", err)
	}
}
