package events

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title           string    `json:"title" gorm:"not null;size:200"`
	Description     string    `json:"description" gorm:"type:text"`
	Category        string    `json:"category" gorm:"size:50"`
	Location        string    `json:"location" gorm:"not null;size:255"`
	Venue           string    `json:"venue" gorm:"size:255"`
	StartDate       time.Time `json:"start_date" gorm:"not null"`
	EndDate         time.Time `json:"end_date" gorm:"not null"`
	BannerImage     string    `json:"banner_image" gorm:"size:500"`
	HasRefreshments bool      `json:"has_refreshments" gorm:"default:false"`

	// Price tiers by booking origin.
	UserPrice   float64 `json:"user_price" gorm:"not null;check:user_price >= 0"`
	MemberPrice float64 `json:"member_price" gorm:"not null;check:member_price >= 0"`
	GuestPrice  float64 `json:"guest_price" gorm:"not null;check:guest_price >= 0"`
	KidPrice    float64 `json:"kid_price" gorm:"default:0;check:kid_price >= 0"`

	// Seat inventory. BookedSeats is mutated only through the ledger
	// operations in the repository (Reserve/Release/Adjust).
	MaxCapacity int `json:"max_capacity" gorm:"not null;check:max_capacity > 0"`
	BookedSeats int `json:"booked_seats" gorm:"default:0;check:booked_seats >= 0"`

	// Per-origin limits on tickets in a single booking.
	MaxTicketsPerUser   int `json:"max_tickets_per_user" gorm:"default:5"`
	MaxTicketsPerMember int `json:"max_tickets_per_member" gorm:"default:10"`
	MaxTicketsPerGuest  int `json:"max_tickets_per_guest" gorm:"default:3"`

	Status   EventStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	IsActive bool        `json:"is_active" gorm:"default:true"`

	CreatedBy      uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by" gorm:"type:uuid"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

// AvailableSeats never reports negative, even if a bug elsewhere oversold.
func (e *Event) AvailableSeats() int {
	available := e.MaxCapacity - e.BookedSeats
	if available < 0 {
		return 0
	}
	return available
}

func (e *Event) IsSoldOut() bool {
	return e.BookedSeats >= e.MaxCapacity
}

// MaxTicketsFor returns the per-booking ticket limit for a booking origin.
// The origin string matches bookings.BookingOrigin values.
func (e *Event) MaxTicketsFor(origin string) int {
	switch origin {
	case "member", "offline":
		return e.MaxTicketsPerMember
	case "guest":
		return e.MaxTicketsPerGuest
	default:
		return e.MaxTicketsPerUser
	}
}

// UnitPriceFor returns the price tier for a booking origin. Offline bookings
// are staff-entered on behalf of members and use the member tier.
func (e *Event) UnitPriceFor(origin string) float64 {
	switch origin {
	case "member", "offline":
		return e.MemberPrice
	case "guest":
		return e.GuestPrice
	default:
		return e.UserPrice
	}
}

type EventResponse struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Location        string      `json:"location"`
	Venue           string      `json:"venue"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	BannerImage     string      `json:"banner_image"`
	HasRefreshments bool        `json:"has_refreshments"`
	UserPrice       float64     `json:"user_price"`
	MemberPrice     float64     `json:"member_price"`
	GuestPrice      float64     `json:"guest_price"`
	KidPrice        float64     `json:"kid_price"`
	MaxCapacity     int         `json:"max_capacity"`
	BookedSeats     int         `json:"booked_seats"`
	AvailableSeats  int         `json:"available_seats"`
	IsSoldOut       bool        `json:"is_sold_out"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=200"`
	Description     string    `json:"description" binding:"max=5000"`
	Category        string    `json:"category" binding:"omitempty,oneof=Conference Workshop Seminar Concert Sports Exhibition Other"`
	Location        string    `json:"location" binding:"required,min=3,max=255"`
	Venue           string    `json:"venue" binding:"max=255"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	BannerImage     string    `json:"banner_image" binding:"omitempty,url"`
	HasRefreshments bool      `json:"has_refreshments"`

	UserPrice   float64 `json:"user_price" binding:"min=0"`
	MemberPrice float64 `json:"member_price" binding:"min=0"`
	GuestPrice  float64 `json:"guest_price" binding:"min=0"`
	KidPrice    float64 `json:"kid_price" binding:"min=0"`

	MaxCapacity         int `json:"max_capacity" binding:"required,min=1,max=100000"`
	MaxTicketsPerUser   int `json:"max_tickets_per_user" binding:"omitempty,min=1"`
	MaxTicketsPerMember int `json:"max_tickets_per_member" binding:"omitempty,min=1"`
	MaxTicketsPerGuest  int `json:"max_tickets_per_guest" binding:"omitempty,min=1"`
}

type UpdateEventRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=3,max=200"`
	Description     *string    `json:"description" binding:"omitempty,max=5000"`
	Category        *string    `json:"category" binding:"omitempty,oneof=Conference Workshop Seminar Concert Sports Exhibition Other"`
	Location        *string    `json:"location" binding:"omitempty,min=3,max=255"`
	Venue           *string    `json:"venue" binding:"omitempty,max=255"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	BannerImage     *string    `json:"banner_image" binding:"omitempty,url"`
	HasRefreshments *bool      `json:"has_refreshments"`
	UserPrice       *float64   `json:"user_price" binding:"omitempty,min=0"`
	MemberPrice     *float64   `json:"member_price" binding:"omitempty,min=0"`
	GuestPrice      *float64   `json:"guest_price" binding:"omitempty,min=0"`
	KidPrice        *float64   `json:"kid_price" binding:"omitempty,min=0"`
	MaxCapacity     *int       `json:"max_capacity" binding:"omitempty,min=1,max=100000"`
	Status          *string    `json:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type EventListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Location string `form:"location"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Status   string `form:"status" binding:"omitempty,oneof=draft published cancelled completed"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:              e.ID.String(),
		Title:           e.Title,
		Description:     e.Description,
		Category:        e.Category,
		Location:        e.Location,
		Venue:           e.Venue,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		BannerImage:     e.BannerImage,
		HasRefreshments: e.HasRefreshments,
		UserPrice:       e.UserPrice,
		MemberPrice:     e.MemberPrice,
		GuestPrice:      e.GuestPrice,
		KidPrice:        e.KidPrice,
		MaxCapacity:     e.MaxCapacity,
		BookedSeats:     e.BookedSeats,
		AvailableSeats:  e.AvailableSeats(),
		IsSoldOut:       e.IsSoldOut(),
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
