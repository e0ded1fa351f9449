package analytics

import "time"

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalEvents       int64   `json:"total_events"`
	PublishedEvents   int64   `json:"published_events"`
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	PendingApprovals  int64   `json:"pending_approvals"`
	SeatsBooked       int64   `json:"seats_booked"`
	TotalScans        int64   `json:"total_scans"`
	TotalRevenue      float64 `json:"total_revenue"`
	RefundedAmount    float64 `json:"refunded_amount"`
}

// RevenuePoint is one bucket of the revenue-over-time series.
type RevenuePoint struct {
	Period   time.Time `json:"period"`
	Bookings int64     `json:"bookings"`
	Revenue  float64   `json:"revenue"`
}

// EventStats summarizes one event's booking performance.
type EventStats struct {
	EventID           string  `json:"event_id"`
	Title             string  `json:"title"`
	MaxCapacity       int     `json:"max_capacity"`
	BookedSeats       int     `json:"booked_seats"`
	UtilizationPct    float64 `json:"utilization_pct"`
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	Revenue           float64 `json:"revenue"`
	ScansUsed         int64   `json:"scans_used"`
}

type RevenueQuery struct {
	Interval string `form:"interval" binding:"omitempty,oneof=day week month"`
	From     string `form:"from"`
	To       string `form:"to"`
}
