package notifications

import (
	"context"
	"fmt"

	"srsevents/internal/bookings"
	"srsevents/internal/users"
	"srsevents/pkg/logger"
)

// Service fans booking lifecycle events out as emails. With Kafka enabled
// messages go through the topic and the consumer workers; without it they
// are sent inline. Either way senders treat delivery as best effort.
type Service struct {
	producer Producer
	email    EmailSender
	users    users.Repository
}

func NewService(producer Producer, email EmailSender, userRepo users.Repository) *Service {
	return &Service{producer: producer, email: email, users: userRepo}
}

func (s *Service) dispatch(ctx context.Context, msg *Message) error {
	if s.producer != nil {
		return s.producer.Publish(ctx, msg)
	}
	return s.email.Send(ctx, msg)
}

// recipient picks the addressable contact for a booking: the account holder
// when one exists, otherwise the guest/walk-in contact details.
func recipient(b *bookings.Booking) (email, name string) {
	if b.User != nil && b.User.Email != "" {
		return b.User.Email, b.User.FullName()
	}
	return b.GuestDetails.Email, b.GuestDetails.Name
}

func (s *Service) BookingConfirmed(ctx context.Context, b *bookings.Booking) error {
	email, name := recipient(b)
	if email == "" {
		logger.Debug("skipping confirmation email, no recipient address",
			"booking_id", b.BookingID)
		return nil
	}

	msg := NewMessage(TypeBookingConfirmed, email, name,
		fmt.Sprintf("Booking %s confirmed", b.BookingID),
		map[string]interface{}{
			"Name":       name,
			"BookingID":  b.BookingID,
			"EventTitle": b.Event.Title,
			"SeatCount":  b.SeatCount,
			"Amount":     fmt.Sprintf("%.2f", b.FinalAmount),
		})
	msg.BookingID = b.BookingID
	msg.EventID = &b.EventID
	return s.dispatch(ctx, msg)
}

// SponsorshipRequested tells the sponsoring member a guest booking is
// waiting for their approval. The guest gets no mail until the member acts.
func (s *Service) SponsorshipRequested(ctx context.Context, b *bookings.Booking) error {
	if b.SponsoringMemberID == nil || s.users == nil {
		return nil
	}
	sponsor, err := s.users.GetByID(ctx, *b.SponsoringMemberID)
	if err != nil {
		logger.Warn("skipping sponsorship email, sponsor lookup failed",
			"booking_id", b.BookingID, "error", err)
		return nil
	}

	msg := NewMessage(TypeSponsorshipPending, sponsor.Email, sponsor.FullName(),
		fmt.Sprintf("Guest booking %s awaits your approval", b.BookingID),
		map[string]interface{}{
			"Name":       sponsor.FullName(),
			"BookingID":  b.BookingID,
			"EventTitle": b.Event.Title,
			"GuestName":  b.GuestDetails.Name,
			"SeatCount":  b.SeatCount,
		})
	msg.BookingID = b.BookingID
	msg.EventID = &b.EventID
	return s.dispatch(ctx, msg)
}

func (s *Service) BookingCancelled(ctx context.Context, b *bookings.Booking) error {
	email, name := recipient(b)
	if email == "" {
		logger.Debug("skipping cancellation email, no recipient address",
			"booking_id", b.BookingID)
		return nil
	}

	data := map[string]interface{}{
		"Name":       name,
		"BookingID":  b.BookingID,
		"EventTitle": b.Event.Title,
	}
	if b.PaymentDetails.RefundAmount > 0 {
		data["RefundAmount"] = fmt.Sprintf("%.2f", b.PaymentDetails.RefundAmount)
	}

	msg := NewMessage(TypeBookingCancelled, email, name,
		fmt.Sprintf("Booking %s cancelled", b.BookingID), data)
	msg.BookingID = b.BookingID
	msg.EventID = &b.EventID
	return s.dispatch(ctx, msg)
}
