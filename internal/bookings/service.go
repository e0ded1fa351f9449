package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"srsevents/internal/events"
	"srsevents/internal/payments"
	"srsevents/internal/users"
	"srsevents/pkg/logger"
)

// NotificationSender is the outbound hook for booking lifecycle messages.
// Declared here, consumer-side; internal/notifications provides the Kafka
// backed implementation. Delivery is fire-and-forget: a failed send never
// fails the booking operation.
type NotificationSender interface {
	BookingConfirmed(ctx context.Context, booking *Booking) error
	BookingCancelled(ctx context.Context, booking *Booking) error
	SponsorshipRequested(ctx context.Context, booking *Booking) error
}

type Service interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, role users.Role, req *CreateBookingRequest) (*BookingResponse, error)

	InitiatePayment(ctx context.Context, userID uuid.UUID, bookingID string) (*PaymentOrderResponse, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, req *VerifyPaymentRequest) (*BookingResponse, error)

	CancelBooking(ctx context.Context, actorID uuid.UUID, isAdmin bool, bookingID string, reason string) (*BookingResponse, error)
	CompleteBooking(ctx context.Context, bookingID string) (*BookingResponse, error)

	ScanQR(ctx context.Context, operatorID uuid.UUID, req *ScanQRRequest) (*ScanResponse, error)

	ApproveSponsorship(ctx context.Context, memberID uuid.UUID, bookingID string) (*BookingResponse, error)
	RejectSponsorship(ctx context.Context, memberID uuid.UUID, bookingID string) (*BookingResponse, error)
	ListPendingApprovals(ctx context.Context, memberID uuid.UUID) ([]BookingResponse, error)

	CreateOfflineBooking(ctx context.Context, staffID uuid.UUID, req *CreateOfflineBookingRequest) (*BookingResponse, error)
	EditOfflineBooking(ctx context.Context, staffID uuid.UUID, bookingID string, req *EditOfflineBookingRequest) (*BookingResponse, error)
	DeleteOfflineBooking(ctx context.Context, bookingID string) error
	ListOfflineBookings(ctx context.Context, query *BookingListQuery) (*PaginatedBookings, error)

	GetBooking(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID string) (*BookingResponse, error)
	GetTicket(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID string) ([]byte, ContentType, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query *BookingListQuery) (*PaginatedBookings, error)
	GetAllBookings(ctx context.Context, query *BookingListQuery) (*PaginatedBookings, error)
	GetBookingsByEvent(ctx context.Context, eventID uuid.UUID, query *BookingListQuery) (*PaginatedBookings, error)
}

// Options tunes service behavior from config.
type Options struct {
	Currency             string
	ReleaseRetryAttempts int
	ReleaseRetryDelay    time.Duration
	Renderer             TicketRenderer
}

func (o *Options) withDefaults() {
	if o.Currency == "" {
		o.Currency = "INR"
	}
	if o.ReleaseRetryAttempts <= 0 {
		o.ReleaseRetryAttempts = 5
	}
	if o.ReleaseRetryDelay <= 0 {
		o.ReleaseRetryDelay = 200 * time.Millisecond
	}
	if o.Renderer == nil {
		o.Renderer = NewHTMLTicketRenderer()
	}
}

type service struct {
	repo     Repository
	events   events.Service
	gateway  payments.Gateway
	notifier NotificationSender
	opts     Options
}

func NewService(repo Repository, eventService events.Service, gateway payments.Gateway, notifier NotificationSender, opts Options) Service {
	opts.withDefaults()
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &service{
		repo:     repo,
		events:   eventService,
		gateway:  gateway,
		notifier: notifier,
		opts:     opts,
	}
}

// resolveOrigin decides the booking origin for an online request. A request
// naming a sponsoring member is a guest booking regardless of who files it.
func resolveOrigin(role users.Role, req *CreateBookingRequest) BookingOrigin {
	if req.SponsoringMemberID != "" {
		return OriginGuest
	}
	if role == users.RoleMember {
		return OriginMember
	}
	return OriginUser
}

func (s *service) CreateBooking(ctx context.Context, userID uuid.UUID, role users.Role, req *CreateBookingRequest) (*BookingResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", ErrValidationFailed)
	}

	origin := resolveOrigin(role, req)
	if origin == OriginGuest {
		if req.GuestName == "" || req.GuestPhone == "" {
			return nil, fmt.Errorf("%w: guest bookings require guest name and phone", ErrValidationFailed)
		}
	}

	event, err := s.events.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if limit := event.MaxTicketsFor(origin.String()); req.SeatCount > limit {
		return nil, fmt.Errorf("%w: seat count %d exceeds the %s limit of %d per booking",
			ErrValidationFailed, req.SeatCount, origin, limit)
	}

	price, err := CalculateOnlinePrice(event, origin, req.SeatCount, req.DiscountCode)
	if err != nil {
		return nil, err
	}

	bookingID, err := NewBookingID()
	if err != nil {
		return nil, err
	}
	qrToken, err := NewQRToken()
	if err != nil {
		return nil, err
	}

	status := StatusPending
	if origin.RequiresApproval() {
		status = StatusPendingApproval
	}

	booking := &Booking{
		BookingID:       bookingID,
		EventID:         eventID,
		UserID:          &userID,
		Origin:          origin,
		SeatCount:       req.SeatCount,
		UnitPrice:       price.UnitPrice,
		GrossAmount:     price.GrossAmount,
		DiscountCode:    price.DiscountCode,
		DiscountPercent: price.DiscountPercent,
		DiscountAmount:  price.DiscountAmount,
		FinalAmount:     price.FinalAmount,
		Status:          status,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   MethodRazorpay,
		QRCode:          qrToken,
		QRScanLimit:     req.SeatCount,
		CreatedBy:       &userID,
	}
	if origin == OriginGuest {
		booking.SponsoringMemberID = req.sponsoringMemberUUID()
		booking.GuestDetails = GuestDetails{
			Name:  req.GuestName,
			Email: req.GuestEmail,
			Phone: req.GuestPhone,
		}
	}

	// Reserve first, then persist. If the insert fails the reservation is
	// compensated so seats never leak.
	if err := s.events.ReserveSeats(ctx, eventID, req.SeatCount); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.releaseWithRetry(context.WithoutCancel(ctx), booking, eventID, req.SeatCount)
		return nil, err
	}

	logger.BookingCreated(booking.BookingID, eventID.String(), req.SeatCount, origin.String())
	if booking.Status == StatusPendingApproval {
		s.notify(ctx, booking, s.notifier.SponsorshipRequested)
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) InitiatePayment(ctx context.Context, userID uuid.UUID, bookingID string) (*PaymentOrderResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID == nil || *booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	if !booking.Origin.IsOnlinePaid() {
		return nil, fmt.Errorf("%w: offline bookings settle at the counter", ErrValidationFailed)
	}
	if booking.Status != StatusPending {
		return nil, fmt.Errorf("%w: booking is %s, payment requires pending", ErrInvalidTransition, booking.Status)
	}

	order, err := s.gateway.CreateOrder(ctx, booking.FinalAmount, booking.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	booking.PaymentDetails.OrderID = order.OrderID
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return &PaymentOrderResponse{
		BookingID: booking.BookingID,
		OrderID:   order.OrderID,
		Amount:    booking.FinalAmount,
		Currency:  s.opts.Currency,
	}, nil
}

func (s *service) VerifyPayment(ctx context.Context, userID uuid.UUID, req *VerifyPaymentRequest) (*BookingResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID == nil || *booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	if booking.PaymentDetails.OrderID == "" || booking.PaymentDetails.OrderID != req.OrderID {
		return nil, fmt.Errorf("%w: order id does not match this booking", ErrPaymentVerificationFailed)
	}

	if !s.gateway.Verify(req.OrderID, req.PaymentID, req.Signature) {
		logger.Warn("payment signature mismatch",
			"booking_id", booking.BookingID, "order_id", req.OrderID)
		return nil, ErrPaymentVerificationFailed
	}

	details := &PaymentDetails{
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		Signature:  req.Signature,
		AmountPaid: booking.FinalAmount,
	}
	if err := s.repo.Confirm(ctx, booking.ID, details); err != nil {
		return nil, err
	}
	logger.PaymentVerified(booking.BookingID, req.OrderID)

	booking, err = s.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, booking, s.notifier.BookingConfirmed)

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) CancelBooking(ctx context.Context, actorID uuid.UUID, isAdmin bool, bookingID string, reason string) (*BookingResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if !isAdmin && (booking.UserID == nil || *booking.UserID != actorID) {
		return nil, ErrNotBookingOwner
	}
	if !booking.Status.CanTransition(StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, booking.Status)
	}

	now := time.Now()
	booking.Status = StatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &now
	booking.CancelledBy = &actorID
	if booking.PaymentStatus == PaymentCompleted {
		booking.PaymentStatus = PaymentRefunded
		booking.PaymentDetails.RefundAmount = booking.PaymentDetails.AmountPaid
		booking.PaymentDetails.RefundDate = &now
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	// The cancellation is recorded; seats must come back even if the first
	// release attempt fails. Detach from the request context so a client
	// disconnect cannot strand the seats.
	s.releaseWithRetry(context.WithoutCancel(ctx), booking, booking.EventID, booking.SeatCount)

	logger.BookingCancelled(booking.BookingID, booking.SeatCount)
	s.notify(ctx, booking, s.notifier.BookingCancelled)

	resp := booking.ToResponse()
	return &resp, nil
}

// releaseWithRetry returns seats to the ledger, retrying on failure. After
// the attempts are exhausted it logs at error level with everything an
// operator needs to reconcile by hand; it never gives up silently.
func (s *service) releaseWithRetry(ctx context.Context, booking *Booking, eventID uuid.UUID, seats int) {
	var err error
	for attempt := 1; attempt <= s.opts.ReleaseRetryAttempts; attempt++ {
		err = s.events.ReleaseSeats(ctx, eventID, seats)
		if err == nil {
			return
		}
		logger.Warn("seat release attempt failed",
			"booking_id", booking.BookingID,
			"event_id", eventID.String(),
			"attempt", attempt,
			"error", err,
		)
		time.Sleep(s.opts.ReleaseRetryDelay)
	}
	logger.SeatReleaseFailed(booking.BookingID, eventID.String(), seats, s.opts.ReleaseRetryAttempts, err)
}

func (s *service) CompleteBooking(ctx context.Context, bookingID string) (*BookingResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete a %s booking", ErrInvalidTransition, booking.Status)
	}

	booking.Status = StatusCompleted
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ScanQR(ctx context.Context, operatorID uuid.UUID, req *ScanQRRequest) (*ScanResponse, error) {
	booking, err := s.repo.GetByQRCode(ctx, req.QRCode)
	if err != nil {
		if errors.Is(err, ErrScanRejected) {
			logger.ScanRejected("", "unknown qr code")
		}
		return nil, err
	}

	// The quota and eligibility checks live in the conditional UPDATE, so
	// two gates scanning the last admission at once cannot both pass.
	newCount, ok, err := s.repo.IncrementScanCount(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the guarded update. Re-read for the precise reason.
		booking, err = s.repo.GetByID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		reason := booking.scanRejectionReason()
		logger.ScanRejected(booking.BookingID, reason.Error())
		return nil, reason
	}

	now := time.Now()
	scan := &QRScan{
		BookingID: booking.ID,
		ScannedAt: now,
		ScannedBy: &operatorID,
		Location:  req.Location,
		Notes:     req.Notes,
	}
	if err := s.repo.AppendScan(ctx, scan); err != nil {
		// The admission already happened; a lost log line is an audit gap,
		// not grounds to turn the visitor away.
		logger.Error("failed to record scan log entry",
			"booking_id", booking.BookingID, "error", err)
	}

	logger.ScanAccepted(booking.BookingID, newCount, booking.QRScanLimit)

	remaining := booking.QRScanLimit - newCount
	if remaining < 0 {
		remaining = 0
	}
	return &ScanResponse{
		BookingID:      booking.BookingID,
		EventID:        booking.EventID.String(),
		SeatCount:      booking.SeatCount,
		ScanCount:      newCount,
		ScanLimit:      booking.QRScanLimit,
		RemainingScans: remaining,
		ScannedAt:      now,
	}, nil
}

func (s *service) sponsorshipBooking(ctx context.Context, memberID uuid.UUID, bookingID string) (*Booking, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SponsoringMemberID == nil || *booking.SponsoringMemberID != memberID {
		return nil, ErrNotBookingOwner
	}
	if booking.Status != StatusPendingApproval {
		return nil, fmt.Errorf("%w: sponsorship decision requires pending_approval, booking is %s",
			ErrInvalidTransition, booking.Status)
	}
	return booking, nil
}

func (s *service) ApproveSponsorship(ctx context.Context, memberID uuid.UUID, bookingID string) (*BookingResponse, error) {
	booking, err := s.sponsorshipBooking(ctx, memberID, bookingID)
	if err != nil {
		return nil, err
	}

	booking.Status = StatusPending
	booking.LastModifiedBy = &memberID
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("guest sponsorship approved",
		"booking_id", booking.BookingID, "member_id", memberID.String())
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) RejectSponsorship(ctx context.Context, memberID uuid.UUID, bookingID string) (*BookingResponse, error) {
	booking, err := s.sponsorshipBooking(ctx, memberID, bookingID)
	if err != nil {
		return nil, err
	}

	booking.Status = StatusRejected
	booking.LastModifiedBy = &memberID
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	// Rejected guests free their seats immediately.
	s.releaseWithRetry(context.WithoutCancel(ctx), booking, booking.EventID, booking.SeatCount)

	logger.Info("guest sponsorship rejected",
		"booking_id", booking.BookingID, "member_id", memberID.String())
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ListPendingApprovals(ctx context.Context, memberID uuid.UUID) ([]BookingResponse, error) {
	bookings, err := s.repo.ListPendingApprovalsForMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = bookings[i].ToResponse()
	}
	return responses, nil
}

// validateOfflinePayment enforces the manual-settlement rules before any
// seats are touched: paid entries need a UTR reference and an amount that
// matches the computed final amount to the paisa.
func validateOfflinePayment(req *CreateOfflineBookingRequest, finalAmount float64) error {
	if !req.IsPaid {
		return nil
	}
	if req.UTRNumber == "" {
		return fmt.Errorf("%w: paid offline bookings require a utr/reference number", ErrValidationFailed)
	}
	if math.Abs(req.AmountPaid-finalAmount) > 0.009 {
		return fmt.Errorf("%w: amount paid %.2f does not match final amount %.2f",
			ErrValidationFailed, req.AmountPaid, finalAmount)
	}
	return nil
}

func (s *service) CreateOfflineBooking(ctx context.Context, staffID uuid.UUID, req *CreateOfflineBookingRequest) (*BookingResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event id", ErrValidationFailed)
	}

	counts := TicketCounts{Member: req.MemberCount, Guest: req.GuestCount, Kid: req.KidCount}
	seatCount := counts.Total()
	if seatCount == 0 {
		return nil, fmt.Errorf("%w: booking must include at least one ticket", ErrValidationFailed)
	}

	meals := req.MealCounts.toModel()
	if meals.Total() != seatCount {
		return nil, fmt.Errorf("%w: meal counts total %d must equal seat count %d",
			ErrValidationFailed, meals.Total(), seatCount)
	}

	event, err := s.events.GetEventModel(ctx, eventID)
	if err != nil {
		return nil, err
	}

	price, err := CalculateCategoryPrice(event, counts, req.DiscountCode)
	if err != nil {
		return nil, err
	}
	if err := validateOfflinePayment(req, price.FinalAmount); err != nil {
		return nil, err
	}

	bookingID, err := NewBookingID()
	if err != nil {
		return nil, err
	}
	qrToken, err := NewQRToken()
	if err != nil {
		return nil, err
	}

	booking := &Booking{
		BookingID:       bookingID,
		EventID:         eventID,
		Origin:          OriginOffline,
		SeatCount:       seatCount,
		TicketCounts:    counts,
		MealCounts:      meals,
		UnitPrice:       price.UnitPrice,
		GrossAmount:     price.GrossAmount,
		DiscountCode:    price.DiscountCode,
		DiscountPercent: price.DiscountPercent,
		DiscountAmount:  price.DiscountAmount,
		FinalAmount:     price.FinalAmount,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   PaymentMethod(req.PaymentMethod),
		QRCode:          qrToken,
		QRScanLimit:     seatCount,
		GuestDetails: GuestDetails{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		},
		CreatedBy: &staffID,
	}
	if req.IsPaid {
		now := time.Now()
		booking.Status = StatusConfirmed
		booking.PaymentStatus = PaymentCompleted
		booking.PaymentDetails = PaymentDetails{
			UTRNumber:   req.UTRNumber,
			AmountPaid:  req.AmountPaid,
			PaymentDate: &now,
		}
	}

	if err := s.events.ReserveSeats(ctx, eventID, seatCount); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.releaseWithRetry(context.WithoutCancel(ctx), booking, eventID, seatCount)
		return nil, err
	}

	logger.BookingCreated(booking.BookingID, eventID.String(), seatCount, OriginOffline.String())
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) EditOfflineBooking(ctx context.Context, staffID uuid.UUID, bookingID string, req *EditOfflineBookingRequest) (*BookingResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Origin != OriginOffline {
		return nil, fmt.Errorf("%w: only offline bookings can be edited", ErrValidationFailed)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot edit a %s booking", ErrInvalidTransition, booking.Status)
	}

	counts := booking.TicketCounts
	if req.MemberCount != nil {
		counts.Member = *req.MemberCount
	}
	if req.GuestCount != nil {
		counts.Guest = *req.GuestCount
	}
	if req.KidCount != nil {
		counts.Kid = *req.KidCount
	}
	newSeatCount := counts.Total()
	if newSeatCount == 0 {
		return nil, fmt.Errorf("%w: booking must include at least one ticket", ErrValidationFailed)
	}

	meals := booking.MealCounts
	if req.MealCounts != nil {
		meals = req.MealCounts.toModel()
	}
	if meals.Total() != newSeatCount {
		return nil, fmt.Errorf("%w: meal counts total %d must equal seat count %d",
			ErrValidationFailed, meals.Total(), newSeatCount)
	}

	discountCode := booking.DiscountCode
	if req.DiscountCode != nil {
		discountCode = *req.DiscountCode
	}

	event, err := s.events.GetEventModel(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}
	price, err := CalculateCategoryPrice(event, counts, discountCode)
	if err != nil {
		return nil, err
	}

	// A settled booking must stay settled to the paisa: when the edit moves
	// the final amount, staff have to supply the matching paid-amount
	// adjustment, checked before the ledger or the row is touched.
	amountPaid := booking.PaymentDetails.AmountPaid
	if req.AmountPaid != nil {
		amountPaid = *req.AmountPaid
	}
	if booking.PaymentStatus == PaymentCompleted {
		if math.Abs(amountPaid-price.FinalAmount) > 0.009 {
			return nil, fmt.Errorf("%w: amount paid %.2f does not match edited final amount %.2f",
				ErrValidationFailed, amountPaid, price.FinalAmount)
		}
	}

	// Apply the seat delta to the ledger before persisting the edit so a
	// grown booking cannot be saved without the extra seats being held.
	delta := newSeatCount - booking.SeatCount
	if delta != 0 {
		if err := s.events.AdjustSeats(ctx, booking.EventID, delta); err != nil {
			return nil, err
		}
	}

	booking.TicketCounts = counts
	booking.MealCounts = meals
	booking.SeatCount = newSeatCount
	booking.QRScanLimit = newSeatCount
	booking.UnitPrice = price.UnitPrice
	booking.GrossAmount = price.GrossAmount
	booking.DiscountCode = price.DiscountCode
	booking.DiscountPercent = price.DiscountPercent
	booking.DiscountAmount = price.DiscountAmount
	booking.FinalAmount = price.FinalAmount
	if booking.PaymentStatus == PaymentCompleted {
		booking.PaymentDetails.AmountPaid = amountPaid
		if req.UTRNumber != nil {
			booking.PaymentDetails.UTRNumber = *req.UTRNumber
		}
	}
	if req.Name != nil {
		booking.GuestDetails.Name = *req.Name
	}
	if req.Email != nil {
		booking.GuestDetails.Email = *req.Email
	}
	if req.Phone != nil {
		booking.GuestDetails.Phone = *req.Phone
	}
	booking.LastModifiedBy = &staffID

	if err := s.repo.Update(ctx, booking); err != nil {
		// Undo the ledger delta so the edit failing does not strand seats.
		if delta != 0 {
			if adjErr := s.events.AdjustSeats(context.WithoutCancel(ctx), booking.EventID, -delta); adjErr != nil {
				logger.Error("failed to revert seat adjustment after edit failure",
					"booking_id", booking.BookingID, "delta", delta, "error", adjErr)
			}
		}
		return nil, err
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) DeleteOfflineBooking(ctx context.Context, bookingID string) error {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Origin != OriginOffline {
		return fmt.Errorf("%w: only offline bookings can be deleted", ErrValidationFailed)
	}

	if err := s.repo.HardDelete(ctx, booking.ID); err != nil {
		return err
	}
	// Cancelled/rejected entries released their seats already.
	if booking.Status.HoldsSeats() {
		s.releaseWithRetry(context.WithoutCancel(ctx), booking, booking.EventID, booking.SeatCount)
	}

	logger.Info("offline booking deleted", "booking_id", booking.BookingID)
	return nil
}

func (s *service) ListOfflineBookings(ctx context.Context, query *BookingListQuery) (*PaginatedBookings, error) {
	query.Origin = OriginOffline.String()
	return s.GetAllBookings(ctx, query)
}

func (s *service) GetBooking(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID string) (*BookingResponse, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		owner := booking.UserID != nil && *booking.UserID == userID
		sponsor := booking.SponsoringMemberID != nil && *booking.SponsoringMemberID == userID
		if !owner && !sponsor {
			return nil, ErrNotBookingOwner
		}
	}
	resp := booking.ToResponse()
	return &resp, nil
}

// GetTicket renders the entry ticket. Only confirmed, paid bookings have a
// usable ticket; anything else is a validation error, not a render.
func (s *service) GetTicket(ctx context.Context, userID uuid.UUID, isAdmin bool, bookingID string) ([]byte, ContentType, error) {
	booking, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !isAdmin {
		owner := booking.UserID != nil && *booking.UserID == userID
		sponsor := booking.SponsoringMemberID != nil && *booking.SponsoringMemberID == userID
		if !owner && !sponsor {
			return nil, "", ErrNotBookingOwner
		}
	}
	if booking.Status != StatusConfirmed || booking.PaymentStatus != PaymentCompleted {
		return nil, "", fmt.Errorf("%w: ticket is available once the booking is confirmed and paid", ErrValidationFailed)
	}
	return s.opts.Renderer.RenderTicket(ctx, booking)
}

func (s *service) paginated(bookings []Booking, total int64, query *BookingListQuery) *PaginatedBookings {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = bookings[i].ToResponse()
	}
	return &PaginatedBookings{
		Bookings:   responses,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query *BookingListQuery) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return s.paginated(bookings, total, query), nil
}

func (s *service) GetAllBookings(ctx context.Context, query *BookingListQuery) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.paginated(bookings, total, query), nil
}

func (s *service) GetBookingsByEvent(ctx context.Context, eventID uuid.UUID, query *BookingListQuery) (*PaginatedBookings, error) {
	bookings, total, err := s.repo.ListByEvent(ctx, eventID, query)
	if err != nil {
		return nil, err
	}
	return s.paginated(bookings, total, query), nil
}

func (s *service) notify(ctx context.Context, booking *Booking, send func(context.Context, *Booking) error) {
	if err := send(context.WithoutCancel(ctx), booking); err != nil {
		logger.Warn("notification send failed",
			"booking_id", booking.BookingID, "error", err)
	}
}

// noopNotifier stands in when no notification pipeline is wired.
type noopNotifier struct{}

func (noopNotifier) BookingConfirmed(context.Context, *Booking) error     { return nil }
func (noopNotifier) BookingCancelled(context.Context, *Booking) error     { return nil }
func (noopNotifier) SponsorshipRequested(context.Context, *Booking) error { return nil }
