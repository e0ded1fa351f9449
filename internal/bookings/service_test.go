package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srsevents/internal/events"
	"srsevents/internal/payments"
	"srsevents/internal/users"
)

type mockRepo struct {
	createFn             func(ctx context.Context, b *Booking) error
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*Booking, error)
	getByBookingIDFn     func(ctx context.Context, bookingID string) (*Booking, error)
	getByQRCodeFn        func(ctx context.Context, qrCode string) (*Booking, error)
	updateFn             func(ctx context.Context, b *Booking) error
	hardDeleteFn         func(ctx context.Context, id uuid.UUID) error
	listByUserFn         func(ctx context.Context, userID uuid.UUID, q *BookingListQuery) ([]Booking, int64, error)
	listFn               func(ctx context.Context, q *BookingListQuery) ([]Booking, int64, error)
	listByEventFn        func(ctx context.Context, eventID uuid.UUID, q *BookingListQuery) ([]Booking, int64, error)
	listPendingFn        func(ctx context.Context, memberID uuid.UUID) ([]Booking, error)
	confirmFn            func(ctx context.Context, id uuid.UUID, details *PaymentDetails) error
	incrementScanCountFn func(ctx context.Context, id uuid.UUID) (int, bool, error)
	appendScanFn         func(ctx context.Context, scan *QRScan) error
}

func (m *mockRepo) Create(ctx context.Context, b *Booking) error { return m.createFn(ctx, b) }
func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockRepo) GetByBookingID(ctx context.Context, bookingID string) (*Booking, error) {
	return m.getByBookingIDFn(ctx, bookingID)
}
func (m *mockRepo) GetByQRCode(ctx context.Context, qrCode string) (*Booking, error) {
	return m.getByQRCodeFn(ctx, qrCode)
}
func (m *mockRepo) Update(ctx context.Context, b *Booking) error { return m.updateFn(ctx, b) }
func (m *mockRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	return m.hardDeleteFn(ctx, id)
}
func (m *mockRepo) ListByUser(ctx context.Context, userID uuid.UUID, q *BookingListQuery) ([]Booking, int64, error) {
	return m.listByUserFn(ctx, userID, q)
}
func (m *mockRepo) List(ctx context.Context, q *BookingListQuery) ([]Booking, int64, error) {
	return m.listFn(ctx, q)
}
func (m *mockRepo) ListByEvent(ctx context.Context, eventID uuid.UUID, q *BookingListQuery) ([]Booking, int64, error) {
	return m.listByEventFn(ctx, eventID, q)
}
func (m *mockRepo) ListPendingApprovalsForMember(ctx context.Context, memberID uuid.UUID) ([]Booking, error) {
	return m.listPendingFn(ctx, memberID)
}
func (m *mockRepo) Confirm(ctx context.Context, id uuid.UUID, details *PaymentDetails) error {
	return m.confirmFn(ctx, id, details)
}
func (m *mockRepo) IncrementScanCount(ctx context.Context, id uuid.UUID) (int, bool, error) {
	return m.incrementScanCountFn(ctx, id)
}
func (m *mockRepo) AppendScan(ctx context.Context, scan *QRScan) error {
	return m.appendScanFn(ctx, scan)
}

// mockEvents is an in-memory Seat Inventory Ledger with the same
// atomic-conditional-update guarantee the SQL repository provides.
type mockEvents struct {
	mu    sync.Mutex
	event *events.Event
}

func newMockEvents(event *events.Event) *mockEvents {
	return &mockEvents{event: event}
}

func (m *mockEvents) GetEventModel(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.event == nil || m.event.ID != id {
		return nil, events.ErrEventNotFound
	}
	copy := *m.event
	return &copy, nil
}

func (m *mockEvents) ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.event == nil || m.event.ID != eventID {
		return events.ErrEventNotFound
	}
	if !m.event.Status.IsBookable() {
		return events.ErrEventNotBookable
	}
	if m.event.BookedSeats+seats > m.event.MaxCapacity {
		return events.ErrCapacityExceeded
	}
	m.event.BookedSeats += seats
	return nil
}

func (m *mockEvents) ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.event.BookedSeats -= seats
	if m.event.BookedSeats < 0 {
		m.event.BookedSeats = 0
	}
	return nil
}

func (m *mockEvents) AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error {
	if delta >= 0 {
		return m.ReserveSeats(ctx, eventID, delta)
	}
	return m.ReleaseSeats(ctx, eventID, -delta)
}

// Unused Service surface.
func (m *mockEvents) CreateEvent(ctx context.Context, req *events.CreateEventRequest, createdBy uuid.UUID) (*events.EventResponse, error) {
	panic("not used")
}
func (m *mockEvents) GetEvent(ctx context.Context, id uuid.UUID) (*events.EventResponse, error) {
	panic("not used")
}
func (m *mockEvents) UpdateEvent(ctx context.Context, id uuid.UUID, req *events.UpdateEventRequest, modifiedBy uuid.UUID) (*events.EventResponse, error) {
	panic("not used")
}
func (m *mockEvents) DeleteEvent(ctx context.Context, id uuid.UUID) error { panic("not used") }
func (m *mockEvents) ListEvents(ctx context.Context, query *events.EventListQuery, publishedOnly bool) (*events.PaginatedEvents, error) {
	panic("not used")
}
func (m *mockEvents) PublishEvent(ctx context.Context, id uuid.UUID, modifiedBy uuid.UUID) (*events.EventResponse, error) {
	panic("not used")
}

type mockNotifier struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
	requested []string
}

func (m *mockNotifier) SponsorshipRequested(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requested = append(m.requested, b.BookingID)
	return nil
}

func (m *mockNotifier) BookingConfirmed(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, b.BookingID)
	return nil
}

func (m *mockNotifier) BookingCancelled(ctx context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, b.BookingID)
	return nil
}

func testOptions() Options {
	return Options{ReleaseRetryAttempts: 2, ReleaseRetryDelay: time.Millisecond}
}

func publishedEvent() *events.Event {
	return &events.Event{
		ID:                  uuid.New(),
		Title:               "Annual Dinner",
		UserPrice:           1500,
		MemberPrice:         1000,
		GuestPrice:          2000,
		KidPrice:            500,
		MaxCapacity:         100,
		MaxTicketsPerUser:   5,
		MaxTicketsPerMember: 10,
		MaxTicketsPerGuest:  3,
		Status:              events.StatusPublished,
	}
}

func TestCreateBooking(t *testing.T) {
	userID := uuid.New()

	t.Run("user booking is pending with qr quota equal to seats", func(t *testing.T) {
		event := publishedEvent()
		ledger := newMockEvents(event)
		var stored *Booking
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error {
			stored = b
			return nil
		}}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{EventID: event.ID.String(), SeatCount: 3})
		require.NoError(t, err)
		require.NotNil(t, stored)

		assert.Equal(t, StatusPending, stored.Status)
		assert.Equal(t, PaymentPending, stored.PaymentStatus)
		assert.Equal(t, OriginUser, stored.Origin)
		assert.Equal(t, 3, stored.QRScanLimit)
		assert.Len(t, stored.QRCode, 32)
		assert.Equal(t, 4500.0, resp.FinalAmount)
		assert.Equal(t, 3, ledger.event.BookedSeats)
		assert.Regexp(t, `^SRS\d+[A-Z0-9]{6}$`, stored.BookingID)
	})

	t.Run("member role books at member tier", func(t *testing.T) {
		event := publishedEvent()
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error { return nil }}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.CreateBooking(context.Background(), userID, users.RoleMember,
			&CreateBookingRequest{EventID: event.ID.String(), SeatCount: 2})
		require.NoError(t, err)
		assert.Equal(t, OriginMember, resp.Origin)
		assert.Equal(t, 2000.0, resp.FinalAmount)
	})

	t.Run("sponsored guest starts in pending_approval", func(t *testing.T) {
		event := publishedEvent()
		sponsorID := uuid.New()
		var stored *Booking
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error {
			stored = b
			return nil
		}}
		notifier := &mockNotifier{}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), notifier, testOptions())

		resp, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{
				EventID:            event.ID.String(),
				SeatCount:          2,
				SponsoringMemberID: sponsorID.String(),
				GuestName:          "Asha Rao",
				GuestPhone:         "9876543210",
			})
		require.NoError(t, err)
		assert.Equal(t, StatusPendingApproval, resp.Status)
		assert.Equal(t, OriginGuest, resp.Origin)
		require.NotNil(t, stored.SponsoringMemberID)
		assert.Equal(t, sponsorID, *stored.SponsoringMemberID)
		assert.Equal(t, 4000.0, resp.FinalAmount) // guest tier
		assert.Equal(t, []string{resp.BookingID}, notifier.requested)
	})

	t.Run("guest booking without contact details fails", func(t *testing.T) {
		event := publishedEvent()
		svc := NewService(&mockRepo{}, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{
				EventID:            event.ID.String(),
				SeatCount:          1,
				SponsoringMemberID: uuid.New().String(),
			})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("seat count above origin limit fails before reserving", func(t *testing.T) {
		event := publishedEvent()
		ledger := newMockEvents(event)
		svc := NewService(&mockRepo{}, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{EventID: event.ID.String(), SeatCount: 6})
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Equal(t, 0, ledger.event.BookedSeats)
	})

	t.Run("full event rejects with capacity error", func(t *testing.T) {
		event := publishedEvent()
		event.BookedSeats = 99
		svc := NewService(&mockRepo{}, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{EventID: event.ID.String(), SeatCount: 2})
		assert.ErrorIs(t, err, events.ErrCapacityExceeded)
	})

	t.Run("persist failure releases the reservation", func(t *testing.T) {
		event := publishedEvent()
		ledger := newMockEvents(event)
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error {
			return errors.New("insert failed")
		}}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CreateBooking(context.Background(), userID, users.RoleUser,
			&CreateBookingRequest{EventID: event.ID.String(), SeatCount: 4})
		require.Error(t, err)
		assert.Equal(t, 0, ledger.event.BookedSeats)
	})
}

func TestPaymentFlow(t *testing.T) {
	userID := uuid.New()
	event := publishedEvent()

	pendingBooking := func() *Booking {
		return &Booking{
			ID:            uuid.New(),
			BookingID:     "SRS1700000000000ABC123",
			EventID:       event.ID,
			UserID:        &userID,
			Origin:        OriginUser,
			SeatCount:     2,
			FinalAmount:   3000,
			Status:        StatusPending,
			PaymentStatus: PaymentPending,
			PaymentMethod: MethodRazorpay,
			QRScanLimit:   2,
		}
	}

	t.Run("initiate stores the gateway order id", func(t *testing.T) {
		booking := pendingBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		order, err := svc.InitiatePayment(context.Background(), userID, booking.BookingID)
		require.NoError(t, err)
		assert.NotEmpty(t, order.OrderID)
		assert.Equal(t, 3000.0, order.Amount)
		assert.Equal(t, order.OrderID, booking.PaymentDetails.OrderID)
	})

	t.Run("initiate by a stranger is forbidden", func(t *testing.T) {
		booking := pendingBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.InitiatePayment(context.Background(), uuid.New(), booking.BookingID)
		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("bad signature leaves the booking pending", func(t *testing.T) {
		booking := pendingBooking()
		booking.PaymentDetails.OrderID = "order_1"
		confirmCalled := false
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			confirmFn: func(ctx context.Context, id uuid.UUID, d *PaymentDetails) error {
				confirmCalled = true
				return nil
			},
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.VerifyPayment(context.Background(), userID, &VerifyPaymentRequest{
			BookingID: booking.BookingID,
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: "forged",
		})
		assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
		assert.False(t, confirmCalled)
		assert.Equal(t, StatusPending, booking.Status)
	})

	t.Run("valid signature confirms and notifies", func(t *testing.T) {
		booking := pendingBooking()
		booking.PaymentDetails.OrderID = "order_1"
		notifier := &mockNotifier{}
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			confirmFn: func(ctx context.Context, id uuid.UUID, d *PaymentDetails) error {
				booking.Status = StatusConfirmed
				booking.PaymentStatus = PaymentCompleted
				booking.PaymentDetails.PaymentID = d.PaymentID
				return nil
			},
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), notifier, testOptions())

		resp, err := svc.VerifyPayment(context.Background(), userID, &VerifyPaymentRequest{
			BookingID: booking.BookingID,
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: "valid",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, resp.Status)
		assert.Equal(t, PaymentCompleted, resp.PaymentStatus)
		assert.Contains(t, notifier.confirmed, booking.BookingID)
	})

	t.Run("mismatched order id is rejected", func(t *testing.T) {
		booking := pendingBooking()
		booking.PaymentDetails.OrderID = "order_1"
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.VerifyPayment(context.Background(), userID, &VerifyPaymentRequest{
			BookingID: booking.BookingID,
			OrderID:   "order_other",
			PaymentID: "pay_1",
			Signature: "valid",
		})
		assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
	})
}

func TestCancelBooking(t *testing.T) {
	userID := uuid.New()
	event := publishedEvent()
	event.BookedSeats = 10

	confirmedBooking := func() *Booking {
		return &Booking{
			ID:            uuid.New(),
			BookingID:     "SRS1700000000000XYZ789",
			EventID:       event.ID,
			UserID:        &userID,
			SeatCount:     4,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentCompleted,
			PaymentDetails: PaymentDetails{
				AmountPaid: 6000,
			},
		}
	}

	t.Run("cancelling releases seats and refunds paid amount", func(t *testing.T) {
		event.BookedSeats = 10
		ledger := newMockEvents(event)
		booking := confirmedBooking()
		notifier := &mockNotifier{}
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), notifier, testOptions())

		resp, err := svc.CancelBooking(context.Background(), userID, false, booking.BookingID, "plans changed")
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, resp.Status)
		assert.Equal(t, PaymentRefunded, resp.PaymentStatus)
		assert.Equal(t, 6000.0, booking.PaymentDetails.RefundAmount)
		assert.NotNil(t, booking.CancelledAt)
		assert.Equal(t, 6, ledger.event.BookedSeats)
		assert.Contains(t, notifier.cancelled, booking.BookingID)
	})

	t.Run("double cancellation fails", func(t *testing.T) {
		booking := confirmedBooking()
		booking.Status = StatusCancelled
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CancelBooking(context.Background(), userID, false, booking.BookingID, "again")
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("completed bookings cannot be cancelled", func(t *testing.T) {
		booking := confirmedBooking()
		booking.Status = StatusCompleted
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CancelBooking(context.Background(), uuid.New(), true, booking.BookingID, "late")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("a stranger cannot cancel, an admin can", func(t *testing.T) {
		event.BookedSeats = 10
		booking := confirmedBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.CancelBooking(context.Background(), uuid.New(), false, booking.BookingID, "nope")
		assert.ErrorIs(t, err, ErrNotBookingOwner)

		_, err = svc.CancelBooking(context.Background(), uuid.New(), true, booking.BookingID, "admin action")
		assert.NoError(t, err)
	})
}

func TestScanQR(t *testing.T) {
	operatorID := uuid.New()
	event := publishedEvent()

	scannable := func(limit int) *Booking {
		return &Booking{
			ID:            uuid.New(),
			BookingID:     "SRS1700000000000SCAN01",
			EventID:       event.ID,
			SeatCount:     limit,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentCompleted,
			QRCode:        "aabbccddeeff00112233445566778899",
			QRScanLimit:   limit,
		}
	}

	t.Run("parallel scans admit exactly the quota", func(t *testing.T) {
		booking := scannable(4)

		// Guarded counter with the conditional-update semantics of the SQL
		// repository.
		var mu sync.Mutex
		var logged int
		repo := &mockRepo{
			getByQRCodeFn: func(ctx context.Context, code string) (*Booking, error) {
				if code != booking.QRCode {
					return nil, ErrQRCodeNotFound
				}
				return booking, nil
			},
			incrementScanCountFn: func(ctx context.Context, id uuid.UUID) (int, bool, error) {
				mu.Lock()
				defer mu.Unlock()
				if booking.QRScanCount >= booking.QRScanLimit {
					return 0, false, nil
				}
				booking.QRScanCount++
				return booking.QRScanCount, true, nil
			},
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*Booking, error) { return booking, nil },
			appendScanFn: func(ctx context.Context, scan *QRScan) error {
				mu.Lock()
				defer mu.Unlock()
				logged++
				return nil
			},
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		type outcome struct {
			resp *ScanResponse
			err  error
		}

		const attempts = 20
		var wg sync.WaitGroup
		results := make(chan outcome, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := svc.ScanQR(context.Background(), operatorID, &ScanQRRequest{
					QRCode: booking.QRCode, Location: "Gate A",
				})
				results <- outcome{resp: resp, err: err}
			}()
		}
		wg.Wait()
		close(results)

		var rejected int
		seenCounts := make(map[int]bool)
		for out := range results {
			if out.err == nil {
				// Every admission reports a distinct post-increment count.
				assert.False(t, seenCounts[out.resp.ScanCount],
					"scan count %d reported twice", out.resp.ScanCount)
				seenCounts[out.resp.ScanCount] = true
			} else {
				assert.ErrorIs(t, out.err, ErrScanQuotaExhausted)
				rejected++
			}
		}
		assert.Len(t, seenCounts, 4)
		assert.Equal(t, attempts-4, rejected)
		assert.Equal(t, 4, booking.QRScanCount)
		assert.Equal(t, 4, logged)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		repo := &mockRepo{
			getByQRCodeFn: func(ctx context.Context, code string) (*Booking, error) {
				return nil, ErrQRCodeNotFound
			},
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.ScanQR(context.Background(), operatorID, &ScanQRRequest{
			QRCode: "00000000000000000000000000000000",
		})
		assert.ErrorIs(t, err, ErrQRCodeNotFound)
		assert.ErrorIs(t, err, ErrScanRejected)
	})

	t.Run("pending booking reports not confirmed", func(t *testing.T) {
		booking := scannable(2)
		booking.Status = StatusPending
		booking.PaymentStatus = PaymentPending
		repo := &mockRepo{
			getByQRCodeFn:        func(ctx context.Context, code string) (*Booking, error) { return booking, nil },
			incrementScanCountFn: func(ctx context.Context, id uuid.UUID) (int, bool, error) { return 0, false, nil },
			getByIDFn:            func(ctx context.Context, id uuid.UUID) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.ScanQR(context.Background(), operatorID, &ScanQRRequest{QRCode: booking.QRCode})
		assert.ErrorIs(t, err, ErrScanNotConfirmed)
	})

	t.Run("successful scan reports remaining admissions", func(t *testing.T) {
		booking := scannable(3)
		booking.QRScanCount = 1
		repo := &mockRepo{
			getByQRCodeFn: func(ctx context.Context, code string) (*Booking, error) { return booking, nil },
			incrementScanCountFn: func(ctx context.Context, id uuid.UUID) (int, bool, error) {
				return 2, true, nil
			},
			appendScanFn: func(ctx context.Context, scan *QRScan) error { return nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.ScanQR(context.Background(), operatorID, &ScanQRRequest{QRCode: booking.QRCode})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.ScanCount)
		assert.Equal(t, 1, resp.RemainingScans)
	})
}

func TestSponsorship(t *testing.T) {
	memberID := uuid.New()
	event := publishedEvent()
	event.BookedSeats = 5

	guestBooking := func() *Booking {
		return &Booking{
			ID:                 uuid.New(),
			BookingID:          "SRS1700000000000GUEST1",
			EventID:            event.ID,
			Origin:             OriginGuest,
			SeatCount:          2,
			Status:             StatusPendingApproval,
			PaymentStatus:      PaymentPending,
			SponsoringMemberID: &memberID,
		}
	}

	t.Run("approval makes the booking payable", func(t *testing.T) {
		booking := guestBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.ApproveSponsorship(context.Background(), memberID, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, resp.Status)
	})

	t.Run("rejection frees the reserved seats", func(t *testing.T) {
		event.BookedSeats = 5
		ledger := newMockEvents(event)
		booking := guestBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.RejectSponsorship(context.Background(), memberID, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, resp.Status)
		assert.Equal(t, 3, ledger.event.BookedSeats)
	})

	t.Run("only the named sponsor may decide", func(t *testing.T) {
		booking := guestBooking()
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.ApproveSponsorship(context.Background(), uuid.New(), booking.BookingID)
		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("decided bookings cannot be re-decided", func(t *testing.T) {
		booking := guestBooking()
		booking.Status = StatusPending
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, err := svc.RejectSponsorship(context.Background(), memberID, booking.BookingID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestOfflineBookings(t *testing.T) {
	staffID := uuid.New()

	validRequest := func(event *events.Event) *CreateOfflineBookingRequest {
		return &CreateOfflineBookingRequest{
			EventID:     event.ID.String(),
			MemberCount: 2,
			GuestCount:  1,
			KidCount:    1,
			MealCounts: MealCountsRequest{
				MemberVeg: 1, MemberNonVeg: 1, GuestNonVeg: 1, KidVeg: 1,
			},
			Name:          "Walk-in Party",
			Phone:         "9812345678",
			PaymentMethod: "cash",
		}
	}

	t.Run("unpaid entry starts pending", func(t *testing.T) {
		event := publishedEvent()
		ledger := newMockEvents(event)
		var stored *Booking
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error {
			stored = b
			return nil
		}}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		resp, err := svc.CreateOfflineBooking(context.Background(), staffID, validRequest(event))
		require.NoError(t, err)

		assert.Equal(t, StatusPending, resp.Status)
		assert.Equal(t, PaymentPending, resp.PaymentStatus)
		assert.Equal(t, 4, resp.SeatCount)
		// 2*1000 + 1*2000 + 1*500
		assert.Equal(t, 4500.0, resp.FinalAmount)
		assert.Equal(t, MethodCash, stored.PaymentMethod)
		assert.Equal(t, 4, ledger.event.BookedSeats)
	})

	t.Run("paid entry requires utr and exact amount", func(t *testing.T) {
		event := publishedEvent()
		ledger := newMockEvents(event)
		svc := NewService(&mockRepo{}, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		req := validRequest(event)
		req.IsPaid = true
		req.AmountPaid = 4500
		_, err := svc.CreateOfflineBooking(context.Background(), staffID, req)
		assert.ErrorIs(t, err, ErrValidationFailed, "paid without utr must fail")

		req = validRequest(event)
		req.IsPaid = true
		req.UTRNumber = "UTR123"
		req.AmountPaid = 4000
		_, err = svc.CreateOfflineBooking(context.Background(), staffID, req)
		assert.ErrorIs(t, err, ErrValidationFailed, "amount mismatch must fail")

		// Neither failure touched the ledger.
		assert.Equal(t, 0, ledger.event.BookedSeats)
	})

	t.Run("paid entry is confirmed and completed immediately", func(t *testing.T) {
		event := publishedEvent()
		var stored *Booking
		repo := &mockRepo{createFn: func(ctx context.Context, b *Booking) error {
			stored = b
			return nil
		}}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		req := validRequest(event)
		req.IsPaid = true
		req.UTRNumber = "UTR980001"
		req.AmountPaid = 4500
		resp, err := svc.CreateOfflineBooking(context.Background(), staffID, req)
		require.NoError(t, err)

		assert.Equal(t, StatusConfirmed, resp.Status)
		assert.Equal(t, PaymentCompleted, resp.PaymentStatus)
		assert.Equal(t, "UTR980001", stored.PaymentDetails.UTRNumber)
		assert.NotNil(t, stored.PaymentDetails.PaymentDate)
	})

	t.Run("meal totals must equal seat count", func(t *testing.T) {
		event := publishedEvent()
		svc := NewService(&mockRepo{}, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		req := validRequest(event)
		req.MealCounts.KidVeg = 0 // 3 meals for 4 seats
		_, err := svc.CreateOfflineBooking(context.Background(), staffID, req)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("edit adjusts the ledger by the seat delta", func(t *testing.T) {
		event := publishedEvent()
		event.BookedSeats = 4
		ledger := newMockEvents(event)
		booking := &Booking{
			ID:           uuid.New(),
			BookingID:    "SRS1700000000000OFF001",
			EventID:      event.ID,
			Origin:       OriginOffline,
			SeatCount:    4,
			TicketCounts: TicketCounts{Member: 2, Guest: 1, Kid: 1},
			MealCounts:   MealCounts{MemberVeg: 1, MemberNonVeg: 1, GuestNonVeg: 1, KidVeg: 1},
			Status:       StatusPending,
			QRScanLimit:  4,
		}
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		newMembers := 4
		resp, err := svc.EditOfflineBooking(context.Background(), staffID, booking.BookingID,
			&EditOfflineBookingRequest{
				MemberCount: &newMembers,
				MealCounts: &MealCountsRequest{
					MemberVeg: 3, MemberNonVeg: 1, GuestNonVeg: 1, KidVeg: 1,
				},
			})
		require.NoError(t, err)

		assert.Equal(t, 6, resp.SeatCount)
		assert.Equal(t, 6, resp.QRScanLimit)
		assert.Equal(t, 6, ledger.event.BookedSeats)
		// 4*1000 + 1*2000 + 1*500
		assert.Equal(t, 6500.0, resp.FinalAmount)
	})

	paidBooking := func(event *events.Event) *Booking {
		return &Booking{
			ID:            uuid.New(),
			BookingID:     "SRS1700000000000OFF002",
			EventID:       event.ID,
			Origin:        OriginOffline,
			SeatCount:     4,
			TicketCounts:  TicketCounts{Member: 3, Guest: 1},
			MealCounts:    MealCounts{MemberVeg: 2, MemberNonVeg: 1, GuestNonVeg: 1},
			FinalAmount:   5000,
			Status:        StatusConfirmed,
			PaymentStatus: PaymentCompleted,
			PaymentMethod: MethodCash,
			PaymentDetails: PaymentDetails{
				UTRNumber:  "UTR-100",
				AmountPaid: 5000,
			},
			QRScanLimit: 4,
		}
	}

	t.Run("growing a paid booking without a settlement adjustment fails", func(t *testing.T) {
		event := publishedEvent()
		event.BookedSeats = 4
		ledger := newMockEvents(event)
		booking := paidBooking(event)
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		newMembers := 5
		_, err := svc.EditOfflineBooking(context.Background(), staffID, booking.BookingID,
			&EditOfflineBookingRequest{
				MemberCount: &newMembers,
				MealCounts: &MealCountsRequest{
					MemberVeg: 4, MemberNonVeg: 1, GuestNonVeg: 1,
				},
			})
		assert.ErrorIs(t, err, ErrValidationFailed)
		// Rejected before any mutation: ledger untouched, settlement intact.
		assert.Equal(t, 4, ledger.event.BookedSeats)
		assert.Equal(t, 5000.0, booking.PaymentDetails.AmountPaid)
	})

	t.Run("growing a paid booking with a matching adjustment settles", func(t *testing.T) {
		event := publishedEvent()
		event.BookedSeats = 4
		ledger := newMockEvents(event)
		booking := paidBooking(event)
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			updateFn:         func(ctx context.Context, b *Booking) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		newMembers := 5
		newAmount := 7000.0 // 5*1000 + 1*2000
		newUTR := "UTR-101"
		resp, err := svc.EditOfflineBooking(context.Background(), staffID, booking.BookingID,
			&EditOfflineBookingRequest{
				MemberCount: &newMembers,
				MealCounts: &MealCountsRequest{
					MemberVeg: 4, MemberNonVeg: 1, GuestNonVeg: 1,
				},
				AmountPaid: &newAmount,
				UTRNumber:  &newUTR,
			})
		require.NoError(t, err)

		assert.Equal(t, 6, resp.SeatCount)
		assert.Equal(t, 7000.0, resp.FinalAmount)
		assert.Equal(t, PaymentCompleted, resp.PaymentStatus)
		assert.Equal(t, 7000.0, booking.PaymentDetails.AmountPaid)
		assert.Equal(t, "UTR-101", booking.PaymentDetails.UTRNumber)
		assert.Equal(t, 6, ledger.event.BookedSeats)
	})

	t.Run("delete releases held seats", func(t *testing.T) {
		event := publishedEvent()
		event.BookedSeats = 4
		ledger := newMockEvents(event)
		booking := &Booking{
			ID:        uuid.New(),
			BookingID: "SRS1700000000000OFF002",
			EventID:   event.ID,
			Origin:    OriginOffline,
			SeatCount: 4,
			Status:    StatusPending,
		}
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
			hardDeleteFn:     func(ctx context.Context, id uuid.UUID) error { return nil },
		}
		svc := NewService(repo, ledger, payments.NewMockGateway(), &mockNotifier{}, testOptions())

		require.NoError(t, svc.DeleteOfflineBooking(context.Background(), booking.BookingID))
		assert.Equal(t, 0, ledger.event.BookedSeats)
	})

	t.Run("online bookings cannot be hard-deleted", func(t *testing.T) {
		event := publishedEvent()
		booking := &Booking{
			ID:        uuid.New(),
			BookingID: "SRS1700000000000USR001",
			EventID:   event.ID,
			Origin:    OriginUser,
			SeatCount: 2,
			Status:    StatusPending,
		}
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		err := svc.DeleteOfflineBooking(context.Background(), booking.BookingID)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestBookingIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewBookingID()
		require.NoError(t, err)
		assert.Regexp(t, `^SRS\d{13}[A-Z0-9]{6}$`, id)
		assert.False(t, seen[id], "booking ids should not repeat")
		seen[id] = true
	}
}

func TestQRTokenFormat(t *testing.T) {
	a, err := NewQRToken()
	require.NoError(t, err)
	b, err := NewQRToken()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestGetTicket(t *testing.T) {
	userID := uuid.New()
	event := publishedEvent()

	booking := &Booking{
		ID:            uuid.New(),
		BookingID:     "SRS1700000000000TIX001",
		EventID:       event.ID,
		Event:         *event,
		UserID:        &userID,
		SeatCount:     3,
		FinalAmount:   4500,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentCompleted,
		QRCode:        "a1b2c3d4e5f60718a1b2c3d4e5f60718",
		QRScanLimit:   3,
		QRScanCount:   1,
	}
	repo := &mockRepo{
		getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return booking, nil },
	}
	svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

	t.Run("owner downloads a rendered ticket", func(t *testing.T) {
		data, contentType, err := svc.GetTicket(context.Background(), userID, false, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, ContentTypeHTML, contentType)

		html := string(data)
		assert.Contains(t, html, booking.BookingID)
		assert.Contains(t, html, booking.QRCode)
		assert.Contains(t, html, event.Title)
		assert.Contains(t, html, "2 of 3") // remaining admits
	})

	t.Run("stranger is refused", func(t *testing.T) {
		_, _, err := svc.GetTicket(context.Background(), uuid.New(), false, booking.BookingID)
		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("unpaid booking has no ticket", func(t *testing.T) {
		pending := *booking
		pending.Status = StatusPending
		pending.PaymentStatus = PaymentPending
		repo := &mockRepo{
			getByBookingIDFn: func(ctx context.Context, id string) (*Booking, error) { return &pending, nil },
		}
		svc := NewService(repo, newMockEvents(event), payments.NewMockGateway(), &mockNotifier{}, testOptions())

		_, _, err := svc.GetTicket(context.Background(), userID, false, pending.BookingID)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}
