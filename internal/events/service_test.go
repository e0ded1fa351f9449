package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srsevents/pkg/cache"
)

type mockRepository struct {
	createFn  func(ctx context.Context, event *Event) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*Event, error)
	updateFn  func(ctx context.Context, event *Event) error
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	listFn    func(ctx context.Context, query *EventListQuery, publishedOnly bool) ([]Event, int64, error)
	reserveFn func(ctx context.Context, eventID uuid.UUID, seats int) error
	releaseFn func(ctx context.Context, eventID uuid.UUID, seats int) error
	adjustFn  func(ctx context.Context, eventID uuid.UUID, delta int) error
}

func (m *mockRepository) Create(ctx context.Context, event *Event) error {
	return m.createFn(ctx, event)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRepository) Update(ctx context.Context, event *Event) error {
	return m.updateFn(ctx, event)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockRepository) List(ctx context.Context, query *EventListQuery, publishedOnly bool) ([]Event, int64, error) {
	return m.listFn(ctx, query, publishedOnly)
}

func (m *mockRepository) ReserveSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	return m.reserveFn(ctx, eventID, seats)
}

func (m *mockRepository) ReleaseSeats(ctx context.Context, eventID uuid.UUID, seats int) error {
	return m.releaseFn(ctx, eventID, seats)
}

func (m *mockRepository) AdjustSeats(ctx context.Context, eventID uuid.UUID, delta int) error {
	return m.adjustFn(ctx, eventID, delta)
}

// noopCache always misses so service tests exercise the repository path.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error         { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error  { return nil }
func (noopCache) Increment(ctx context.Context, key string) (int64, error) { return 0, nil }

func newTestService(repo Repository) Service {
	return NewService(repo, noopCache{}, time.Minute)
}

func validCreateRequest() *CreateEventRequest {
	start := time.Now().Add(48 * time.Hour)
	return &CreateEventRequest{
		Title:       "Annual Tech Conference",
		Location:    "Mumbai",
		StartDate:   start,
		EndDate:     start.Add(8 * time.Hour),
		UserPrice:   1500,
		MemberPrice: 1000,
		GuestPrice:  2000,
		MaxCapacity: 200,
	}
}

func TestCreateEvent(t *testing.T) {
	adminID := uuid.New()

	t.Run("creates draft event with default ticket limits", func(t *testing.T) {
		var created *Event
		repo := &mockRepository{
			createFn: func(ctx context.Context, event *Event) error {
				event.ID = uuid.New()
				created = event
				return nil
			},
		}

		resp, err := newTestService(repo).CreateEvent(context.Background(), validCreateRequest(), adminID)
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, StatusDraft, created.Status)
		assert.Equal(t, 5, created.MaxTicketsPerUser)
		assert.Equal(t, 10, created.MaxTicketsPerMember)
		assert.Equal(t, 3, created.MaxTicketsPerGuest)
		assert.Equal(t, adminID, created.CreatedBy)
		assert.Equal(t, 200, resp.AvailableSeats)
		assert.False(t, resp.IsSoldOut)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		req := validCreateRequest()
		req.EndDate = req.StartDate.Add(-time.Hour)

		_, err := newTestService(&mockRepository{}).CreateEvent(context.Background(), req, adminID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects member price above user price", func(t *testing.T) {
		req := validCreateRequest()
		req.MemberPrice = req.UserPrice + 100

		_, err := newTestService(&mockRepository{}).CreateEvent(context.Background(), req, adminID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUpdateEvent(t *testing.T) {
	adminID := uuid.New()
	eventID := uuid.New()

	makeRepo := func(event *Event) *mockRepository {
		return &mockRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*Event, error) {
				if id != event.ID {
					return nil, ErrEventNotFound
				}
				copy := *event
				return &copy, nil
			},
			updateFn: func(ctx context.Context, e *Event) error {
				*event = *e
				return nil
			},
		}
	}

	t.Run("cannot shrink capacity below booked seats", func(t *testing.T) {
		event := &Event{ID: eventID, Title: "Gala", Location: "Pune",
			StartDate: time.Now(), EndDate: time.Now().Add(time.Hour),
			UserPrice: 100, MemberPrice: 80, MaxCapacity: 100, BookedSeats: 40,
			Status: StatusPublished}

		smaller := 30
		_, err := newTestService(makeRepo(event)).UpdateEvent(context.Background(), eventID,
			&UpdateEventRequest{MaxCapacity: &smaller}, adminID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("applies partial update and records modifier", func(t *testing.T) {
		event := &Event{ID: eventID, Title: "Gala", Location: "Pune",
			StartDate: time.Now(), EndDate: time.Now().Add(time.Hour),
			UserPrice: 100, MemberPrice: 80, MaxCapacity: 100,
			Status: StatusDraft}

		title := "Gala Night 2026"
		resp, err := newTestService(makeRepo(event)).UpdateEvent(context.Background(), eventID,
			&UpdateEventRequest{Title: &title}, adminID)
		require.NoError(t, err)

		assert.Equal(t, "Gala Night 2026", resp.Title)
		require.NotNil(t, event.LastModifiedBy)
		assert.Equal(t, adminID, *event.LastModifiedBy)
	})
}

func TestPublishEvent(t *testing.T) {
	adminID := uuid.New()
	eventID := uuid.New()

	t.Run("publishes a draft", func(t *testing.T) {
		event := &Event{ID: eventID, Title: "Expo", Location: "Delhi",
			StartDate: time.Now(), EndDate: time.Now().Add(time.Hour),
			UserPrice: 50, MemberPrice: 50, MaxCapacity: 10, Status: StatusDraft}
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*Event, error) { return event, nil },
			updateFn:  func(ctx context.Context, e *Event) error { return nil },
		}

		resp, err := newTestService(repo).PublishEvent(context.Background(), eventID, adminID)
		require.NoError(t, err)
		assert.Equal(t, StatusPublished, resp.Status)
	})

	t.Run("rejects republishing", func(t *testing.T) {
		event := &Event{ID: eventID, Status: StatusPublished}
		repo := &mockRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*Event, error) { return event, nil },
		}

		_, err := newTestService(repo).PublishEvent(context.Background(), eventID, adminID)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

// fakeLedger mimics the repository's guarded-UPDATE contract in memory: the
// capacity check and the increment are atomic under a mutex, exactly the
// guarantee the SQL conditional UPDATE provides.
type fakeLedger struct {
	mu       sync.Mutex
	capacity int
	booked   int
	status   EventStatus
}

func (f *fakeLedger) reserve(seats int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.status.IsBookable() {
		return ErrEventNotBookable
	}
	if f.booked+seats > f.capacity {
		return ErrCapacityExceeded
	}
	f.booked += seats
	return nil
}

func (f *fakeLedger) release(seats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booked -= seats
	if f.booked < 0 {
		f.booked = 0
	}
}

func TestLedgerNeverOversells(t *testing.T) {
	ledger := &fakeLedger{capacity: 10, status: StatusPublished}
	eventID := uuid.New()

	repo := &mockRepository{
		reserveFn: func(ctx context.Context, id uuid.UUID, seats int) error {
			return ledger.reserve(seats)
		},
	}
	svc := newTestService(repo)

	// 50 goroutines race for 10 seats, 2 at a time. Exactly 5 can win.
	const workers = 50
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.ReserveSeats(context.Background(), eventID, 2)
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			losses++
		}
	}

	assert.Equal(t, 5, wins)
	assert.Equal(t, workers-5, losses)
	assert.Equal(t, 10, ledger.booked)
}

func TestLedgerReleaseClampsAtZero(t *testing.T) {
	ledger := &fakeLedger{capacity: 10, booked: 3, status: StatusPublished}

	ledger.release(5)
	assert.Equal(t, 0, ledger.booked)

	require.NoError(t, ledger.reserve(10))
	assert.Equal(t, 10, ledger.booked)
}

func TestLedgerRejectsUnbookableStatus(t *testing.T) {
	for _, status := range []EventStatus{StatusDraft, StatusCancelled, StatusCompleted} {
		ledger := &fakeLedger{capacity: 10, status: status}
		err := ledger.reserve(1)
		assert.ErrorIs(t, err, ErrEventNotBookable, "status %s", status)
	}
}
