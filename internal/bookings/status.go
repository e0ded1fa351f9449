package bookings

// Status is the booking lifecycle state.
//
// Guest bookings start at pending_approval and move to pending (approved) or
// rejected. Everything else starts at pending. Payment confirmation moves
// pending to confirmed; event-day scanning happens on confirmed bookings;
// completed is terminal after the event.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusPending         Status = "pending"
	StatusRejected        Status = "rejected"
	StatusConfirmed       Status = "confirmed"
	StatusCancelled       Status = "cancelled"
	StatusCompleted       Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingApproval, StatusPending, StatusRejected,
		StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// HoldsSeats reports whether a booking in this state still occupies seats in
// the event ledger. Rejected and cancelled bookings have released theirs.
func (s Status) HoldsSeats() bool {
	return !s.IsTerminal() || s == StatusCompleted
}

var statusTransitions = map[Status][]Status{
	StatusPendingApproval: {StatusPending, StatusRejected, StatusCancelled},
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusCompleted, StatusCancelled},
	StatusRejected:        {},
	StatusCancelled:       {},
	StatusCompleted:       {},
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks money separately from the lifecycle. A booking is
// scannable only when Status is confirmed AND PaymentStatus is completed.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

func (p PaymentStatus) String() string {
	return string(p)
}
