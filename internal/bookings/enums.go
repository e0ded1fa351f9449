package bookings

// BookingOrigin identifies who a booking was made for and drives pricing,
// ticket limits, and the lifecycle it follows. Dispatch on it is exhaustive;
// adding an origin means touching every switch that mentions one.
type BookingOrigin string

const (
	OriginUser    BookingOrigin = "user"
	OriginMember  BookingOrigin = "member"
	OriginGuest   BookingOrigin = "guest"
	OriginOffline BookingOrigin = "offline"
)

func (o BookingOrigin) IsValid() bool {
	switch o {
	case OriginUser, OriginMember, OriginGuest, OriginOffline:
		return true
	}
	return false
}

func (o BookingOrigin) String() string {
	return string(o)
}

// RequiresApproval reports whether bookings of this origin start in
// pending_approval and need a sponsoring member's sign-off before payment.
func (o BookingOrigin) RequiresApproval() bool {
	return o == OriginGuest
}

// IsOnlinePaid reports whether the booking pays through the payment gateway.
// Offline bookings settle at the counter.
func (o BookingOrigin) IsOnlinePaid() bool {
	return o != OriginOffline
}

type PaymentMethod string

const (
	MethodRazorpay     PaymentMethod = "razorpay"
	MethodCash         PaymentMethod = "cash"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodRazorpay, MethodCash, MethodUPI, MethodBankTransfer, MethodOther:
		return true
	}
	return false
}

// IsOffline reports whether the method is recorded by staff rather than
// verified by the gateway.
func (m PaymentMethod) IsOffline() bool {
	return m != MethodRazorpay
}
