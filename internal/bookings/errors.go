package bookings

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a lifecycle operation is applied
	// to a booking whose current status does not permit it.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	ErrValidationFailed = errors.New("booking validation failed")

	ErrNotBookingOwner = errors.New("booking does not belong to this user")

	// ErrPaymentVerificationFailed is returned when the gateway signature
	// does not match. The booking stays pending; the client may retry.
	ErrPaymentVerificationFailed = errors.New("payment verification failed")

	// Scan rejections. ErrScanRejected is the umbrella, matched by
	// errors.Is; the wrapped sub-reasons say why the gate should turn the
	// ticket away.
	ErrScanRejected       = errors.New("qr scan rejected")
	ErrScanQuotaExhausted = fmt.Errorf("%w: scan limit reached", ErrScanRejected)
	ErrScanNotConfirmed   = fmt.Errorf("%w: booking is not confirmed", ErrScanRejected)
	ErrScanUnpaid         = fmt.Errorf("%w: payment is not completed", ErrScanRejected)
	ErrQRCodeNotFound     = fmt.Errorf("%w: unknown qr code", ErrScanRejected)
)
