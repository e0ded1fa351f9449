package logger

import (
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger

// Init configures the process-wide logger. JSON output in production so the
// aggregator can index fields, text locally.
func Init(level string, production bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	if log == nil {
		Init("info", false)
	}
	return log
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// Domain helpers keep field names consistent across call sites.

func BookingCreated(bookingID, eventID string, seats int, origin string) {
	get().Info("booking created",
		"booking_id", bookingID,
		"event_id", eventID,
		"seats", seats,
		"origin", origin,
	)
}

func BookingCancelled(bookingID string, seatsReleased int) {
	get().Info("booking cancelled",
		"booking_id", bookingID,
		"seats_released", seatsReleased,
	)
}

func PaymentVerified(bookingID, orderID string) {
	get().Info("payment verified",
		"booking_id", bookingID,
		"order_id", orderID,
	)
}

func ScanAccepted(bookingID string, scanCount, scanLimit int) {
	get().Info("qr scan accepted",
		"booking_id", bookingID,
		"scan_count", scanCount,
		"scan_limit", scanLimit,
	)
}

func ScanRejected(bookingID, reason string) {
	get().Warn("qr scan rejected",
		"booking_id", bookingID,
		"reason", reason,
	)
}

// SeatReleaseFailed flags a booking whose seats could not be returned to the
// pool. These need manual reconciliation, so the log line carries everything
// an operator needs.
func SeatReleaseFailed(bookingID, eventID string, seats, attempts int, err error) {
	get().Error("seat release failed after retries",
		"booking_id", bookingID,
		"event_id", eventID,
		"seats", seats,
		"attempts", attempts,
		"error", err,
	)
}
