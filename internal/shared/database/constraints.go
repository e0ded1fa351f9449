package database

import (
	"fmt"

	"gorm.io/gorm"
)

// ApplyConstraints adds the invariants AutoMigrate cannot express. The
// booked_seats bound backs up the application-level conditional updates: even
// a buggy write path cannot oversell or go negative at the storage layer.
func ApplyConstraints(db *gorm.DB) error {
	statements := []string{
		`ALTER TABLE events DROP CONSTRAINT IF EXISTS chk_events_booked_seats_bounds`,
		`ALTER TABLE events ADD CONSTRAINT chk_events_booked_seats_bounds
			CHECK (booked_seats >= 0 AND booked_seats <= max_capacity)`,

		`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS chk_bookings_scan_count_bounds`,
		`ALTER TABLE bookings ADD CONSTRAINT chk_bookings_scan_count_bounds
			CHECK (qr_scan_count >= 0 AND qr_scan_count <= qr_scan_limit)`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_event_status ON bookings (event_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_payment_status ON bookings (payment_status)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint statement failed: %w", err)
		}
	}
	return nil
}
