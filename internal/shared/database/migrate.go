package database

import (
	"fmt"

	"gorm.io/gorm"

	"srsevents/internal/bookings"
	"srsevents/internal/events"
	"srsevents/internal/users"
	"srsevents/pkg/logger"
)

// Migrate applies the schema. uuid-ossp must exist before the models'
// uuid_generate_v4 defaults can work.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&bookings.Booking{},
		&bookings.QRScan{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	logger.Info("database migrations applied")
	return nil
}
