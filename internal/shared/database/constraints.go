package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the durable backstop against double booking: at
// most one CONFIRMED row per (schedule_id, seat_number). Cancelled rows do
// not occupy the seat.
func MigrateConstraints(db *gorm.DB, driver string) error {
	if driver != DriverPostgres {
		// MySQL has no partial indexes. The seat lock protocol and the
		// post-lock occupancy check are the only guards there.
		return nil
	}

	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_confirmed_seat
		ON bookings (schedule_id, seat_number)
		WHERE status = 'CONFIRMED';
	`).Error
}
