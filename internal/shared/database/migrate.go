package database

import (
	"flightbook/internal/bookings"
	"flightbook/internal/schedules"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, driver string) error {
	err := db.AutoMigrate(
		&schedules.Plane{},
		&schedules.Flight{},
		&schedules.Schedule{},
		&bookings.Booking{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db, driver)
}
