package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"flightbook/internal/bookings"
	"flightbook/internal/schedules"
	"flightbook/internal/shared/config"
	"flightbook/internal/shared/constants"
	"flightbook/internal/shared/database"
	"flightbook/pkg/cache"
	"flightbook/pkg/logger"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// The booking scenarios in the README use schedule 100
const demoScheduleID int64 = 100

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting flightbook database seeder...")

	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg, logger.GetDefault())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	// Cached catalog entries may describe rows that no longer exist
	ctx := context.Background()
	c := cache.NewService(db.Redis, logger.GetDefault())
	if err := c.DeletePattern(ctx, constants.CACHE_PREFIX+":schedules:*"); err != nil {
		fmt.Printf("⚠️  Failed to clear schedule cache: %v\n", err)
	}
	if err := c.DeletePattern(ctx, constants.PATTERN_INVALIDATE_FLIGHTS_ALL); err != nil {
		fmt.Printf("⚠️  Failed to clear flight cache: %v\n", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase empties the booking and catalog tables, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"bookings",
		"schedules",
		"flights",
		"planes",
	}

	return s.db.SQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)

			stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)
			if s.db.Driver == database.DriverMySQL {
				stmt = fmt.Sprintf("DELETE FROM %s", table)
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	planes, err := s.SeedPlanes()
	if err != nil {
		return fmt.Errorf("failed to seed planes: %w", err)
	}

	flights, err := s.SeedFlights(planes)
	if err != nil {
		return fmt.Errorf("failed to seed flights: %w", err)
	}

	if err := s.SeedSchedules(flights); err != nil {
		return fmt.Errorf("failed to seed schedules: %w", err)
	}

	return s.SeedBookings()
}

func (s *Seeder) SeedPlanes() ([]schedules.Plane, error) {
	fmt.Println("  ✈️  Seeding planes...")

	planes := []schedules.Plane{
		{Model: "Airbus A320neo", TotalSeats: 180},
		{Model: "Boeing 737-800", TotalSeats: 189},
		{Model: "ATR 72-600", TotalSeats: 70},
		{Model: "Airbus A321neo", TotalSeats: 222},
	}
	if err := s.db.SQL.Create(&planes).Error; err != nil {
		return nil, err
	}

	fmt.Printf("    Created %d planes\n", len(planes))
	return planes, nil
}

func (s *Seeder) SeedFlights(planes []schedules.Plane) ([]schedules.Flight, error) {
	fmt.Println("  🛫 Seeding flight routes...")

	flights := []schedules.Flight{
		{FlightNumber: "AI101", DepartureAirport: "DEL", ArrivalAirport: "BOM", PlaneID: planes[0].ID},
		{FlightNumber: "AI102", DepartureAirport: "BOM", ArrivalAirport: "DEL", PlaneID: planes[0].ID},
		{FlightNumber: "6E201", DepartureAirport: "BLR", ArrivalAirport: "HYD", PlaneID: planes[2].ID},
		{FlightNumber: "UK815", DepartureAirport: "DEL", ArrivalAirport: "BLR", PlaneID: planes[1].ID},
		{FlightNumber: "SG402", DepartureAirport: "MAA", ArrivalAirport: "CCU", PlaneID: planes[3].ID},
	}
	if err := s.db.SQL.Omit("Plane").Create(&flights).Error; err != nil {
		return nil, err
	}

	fmt.Printf("    Created %d flight routes\n", len(flights))
	return flights, nil
}

// SeedSchedules creates a week of departures per route. The first schedule
// is pinned to demoScheduleID.
func (s *Seeder) SeedSchedules(flights []schedules.Flight) error {
	fmt.Println("  🗓️  Seeding schedules...")

	base := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	prices := []float64{4899, 5250, 3199, 6100, 4450}

	var all []schedules.Schedule
	for day := 0; day < 7; day++ {
		for i, flight := range flights {
			departure := base.Add(time.Duration(day)*24*time.Hour + time.Duration(6+2*i)*time.Hour)
			all = append(all, schedules.Schedule{
				FlightID:      flight.ID,
				DepartureTime: departure,
				ArrivalTime:   departure.Add(2*time.Hour + 15*time.Minute),
				BasePrice:     prices[i%len(prices)],
				Status:        schedules.ScheduleStatusScheduled,
			})
		}
	}
	// Pinned id goes in on its own; mixing explicit and generated ids in
	// one batch insert is not portable.
	all[0].ID = demoScheduleID
	if err := s.db.SQL.Omit("Flight").Create(&all[0]).Error; err != nil {
		return err
	}
	rest := all[1:]
	if err := s.db.SQL.Omit("Flight").Create(&rest).Error; err != nil {
		return err
	}

	// Keep the sequence ahead of the pinned id
	if s.db.Driver == database.DriverPostgres {
		if err := s.db.SQL.Exec("SELECT setval(pg_get_serial_sequence('schedules', 'id'), (SELECT MAX(id) FROM schedules))").Error; err != nil {
			return fmt.Errorf("failed to advance schedule sequence: %w", err)
		}
	}

	fmt.Printf("    Created %d schedules (demo schedule id %d)\n", len(all), demoScheduleID)
	return nil
}

// SeedBookings confirms a few seats on the demo schedule so the seat map
// shows BOOKED entries.
func (s *Seeder) SeedBookings() error {
	fmt.Println("  🎟️  Seeding bookings...")

	now := time.Now().UTC()
	rows := []bookings.Booking{
		{ScheduleID: demoScheduleID, UserID: 1, SeatNumber: "001", Status: bookings.StatusConfirmed, BookingTime: now},
		{ScheduleID: demoScheduleID, UserID: 1, SeatNumber: "002", Status: bookings.StatusConfirmed, BookingTime: now},
		{ScheduleID: demoScheduleID, UserID: 2, SeatNumber: "010", Status: bookings.StatusCancelled, BookingTime: now},
	}
	if err := s.db.SQL.Create(&rows).Error; err != nil {
		return err
	}

	fmt.Printf("    Created %d bookings\n", len(rows))
	return nil
}
