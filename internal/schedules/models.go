package schedules

import (
	"time"
)

// Plane is an aircraft model. Its capacity drives seat numbering.
type Plane struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Model      string    `json:"model" gorm:"not null;size:100;uniqueIndex"`
	TotalSeats int       `json:"total_seats" gorm:"not null;check:total_seats > 0"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Plane) TableName() string {
	return "planes"
}

// Flight is a permanent route between two airports flown by one plane model
type Flight struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FlightNumber     string    `json:"flight_number" gorm:"not null;size:10;uniqueIndex"`
	DepartureAirport string    `json:"departure_airport" gorm:"not null;size:3;index:idx_flights_route,priority:1"`
	ArrivalAirport   string    `json:"arrival_airport" gorm:"not null;size:3;index:idx_flights_route,priority:2"`
	PlaneID          int64     `json:"plane_id" gorm:"not null;index"`
	Plane            Plane     `json:"plane" gorm:"foreignKey:PlaneID"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Flight) TableName() string {
	return "flights"
}

// Schedule is one dated departure of a flight
type Schedule struct {
	ID            int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	FlightID      int64          `json:"flight_id" gorm:"not null;index"`
	Flight        Flight         `json:"flight" gorm:"foreignKey:FlightID"`
	DepartureTime time.Time      `json:"departure_time" gorm:"not null;index"`
	ArrivalTime   time.Time      `json:"arrival_time" gorm:"not null"`
	BasePrice     float64        `json:"base_price" gorm:"type:numeric(10,2);not null;check:base_price > 0"`
	Status        ScheduleStatus `json:"status" gorm:"type:varchar(20);not null;default:'SCHEDULED'"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Schedule) TableName() string {
	return "schedules"
}
