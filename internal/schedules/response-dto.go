package schedules

import "time"

type PlaneResponse struct {
	ID         int64  `json:"id"`
	Model      string `json:"model"`
	TotalSeats int    `json:"total_seats"`
}

type FlightResponse struct {
	ID               int64         `json:"id"`
	FlightNumber     string        `json:"flight_number"`
	DepartureAirport string        `json:"departure_airport"`
	ArrivalAirport   string        `json:"arrival_airport"`
	Plane            PlaneResponse `json:"plane"`
}

type ScheduleResponse struct {
	ID            int64          `json:"id"`
	DepartureTime time.Time      `json:"departure_time"`
	ArrivalTime   time.Time      `json:"arrival_time"`
	BasePrice     float64        `json:"base_price"`
	Status        ScheduleStatus `json:"status"`
	Flight        FlightResponse `json:"flight"`
}

// SeatMapResponse keys seat statuses by seat number ("001".."N")
type SeatMapResponse struct {
	ScheduleID     int64                 `json:"schedule_id"`
	TotalSeats     int                   `json:"total_seats"`
	AvailableCount int                   `json:"available_count"`
	BookedCount    int                   `json:"booked_count"`
	HeldCount      int                   `json:"held_count"`
	SeatStatuses   map[string]SeatStatus `json:"seat_statuses"`
}

func (p *Plane) ToResponse() PlaneResponse {
	return PlaneResponse{
		ID:         p.ID,
		Model:      p.Model,
		TotalSeats: p.TotalSeats,
	}
}

func (f *Flight) ToResponse() FlightResponse {
	return FlightResponse{
		ID:               f.ID,
		FlightNumber:     f.FlightNumber,
		DepartureAirport: f.DepartureAirport,
		ArrivalAirport:   f.ArrivalAirport,
		Plane:            f.Plane.ToResponse(),
	}
}

func (s *Schedule) ToResponse() ScheduleResponse {
	return ScheduleResponse{
		ID:            s.ID,
		DepartureTime: s.DepartureTime,
		ArrivalTime:   s.ArrivalTime,
		BasePrice:     s.BasePrice,
		Status:        s.Status,
		Flight:        s.Flight.ToResponse(),
	}
}
