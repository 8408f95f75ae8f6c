package schedules

import "time"

// SearchSchedulesRequest finds SCHEDULED departures on one route and day.
// DepartureDate is a calendar date in UTC (YYYY-MM-DD).
type SearchSchedulesRequest struct {
	Origin        string `json:"origin" binding:"required,len=3,alpha"`
	Destination   string `json:"destination" binding:"required,len=3,alpha,nefield=Origin"`
	DepartureDate string `json:"departure_date" binding:"required,datetime=2006-01-02"`
}

type CreatePlaneRequest struct {
	Model      string `json:"model" binding:"required,min=2,max=100"`
	TotalSeats int    `json:"total_seats" binding:"required,min=10,max=999"`
}

type CreateFlightRequest struct {
	FlightNumber     string `json:"flight_number" binding:"required,min=2,max=10,alphanum"`
	DepartureAirport string `json:"departure_airport" binding:"required,len=3,alpha"`
	ArrivalAirport   string `json:"arrival_airport" binding:"required,len=3,alpha,nefield=DepartureAirport"`
	PlaneID          int64  `json:"plane_id" binding:"required,min=1"`
}

type CreateScheduleRequest struct {
	FlightID      int64     `json:"flight_id" binding:"required,min=1"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	BasePrice     float64   `json:"base_price" binding:"required,gt=0"`
}
