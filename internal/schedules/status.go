package schedules

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusDeparted  ScheduleStatus = "DEPARTED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

// SeatStatus is the per-seat state shown on a seat map
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "AVAILABLE"
	SeatStatusBooked    SeatStatus = "BOOKED"
	SeatStatusHeld      SeatStatus = "HELD"
)
