package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"flightbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller interface {
	CreateBooking(c *gin.Context)
	GetReservedSeats(c *gin.Context)
	GetBooking(c *gin.Context)
	GetUserBookings(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	bookings, err := ctrl.service.Book(c.Request.Context(), req.ScheduleID, req.SeatNumbers, req.UserID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Booking confirmed successfully", CreateBookingResponse{
		ScheduleID: req.ScheduleID,
		UserID:     req.UserID,
		SeatCount:  len(bookings),
		Bookings:   toResponses(bookings),
	})
}

// GetReservedSeats handles GET /api/v1/bookings/schedule/:scheduleId/reserved
func (ctrl *controller) GetReservedSeats(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId", "Invalid schedule ID")
	if !ok {
		return
	}

	seats := ctrl.service.ReservedSeats(c.Request.Context(), scheduleID)
	response.RespondSuccess(c, http.StatusOK, "Reserved seats retrieved successfully", ReservedSeatsResponse{
		ScheduleID:  scheduleID,
		SeatNumbers: seats,
		Count:       len(seats),
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (ctrl *controller) GetBooking(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id", "Invalid booking ID")
	if !ok {
		return
	}

	booking, err := ctrl.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrBookingNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondError(c, statusCode, err.Error(), nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Booking retrieved successfully", booking.ToResponse())
}

// GetUserBookings handles GET /api/v1/bookings/user/:userId
func (ctrl *controller) GetUserBookings(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId", "Invalid user ID")
	if !ok {
		return
	}

	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := ctrl.service.GetUserBookings(c.Request.Context(), userID, query)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Bookings retrieved successfully", page)
}

func parseIDParam(c *gin.Context, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, message, &response.ErrorDetail{
			Kind:   string(KindInvalidRequest),
			Fields: map[string]string{name: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

func respondBookingError(c *gin.Context, err error) {
	kind := KindOf(err)
	if kind == "" {
		kind = KindPersistenceFailed
	}

	detail := &response.ErrorDetail{
		Kind:      string(kind),
		Retryable: kind.Retryable(),
	}

	var bookingErr *BookingError
	if errors.As(err, &bookingErr) && bookingErr.SeatNumber != "" {
		detail.Fields = map[string]string{"seat_number": bookingErr.SeatNumber}
	}

	_ = c.Error(err)
	response.RespondError(c, kind.HTTPStatus(), kind.Message(), detail)
}

func respondBindError(c *gin.Context, err error) {
	detail := &response.ErrorDetail{Kind: string(KindInvalidRequest)}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		detail.Fields = make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			detail.Fields[fe.Field()] = validationMessage(fe)
		}
	} else {
		detail.Fields = map[string]string{"body": err.Error()}
	}

	response.RespondError(c, http.StatusBadRequest, "Invalid request data", detail)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "unique":
		return "must not contain duplicate seats"
	case "seatnumber":
		return "must not contain ':'"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
