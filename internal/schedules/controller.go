package schedules

import (
	"errors"
	"net/http"
	"strconv"

	"flightbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const kindInvalidRequest = "INVALID_REQUEST"

type Controller interface {
	// Public
	SearchSchedules(c *gin.Context)
	GetSchedule(c *gin.Context)
	GetSeatMap(c *gin.Context)
	GetRoutes(c *gin.Context)
	GetPlane(c *gin.Context)

	// Admin
	CreatePlane(c *gin.Context)
	CreateFlight(c *gin.Context)
	CreateSchedule(c *gin.Context)
	ReassignPlane(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) SearchSchedules(c *gin.Context) {
	var req SearchSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	schedules, err := ctrl.service.SearchSchedules(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (ctrl *controller) GetSchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	schedule, err := ctrl.service.GetSchedule(c.Request.Context(), scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Schedule retrieved successfully", schedule)
}

func (ctrl *controller) GetSeatMap(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}

	seatMap, err := ctrl.service.GetSeatMap(c.Request.Context(), scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Seat map retrieved successfully", seatMap)
}

func (ctrl *controller) GetRoutes(c *gin.Context) {
	routes, err := ctrl.service.GetRoutes(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Flight routes retrieved successfully", routes)
}

func (ctrl *controller) GetPlane(c *gin.Context) {
	planeID, ok := parseIDParam(c, "planeId")
	if !ok {
		return
	}

	plane, err := ctrl.service.GetPlane(c.Request.Context(), planeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Plane retrieved successfully", plane)
}

func (ctrl *controller) CreatePlane(c *gin.Context) {
	var req CreatePlaneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	plane, err := ctrl.service.CreatePlane(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Plane created successfully", plane)
}

func (ctrl *controller) CreateFlight(c *gin.Context) {
	var req CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	flight, err := ctrl.service.CreateFlight(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Flight route created successfully", flight)
}

func (ctrl *controller) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	schedule, err := ctrl.service.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusCreated, "Schedule created successfully", schedule)
}

func (ctrl *controller) ReassignPlane(c *gin.Context) {
	flightID, ok := parseIDParam(c, "flightId")
	if !ok {
		return
	}
	planeID, ok := parseIDParam(c, "planeId")
	if !ok {
		return
	}

	flight, err := ctrl.service.ReassignPlane(c.Request.Context(), flightID, planeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondSuccess(c, http.StatusOK, "Plane reassigned successfully", flight)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RespondError(c, http.StatusBadRequest, "Invalid "+name, &response.ErrorDetail{
			Kind:   kindInvalidRequest,
			Fields: map[string]string{name: "must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	kind := "INTERNAL"
	switch {
	case errors.Is(err, ErrScheduleNotFound), errors.Is(err, ErrFlightNotFound), errors.Is(err, ErrPlaneNotFound):
		statusCode, kind = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		statusCode, kind = http.StatusBadRequest, kindInvalidRequest
	case errors.Is(err, ErrAlreadyExists):
		statusCode, kind = http.StatusConflict, "ALREADY_EXISTS"
	}

	_ = c.Error(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "Internal server error"
	}
	response.RespondError(c, statusCode, message, &response.ErrorDetail{Kind: kind})
}

func respondBindError(c *gin.Context, err error) {
	detail := &response.ErrorDetail{Kind: kindInvalidRequest}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		detail.Fields = make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			detail.Fields[fe.Field()] = "failed on " + fe.Tag()
		}
	} else {
		detail.Fields = map[string]string{"body": err.Error()}
	}

	response.RespondError(c, http.StatusBadRequest, "Invalid request data", detail)
}
