package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mdsq/internal/service"
)

// AttendanceHandler handles reception check-in endpoints.
type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// CheckInRequest records a member's arrival.
type CheckInRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
}

// CheckIn godoc
// @Summary Check a member in
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body CheckInRequest true "Member"
// @Success 201 {object} model.Attendance
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /attendance [post]
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	var req CheckInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	record, err := h.attendanceService.CheckIn(c.Request().Context(), uuid.MustParse(req.MemberID))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, record)
}

// Recent godoc
// @Summary List today's check-ins, newest first
// @Tags attendance
// @Produce json
// @Success 200 {array} model.Attendance
// @Failure 500 {object} errors.ErrorResponse
// @Router /attendance [get]
func (h *AttendanceHandler) Recent(c echo.Context) error {
	records, err := h.attendanceService.Recent(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, records)
}
