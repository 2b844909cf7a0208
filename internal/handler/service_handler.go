package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mdsq/internal/auth"
	"mdsq/internal/model"
	"mdsq/internal/service"
)

// ServiceHandler handles service scheduling, itinerary and assignment endpoints.
type ServiceHandler struct {
	planService       service.PlanService
	assignmentService service.AssignmentService
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(planService service.PlanService, assignmentService service.AssignmentService) *ServiceHandler {
	return &ServiceHandler{planService: planService, assignmentService: assignmentService}
}

// PlanItemRequest is one itinerary row. Duration accepts a number of minutes
// or a string such as "5", "7.5" or "3:30".
type PlanItemRequest struct {
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    model.RawDuration `json:"duration" swaggertype:"string"`
}

// ServiceRequest is a service header plus its complete itinerary. On update
// the submitted items replace the stored ones and their order follows the
// array order.
type ServiceRequest struct {
	Name   string            `json:"name"`
	Date   string            `json:"date"`
	Type   string            `json:"type" validate:"max=50"`
	Leader string            `json:"leader" validate:"max=150"`
	Items  []PlanItemRequest `json:"items"`
}

// AssignmentRequest schedules a team member on a service.
type AssignmentRequest struct {
	TeamID   string `json:"team_id" validate:"required,uuid"`
	MemberID string `json:"member_id" validate:"required,uuid"`
}

// input converts the request. A date error is only reported to roles that may
// schedule; everyone else gets the permission error from the service.
func (r *ServiceRequest) input(role string) (service.PlanInput, error) {
	date, err := service.ParseServiceDate(r.Date)
	if err != nil && auth.CanManageServices(role) {
		return service.PlanInput{}, err
	}

	items := make([]service.PlanItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = service.PlanItemInput{
			Type:        item.Type,
			Title:       item.Title,
			Description: item.Description,
			Duration:    item.Duration,
		}
	}
	return service.PlanInput{Name: r.Name, Date: date, Type: r.Type, Leader: r.Leader, Items: items}, nil
}

// ListServices godoc
// @Summary List services, newest first
// @Tags services
// @Produce json
// @Success 200 {array} service.ServiceDetail
// @Failure 500 {object} errors.ErrorResponse
// @Router /services [get]
func (h *ServiceHandler) ListServices(c echo.Context) error {
	services, err := h.planService.ListServices(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, services)
}

// GetService godoc
// @Summary Get a service with its itinerary, total duration and projected starts
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} service.ServiceDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.planService.GetService(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateService godoc
// @Summary Create a service
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ServiceRequest true "Service"
// @Success 201 {object} service.ServiceDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /services [post]
func (h *ServiceHandler) CreateService(c echo.Context) error {
	var req ServiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role := roleOf(c)
	input, err := req.input(role)
	if err != nil {
		return fail(err)
	}

	detail, err := h.planService.CreateService(c.Request().Context(), role, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// ReplaceServicePlan godoc
// @Summary Update a service header and replace its itinerary
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Param request body ServiceRequest true "Service"
// @Success 200 {object} service.ServiceDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /services/{id} [put]
func (h *ServiceHandler) ReplaceServicePlan(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ServiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role := roleOf(c)
	input, err := req.input(role)
	if err != nil {
		return fail(err)
	}

	detail, err := h.planService.ReplaceServicePlan(c.Request().Context(), role, id, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteService godoc
// @Summary Delete a service with its itinerary and assignments
// @Tags services
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /services/{id} [delete]
func (h *ServiceHandler) DeleteService(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.planService.DeleteService(c.Request().Context(), roleOf(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Roster godoc
// @Summary List assigned and available members per team for a service
// @Tags assignments
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {array} service.RosterTeam
// @Failure 404 {object} errors.ErrorResponse
// @Router /services/{id}/assignments [get]
func (h *ServiceHandler) Roster(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	roster, err := h.assignmentService.Roster(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, roster)
}

// Assign godoc
// @Summary Assign a team member to a service
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Service ID"
// @Param request body AssignmentRequest true "Assignment"
// @Success 201 {object} model.ServiceAssignment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /services/{id}/assignments [post]
func (h *ServiceHandler) Assign(c echo.Context) error {
	serviceID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AssignmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	assignment, err := h.assignmentService.Assign(
		c.Request().Context(),
		roleOf(c),
		serviceID,
		uuid.MustParse(req.TeamID),
		uuid.MustParse(req.MemberID),
	)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, assignment)
}

// Unassign godoc
// @Summary Remove an assignment
// @Tags assignments
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /assignments/{id} [delete]
func (h *ServiceHandler) Unassign(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.assignmentService.Unassign(c.Request().Context(), roleOf(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
