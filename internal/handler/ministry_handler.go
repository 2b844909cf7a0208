package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mdsq/internal/service"
)

// MinistryHandler handles ministry, team and team membership endpoints.
type MinistryHandler struct {
	ministryService  service.MinistryService
	integrityService service.IntegrityService
}

// NewMinistryHandler creates a new ministry handler.
func NewMinistryHandler(ministryService service.MinistryService, integrityService service.IntegrityService) *MinistryHandler {
	return &MinistryHandler{ministryService: ministryService, integrityService: integrityService}
}

// NameRequest carries a single name.
type NameRequest struct {
	Name string `json:"name" validate:"required,max=150"`
}

// TeamMemberRequest links a member to a team.
type TeamMemberRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
}

// ListMinistries godoc
// @Summary List ministries with their teams and members
// @Tags ministries
// @Produce json
// @Success 200 {array} model.Ministry
// @Failure 500 {object} errors.ErrorResponse
// @Router /ministries [get]
func (h *MinistryHandler) ListMinistries(c echo.Context) error {
	ministries, err := h.ministryService.ListMinistries(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, ministries)
}

// CreateMinistry godoc
// @Summary Create a ministry
// @Tags ministries
// @Accept json
// @Produce json
// @Param request body NameRequest true "Ministry name"
// @Success 201 {object} model.Ministry
// @Failure 400 {object} errors.ErrorResponse
// @Router /ministries [post]
func (h *MinistryHandler) CreateMinistry(c echo.Context) error {
	var req NameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ministry, err := h.ministryService.CreateMinistry(c.Request().Context(), req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, ministry)
}

// DeleteMinistry godoc
// @Summary Delete a ministry with its teams
// @Tags ministries
// @Param id path string true "Ministry ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ministries/{id} [delete]
func (h *MinistryHandler) DeleteMinistry(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.integrityService.DeleteMinistry(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTeam godoc
// @Summary Create a team inside a ministry
// @Tags ministries
// @Accept json
// @Produce json
// @Param id path string true "Ministry ID"
// @Param request body NameRequest true "Team name"
// @Success 201 {object} model.Team
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /ministries/{id}/teams [post]
func (h *MinistryHandler) CreateTeam(c echo.Context) error {
	ministryID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req NameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	team, err := h.ministryService.CreateTeam(c.Request().Context(), ministryID, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, team)
}

// DeleteTeam godoc
// @Summary Delete a team
// @Tags ministries
// @Param id path string true "Team ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /teams/{id} [delete]
func (h *MinistryHandler) DeleteTeam(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.integrityService.DeleteTeam(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddTeamMember godoc
// @Summary Add a member to a team
// @Tags ministries
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body TeamMemberRequest true "Member"
// @Success 201 {object} model.TeamMember
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /teams/{id}/members [post]
func (h *MinistryHandler) AddTeamMember(c echo.Context) error {
	teamID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req TeamMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	link, err := h.ministryService.AddTeamMember(c.Request().Context(), teamID, uuid.MustParse(req.MemberID))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, link)
}

// RemoveTeamMember godoc
// @Summary Remove a member from a team
// @Tags ministries
// @Param id path string true "Team member link ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /team-members/{id} [delete]
func (h *MinistryHandler) RemoveTeamMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.ministryService.RemoveTeamMember(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// LabelHandler handles label endpoints.
type LabelHandler struct {
	labelService service.LabelService
}

// NewLabelHandler creates a new label handler.
func NewLabelHandler(labelService service.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

// LabelRequest creates a label.
type LabelRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"max=20"`
}

// ListLabels godoc
// @Summary List labels
// @Tags labels
// @Produce json
// @Success 200 {array} model.Label
// @Router /labels [get]
func (h *LabelHandler) ListLabels(c echo.Context) error {
	labels, err := h.labelService.ListLabels(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, labels)
}

// CreateLabel godoc
// @Summary Create a label
// @Tags labels
// @Accept json
// @Produce json
// @Param request body LabelRequest true "Label"
// @Success 201 {object} model.Label
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /labels [post]
func (h *LabelHandler) CreateLabel(c echo.Context) error {
	var req LabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	label, err := h.labelService.CreateLabel(c.Request().Context(), req.Name, req.Color)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, label)
}

// DeleteLabel godoc
// @Summary Delete a label
// @Tags labels
// @Param id path string true "Label ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /labels/{id} [delete]
func (h *LabelHandler) DeleteLabel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.labelService.DeleteLabel(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
