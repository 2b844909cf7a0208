package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"mdsq/internal/errors"
	"mdsq/internal/service"
)

var birthDateLayouts = []string{"2006-01-02", time.RFC3339}

// MemberHandler handles member directory endpoints.
type MemberHandler struct {
	memberService    service.MemberService
	integrityService service.IntegrityService
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(memberService service.MemberService, integrityService service.IntegrityService) *MemberHandler {
	return &MemberHandler{memberService: memberService, integrityService: integrityService}
}

// MemberRequest represents a member create or update request. LabelIDs is
// optional on update; when present it replaces the member's label set.
type MemberRequest struct {
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	BirthDate  string    `json:"birth_date"`
	Photo      string    `json:"photo"`
	ChurchRole string    `json:"church_role" validate:"max=50"`
	Password   string    `json:"password" validate:"omitempty,min=6"`
	LabelIDs   *[]string `json:"label_ids" validate:"omitempty,dive,uuid"`
}

// AccessRequest changes a member's church role and labels.
type AccessRequest struct {
	ChurchRole string   `json:"church_role" validate:"max=50"`
	LabelIDs   []string `json:"label_ids" validate:"omitempty,dive,uuid"`
}

func (r *MemberRequest) input() (service.MemberInput, error) {
	in := service.MemberInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Phone:      r.Phone,
		Email:      r.Email,
		Address:    r.Address,
		City:       r.City,
		Photo:      r.Photo,
		ChurchRole: r.ChurchRole,
		Password:   r.Password,
	}
	if r.BirthDate != "" {
		d, err := parseBirthDate(r.BirthDate)
		if err != nil {
			return in, err
		}
		in.BirthDate = &d
	}
	if r.LabelIDs != nil {
		in.SetLabels = true
		in.LabelIDs = parseIDs(*r.LabelIDs)
	}
	return in, nil
}

// parseBirthDate keeps the calendar date as written and pins it to midnight in
// time.Local, which is the zone the MySQL driver converts to before storing a
// DATE column.
func parseBirthDate(raw string) (time.Time, error) {
	for _, layout := range birthDateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			y, m, day := d.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "birth_date must be YYYY-MM-DD",
		Code:  "INVALID_DATE",
	})
}

// ListMembers godoc
// @Summary List members
// @Tags members
// @Produce json
// @Success 200 {array} model.Member
// @Failure 500 {object} errors.ErrorResponse
// @Router /members [get]
func (h *MemberHandler) ListMembers(c echo.Context) error {
	members, err := h.memberService.ListMembers(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, members)
}

// ListBirthdays godoc
// @Summary List members born on a month and day
// @Description Defaults to today when month or day is omitted.
// @Tags members
// @Produce json
// @Param month query int false "Month (1-12)"
// @Param day query int false "Day (1-31)"
// @Success 200 {array} model.Member
// @Failure 400 {object} errors.ErrorResponse
// @Router /members/birthdays [get]
func (h *MemberHandler) ListBirthdays(c echo.Context) error {
	now := time.Now()
	month, day := int(now.Month()), now.Day()

	if raw := c.QueryParam("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: "invalid month", Code: "INVALID_DATE"})
		}
		month = v
	}
	if raw := c.QueryParam("day"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: "invalid day", Code: "INVALID_DATE"})
		}
		day = v
	}

	members, err := h.memberService.ListBirthdays(c.Request().Context(), time.Month(month), day)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, members)
}

// GetMember godoc
// @Summary Get a member
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} model.Member
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /members/{id} [get]
func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	member, err := h.memberService.GetMember(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, member)
}

// CreateMember godoc
// @Summary Create a member
// @Description Creates the member and, when email and password are given, its login in one transaction.
// @Tags members
// @Accept json
// @Produce json
// @Param request body MemberRequest true "Member data"
// @Success 201 {object} model.Member
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /members [post]
func (h *MemberHandler) CreateMember(c echo.Context) error {
	var req MemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input, err := req.input()
	if err != nil {
		return err
	}

	member, err := h.memberService.CreateMember(c.Request().Context(), input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, member)
}

// UpdateMember godoc
// @Summary Update a member
// @Tags members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body MemberRequest true "Member data"
// @Success 200 {object} model.Member
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /members/{id} [put]
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req MemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input, err := req.input()
	if err != nil {
		return err
	}

	member, err := h.memberService.UpdateMember(c.Request().Context(), id, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, member)
}

// SetAccess godoc
// @Summary Change a member's church role and labels
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body AccessRequest true "Access data"
// @Success 200 {object} model.Member
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/members/{id} [put]
func (h *MemberHandler) SetAccess(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AccessRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	member, err := h.memberService.SetAccess(c.Request().Context(), id, req.ChurchRole, parseIDs(req.LabelIDs))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, member)
}

// DeleteMember godoc
// @Summary Delete a member
// @Description Detaches the member from teams, assignments, attendance and labels, then removes it and its login.
// @Tags members
// @Produce json
// @Param id path string true "Member ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.integrityService.DeleteMember(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
