package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mdsq/internal/model"
	"mdsq/internal/service"
)

// SeedHandler handles seed data endpoints. It is only routed in development.
type SeedHandler struct {
	seedService service.SeedService
	email       string
	password    string
}

// NewSeedHandler creates a new seed handler for the configured rescue admin.
func NewSeedHandler(seedService service.SeedService, email, password string) *SeedHandler {
	return &SeedHandler{seedService: seedService, email: email, password: password}
}

// SeedAdminResponse represents the seed response.
type SeedAdminResponse struct {
	Message string        `json:"message"`
	Member  *model.Member `json:"member"`
}

// SeedAdmin godoc
// @Summary Create or repair the rescue administrator
// @Tags seed
// @Produce json
// @Success 200 {object} SeedAdminResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed/admin [post]
func (h *SeedHandler) SeedAdmin(c echo.Context) error {
	member, err := h.seedService.EnsureAdmin(c.Request().Context(), h.email, h.password)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, SeedAdminResponse{
		Message: "admin seeded successfully",
		Member:  member,
	})
}
