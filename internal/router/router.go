package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"mdsq/internal/auth"
	"mdsq/internal/config"
	"mdsq/internal/errors"
	"mdsq/internal/handler"
	"mdsq/internal/logging"
)

// RoleHeader carries the caller's role label in header auth mode.
const RoleHeader = "X-User-Role"

// Handlers groups every HTTP handler the router mounts. Seed may be nil.
type Handlers struct {
	Auth       *handler.AuthHandler
	Member     *handler.MemberHandler
	Label      *handler.LabelHandler
	Ministry   *handler.MinistryHandler
	Service    *handler.ServiceHandler
	Attendance *handler.AttendanceHandler
	Seed       *handler.SeedHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	jwtService *auth.JWTService,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, RoleHeader},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	if h.Seed != nil {
		api.POST("/seed/admin", h.Seed.SeedAdmin)
	}

	secured := api.Group("", roleMiddleware(cfg.AuthMode, jwtService))

	// Directory
	secured.GET("/members", h.Member.ListMembers)
	secured.GET("/members/birthdays", h.Member.ListBirthdays)
	secured.GET("/members/:id", h.Member.GetMember)
	secured.POST("/members", h.Member.CreateMember)
	secured.PUT("/members/:id", h.Member.UpdateMember)
	secured.DELETE("/members/:id", h.Member.DeleteMember)
	secured.PUT("/admin/members/:id", h.Member.SetAccess, requireClass(auth.RoleAdmin))

	secured.GET("/labels", h.Label.ListLabels)
	secured.POST("/labels", h.Label.CreateLabel)
	secured.DELETE("/labels/:id", h.Label.DeleteLabel)

	secured.GET("/ministries", h.Ministry.ListMinistries)
	secured.POST("/ministries", h.Ministry.CreateMinistry)
	secured.DELETE("/ministries/:id", h.Ministry.DeleteMinistry)
	secured.POST("/ministries/:id/teams", h.Ministry.CreateTeam)
	secured.DELETE("/teams/:id", h.Ministry.DeleteTeam)
	secured.POST("/teams/:id/members", h.Ministry.AddTeamMember)
	secured.DELETE("/team-members/:id", h.Ministry.RemoveTeamMember)

	// Scheduling
	secured.GET("/services", h.Service.ListServices)
	secured.GET("/services/:id", h.Service.GetService)
	secured.POST("/services", h.Service.CreateService)
	secured.PUT("/services/:id", h.Service.ReplaceServicePlan)
	secured.DELETE("/services/:id", h.Service.DeleteService)
	secured.GET("/services/:id/assignments", h.Service.Roster)
	secured.POST("/services/:id/assignments", h.Service.Assign)
	secured.DELETE("/assignments/:id", h.Service.Unassign)

	// Reception
	secured.POST("/attendance", h.Attendance.CheckIn)
	secured.GET("/attendance", h.Attendance.Recent)
}

// roleMiddleware resolves the caller's role label into the request context.
// In jwt mode the bearer token is required and its role claim is used; in
// header mode the label comes from X-User-Role and may be empty.
func roleMiddleware(mode string, jwtService *auth.JWTService) echo.MiddlewareFunc {
	if mode == "header" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set(handler.RoleContextKey, c.Request().Header.Get(RoleHeader))
				return next(c)
			}
		}
	}

	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  jwtService.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(*auth.Claims); ok {
				c.Set(handler.RoleContextKey, claims.Role)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "missing or invalid token",
				Code:  "UNAUTHORIZED",
			}).SetInternal(err)
		},
	})
}

// requireClass rejects callers whose role does not classify as class.
func requireClass(class auth.RoleClass) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(handler.RoleContextKey).(string)
			if auth.Classify(role) != class {
				httpErr := errors.MapErrorToHTTP(errors.ErrPermissionDenied)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
