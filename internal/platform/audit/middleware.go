package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/red095/clinic-management/internal/platform/auth"
	"github.com/red095/clinic-management/pkg/pagination"
)

// Middleware records every mutating request after its handler completes.
// Reads are not audited; the trail covers state changes only.
func Middleware(rec Recorder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return err
			}

			ctx := c.Request().Context()
			e := &Event{
				ActorRole:  auth.RoleFromContext(ctx),
				Method:     c.Request().Method,
				Path:       c.Path(),
				StatusCode: c.Response().Status,
				RequestID:  c.Response().Header().Get(echo.HeaderXRequestID),
				RemoteIP:   c.RealIP(),
				UserAgent:  c.Request().UserAgent(),
			}
			if id := auth.UserIDFromContext(ctx); id != uuid.Nil {
				e.ActorID = &id
			}
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					e.StatusCode = he.Code
				}
			}
			if logErr := rec.Log(ctx, e); logErr != nil {
				log.Error().Err(logErr).Str("path", e.Path).Msg("audit write failed")
			}
			return err
		}
	}
}

// Handler exposes the trail to admins.
type Handler struct {
	logger *Logger
}

func NewHandler(logger *Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/audit", h.ListEvents, auth.RequireRole("admin"))
}

func (h *Handler) ListEvents(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.logger.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if items == nil {
		items = []*Event{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
