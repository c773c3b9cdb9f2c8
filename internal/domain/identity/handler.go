package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/red095/clinic-management/internal/platform/auth"
	"github.com/red095/clinic-management/pkg/pagination"
)

type Handler struct {
	dir Directory
}

func NewHandler(dir Directory) *Handler {
	return &Handler{dir: dir}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.ListDoctors)
	api.GET("/me", h.Me)
}

// ListDoctors exposes the doctor directory to any authenticated user, so
// patients can find a doctor id to book against.
func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.dir.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if items == nil {
		items = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Me returns the profile behind the authenticated principal.
func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.dir.Resolve(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, u)
}
