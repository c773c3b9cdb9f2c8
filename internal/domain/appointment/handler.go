package appointment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/red095/clinic-management/internal/domain/identity"
	"github.com/red095/clinic-management/internal/platform/auth"
	"github.com/red095/clinic-management/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/appointments", h.Book, auth.RequireRole("patient"))
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments/:id/confirm", h.Confirm, auth.RequireRole("doctor"))
	api.POST("/appointments/:id/cancel", h.Cancel, auth.RequireRole("patient", "doctor"))
	api.POST("/appointments/:id/complete", h.Complete, auth.RequireRole("doctor"))
	api.GET("/patients/:id/appointments", h.ListForPatient)
	api.GET("/doctors/:id/appointments", h.ListForDoctor)
}

type bookRequest struct {
	DoctorID      uuid.UUID `json:"doctor_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Reason        string    `json:"reason"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id is required")
	}
	if req.ScheduledTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "scheduled_time is required")
	}
	appt, err := h.svc.Book(c.Request().Context(), BookRequest{
		RequesterID:   auth.UserIDFromContext(c.Request().Context()),
		DoctorID:      req.DoctorID,
		ScheduledTime: req.ScheduledTime,
		Reason:        req.Reason,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.transition(c, h.svc.Confirm)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.transition(c, h.svc.Complete)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, actorID, apptID uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	appt, err := op(ctx, auth.UserIDFromContext(ctx), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Cancel(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id, req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

// List serves the principal-relative appointment listing: patients get
// their own bookings, doctors their own schedule. Admins pick a side with
// the patient_id or doctor_id query parameter.
func (h *Handler) List(c echo.Context) error {
	f, err := filterFromRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	actorID := auth.UserIDFromContext(ctx)

	var items []*Appointment
	var total int
	if raw := c.QueryParam("patient_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err = h.svc.ListForPatient(ctx, actorID, ownerID, f)
		if err != nil {
			return toHTTPError(err)
		}
	} else if raw := c.QueryParam("doctor_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, total, err = h.svc.ListForDoctor(ctx, actorID, ownerID, f)
		if err != nil {
			return toHTTPError(err)
		}
	} else {
		switch auth.RoleFromContext(ctx) {
		case "patient":
			items, total, err = h.svc.ListForPatient(ctx, actorID, actorID, f)
		case "doctor":
			items, total, err = h.svc.ListForDoctor(ctx, actorID, actorID, f)
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "patient_id or doctor_id is required")
		}
		if err != nil {
			return toHTTPError(err)
		}
	}

	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, f.Limit, f.Offset))
}

func (h *Handler) ListForPatient(c echo.Context) error {
	return h.list(c, h.svc.ListForPatient)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	return h.list(c, h.svc.ListForDoctor)
}

type listOp func(ctx context.Context, actorID, ownerID uuid.UUID, f Filter) ([]*Appointment, int, error)

func (h *Handler) list(c echo.Context, op listOp) error {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := filterFromRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	items, total, err := op(ctx, auth.UserIDFromContext(ctx), ownerID, f)
	if err != nil {
		return toHTTPError(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, f.Limit, f.Offset))
}

func filterFromRequest(c echo.Context) (Filter, error) {
	pg := pagination.FromContext(c)
	f := Filter{Limit: pg.Limit, Offset: pg.Offset, Order: OrderDesc}

	if raw := c.QueryParam("status"); raw != "" {
		st := Status(raw)
		if !st.Valid() {
			return f, errors.New("invalid status filter")
		}
		f.Status = &st
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errors.New("invalid from timestamp")
		}
		f.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, errors.New("invalid to timestamp")
		}
		f.To = &t
	}
	if c.QueryParam("order") == "asc" {
		f.Order = OrderAsc
	}
	return f, nil
}

// toHTTPError maps domain sentinels onto HTTP statuses. Authorization
// failures are 403, rule violations 422, conflicts 409.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, identity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRoleViolation), errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrPastTime), errors.Is(err, ErrHorizonExceeded), errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrDoubleBooked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
