package record

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/red095/clinic-management/internal/domain/appointment"
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
	api.POST("/records", h.CreateRecord, auth.RequireRole("doctor"))
	api.POST("/appointments/:id/record", h.CreateForAppointment, auth.RequireRole("doctor"))
	api.GET("/records", h.ListRecords)
	api.GET("/records/:id", h.GetRecord)
	api.PUT("/records/:id", h.RejectMutation)
	api.PATCH("/records/:id", h.RejectMutation)
	api.DELETE("/records/:id", h.RejectMutation)
	api.GET("/appointments/:id/record", h.GetByAppointment)
	api.GET("/patients/:id/records", h.ListForPatient)
}

type createRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  string    `json:"prescription"`
	Notes         string    `json:"notes"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.AppointmentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "appointment_id is required")
	}
	if req.Diagnosis == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagnosis is required")
	}
	rec, err := h.svc.Create(c.Request().Context(), CreateRequest{
		ActorID:       auth.UserIDFromContext(c.Request().Context()),
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// CreateForAppointment is the appointment-scoped creation route; the
// appointment id comes from the path instead of the body.
func (h *Handler) CreateForAppointment(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Diagnosis == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagnosis is required")
	}
	rec, err := h.svc.Create(c.Request().Context(), CreateRequest{
		ActorID:       auth.UserIDFromContext(c.Request().Context()),
		AppointmentID: apptID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

// ListRecords serves the principal-relative history: patients get their
// own records. Admins pick a patient with the patient_id query parameter.
func (h *Handler) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	actorID := auth.UserIDFromContext(ctx)
	patientID := actorID
	if raw := c.QueryParam("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		patientID = id
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForPatient(ctx, actorID, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	if items == nil {
		items = []*Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// RejectMutation answers every write verb on an existing record with a
// conflict. The route exists so clients get a stable contract instead of a
// generic 405.
func (h *Handler) RejectMutation(c echo.Context) error {
	if _, err := uuid.Parse(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return echo.NewHTTPError(http.StatusConflict, ErrImmutable.Error())
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetByAppointment(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), apptID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	items, total, err := h.svc.ListForPatient(ctx, auth.UserIDFromContext(ctx), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	if items == nil {
		items = []*Record{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, appointment.ErrNotFound), errors.Is(err, identity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, appointment.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrAppointmentNotCompleted):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrImmutable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
