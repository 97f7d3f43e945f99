package appointment

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const notFoundMsg = "appointment not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/appointments", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("", h.List)
	readGroup.GET("/availability", h.Availability)
	readGroup.GET("/:id", h.Get)
	readGroup.GET("/:id/followups", h.ListNotes)

	writeGroup := api.Group("/appointments", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.PATCH("/:id", h.Patch)
	writeGroup.DELETE("/:id", h.Delete)
	writeGroup.POST("/:id/followups", h.AddNote)

	// Assistants may mark attendance but not reschedule.
	statusGroup := api.Group("/appointments", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	statusGroup.PATCH("/:id/status", h.ChangeStatus)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = 0
	if _, err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	v := &apierr.ValidationError{}
	for _, k := range []string{"fecha", "fecha_desde", "fecha_hasta"} {
		if raw := c.QueryParam(k); raw != "" {
			d, err := civil.ParseDate(raw)
			if err != nil {
				v.Add(k, err.Error())
				continue
			}
			params[k] = d.String()
		}
	}
	for _, k := range []string{"odontologo_id", "paciente_id", "estado_id"} {
		if raw := c.QueryParam(k); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n <= 0 {
				v.Add(k, k+" must be a positive integer")
			}
			params[k] = raw
		}
	}
	if raw := c.QueryParam("paciente_dni"); raw != "" {
		params["paciente_dni"] = raw
	}
	if err := v.OrNil(); err != nil {
		return apierr.ToHTTP(err, "")
	}

	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Availability lists the fixed slots of a day for one dentist.
func (h *Handler) Availability(c echo.Context) error {
	v := &apierr.ValidationError{}
	dentistID, err := strconv.ParseInt(c.QueryParam("odontologo_id"), 10, 64)
	if err != nil || dentistID <= 0 {
		v.Add("odontologo_id", "odontologo_id must be a positive integer")
	}
	date, err := civil.ParseDate(c.QueryParam("fecha"))
	if err != nil {
		v.Add("fecha", err.Error())
	}
	if err := v.OrNil(); err != nil {
		return apierr.ToHTTP(err, "")
	}
	items, err := h.svc.Availability(c.Request().Context(), dentistID, date)
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = id
	if _, err := h.svc.Update(c.Request().Context(), &a); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	if err := c.Bind(a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = id
	if _, err := h.svc.Update(c.Request().Context(), a); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, a)
}

type statusRequest struct {
	StatusID int64  `json:"estado_id"`
	Status   string `json:"estado"`
}

// ChangeStatus accepts either {"estado_id": n} or {"estado": "Atendido"}.
func (h *Handler) ChangeStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	if req.StatusID == 0 && req.Status != "" {
		req.StatusID, err = h.svc.StatusByName(ctx, req.Status)
		if err != nil {
			return apierr.ToHTTP(err, "")
		}
	}
	a, _, err := h.svc.ChangeStatus(ctx, id, req.StatusID)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListNotes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListNotes(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var n Note
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n.ID = 0
	n.AppointmentID = id
	if err := h.svc.AddNote(c.Request().Context(), &n); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, n)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
