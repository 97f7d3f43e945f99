package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/catalogs", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("/time-slots", h.ListTimeSlots)
	readGroup.GET("/time-slots/:id", h.GetTimeSlot)
	readGroup.GET("/weekdays", h.ListWeekdays)
	readGroup.GET("/weekdays/:id", h.GetWeekday)
	readGroup.GET("/:kind", h.List)
	readGroup.GET("/:kind/:id", h.Get)

	writeGroup := api.Group("/catalogs", auth.RequireRole(auth.RoleAdmin))
	writeGroup.POST("/time-slots", h.CreateTimeSlot)
	writeGroup.PUT("/time-slots/:id", h.UpdateTimeSlot)
	writeGroup.DELETE("/time-slots/:id", h.DeleteTimeSlot)
	writeGroup.POST("/weekdays", h.CreateWeekday)
	writeGroup.PUT("/weekdays/:id", h.UpdateWeekday)
	writeGroup.DELETE("/weekdays/:id", h.DeleteWeekday)
	writeGroup.POST("/:kind", h.Create)
	writeGroup.PUT("/:kind/:id", h.Update)
	writeGroup.DELETE("/:kind/:id", h.Delete)

	// Sub-resources of the entity they describe.
	aliases := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	aliases.GET("/patients/genders", h.listKind(KindGenders))
	aliases.GET("/patients/insurers", h.listKind(KindInsurers))
	aliases.GET("/staff/specialties", h.listKind(KindSpecialties))
	aliases.GET("/staff/positions", h.listKind(KindPositions))
	aliases.GET("/appointments/time-slots", h.ListTimeSlots)
	aliases.GET("/appointments/weekdays", h.ListWeekdays)
	aliases.GET("/appointments/statuses", h.listKind(KindStatuses))
	aliases.GET("/payments/types", h.listKind(KindPaymentTypes))
}

// -- Named items --

func (h *Handler) List(c echo.Context) error {
	return h.listKind(c.Param("kind"))(c)
}

func (h *Handler) listKind(slug string) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := h.svc.List(c.Request().Context(), slug)
		if err != nil {
			return catalogError(err)
		}
		return c.JSON(http.StatusOK, items)
	}
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	it, err := h.svc.Get(c.Request().Context(), c.Param("kind"), id)
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) Create(c echo.Context) error {
	var it Item
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	it.ID = 0
	if err := h.svc.Create(c.Request().Context(), c.Param("kind"), &it); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var it Item
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	it.ID = id
	if err := h.svc.Update(c.Request().Context(), c.Param("kind"), &it); err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), c.Param("kind"), id); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Time slots --

func (h *Handler) ListTimeSlots(c echo.Context) error {
	items, err := h.svc.ListTimeSlots(c.Request().Context())
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTimeSlot(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ts, err := h.svc.GetTimeSlot(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, "time slot not found")
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *Handler) CreateTimeSlot(c echo.Context) error {
	var ts TimeSlot
	if err := c.Bind(&ts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ts.ID = 0
	if err := h.svc.CreateTimeSlot(c.Request().Context(), &ts); err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusCreated, ts)
}

func (h *Handler) UpdateTimeSlot(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var ts TimeSlot
	if err := c.Bind(&ts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ts.ID = id
	if err := h.svc.UpdateTimeSlot(c.Request().Context(), &ts); err != nil {
		return apierr.ToHTTP(err, "time slot not found")
	}
	return c.JSON(http.StatusOK, ts)
}

func (h *Handler) DeleteTimeSlot(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTimeSlot(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, "time slot not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Weekdays --

func (h *Handler) ListWeekdays(c echo.Context) error {
	items, err := h.svc.ListWeekdays(c.Request().Context())
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetWeekday(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetWeekday(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, "weekday not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateWeekday(c echo.Context) error {
	var d Weekday
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d.ID = 0
	if err := h.svc.CreateWeekday(c.Request().Context(), &d); err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateWeekday(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var d Weekday
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateWeekday(c.Request().Context(), &d); err != nil {
		return apierr.ToHTTP(err, "weekday not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteWeekday(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteWeekday(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, "weekday not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func catalogError(err error) error {
	if errors.Is(err, ErrUnknownKind) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return apierr.ToHTTP(err, "catalog item not found")
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
