package staff

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const notFoundMsg = "staff member not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/staff", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("", h.List)
	readGroup.GET("/me", h.Me)
	readGroup.GET("/:id", h.Get)

	writeGroup := api.Group("/staff", auth.RequireRole(auth.RoleAdmin))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.PATCH("/:id", h.Patch)
	writeGroup.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var m Member
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m.ID = 0
	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, m)
}

// Me returns the staff record linked to the caller's account.
func (h *Handler) Me(c echo.Context) error {
	uid := auth.ActorID(c.Request().Context())
	if uid == nil {
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	}
	m, err := h.svc.GetByUserID(c.Request().Context(), *uid)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"dni", "q", "puesto"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	v := &apierr.ValidationError{}
	if raw := c.QueryParam("activo"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("activo", "activo must be true or false")
		}
		params["activo"] = strconv.FormatBool(b)
	}
	for _, k := range []string{"puesto_id", "especialidad_id"} {
		if raw := c.QueryParam(k); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n <= 0 {
				v.Add(k, k+" must be a positive integer")
			}
			params[k] = raw
		}
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

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var m Member
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m.ID = id
	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	if err := c.Bind(m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	m.ID = id
	if err := h.svc.Update(c.Request().Context(), m); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
