package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const notFoundMsg = "patient not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/patients", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("", h.List)
	readGroup.GET("/:id", h.Get)

	writeGroup := api.Group("/patients", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.PATCH("/:id", h.Patch)
	writeGroup.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = 0
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, k := range []string{"dni", "q"} {
		if v := c.QueryParam(k); v != "" {
			params[k] = v
		}
	}
	if v := c.QueryParam("activo"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apierr.ToHTTP(apierr.NewValidation("activo", "activo must be true or false"), "")
		}
		params["activo"] = strconv.FormatBool(b)
	}
	if v := c.QueryParam("genero_id"); v != "" {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return apierr.ToHTTP(apierr.NewValidation("genero_id", "genero_id must be an integer"), "")
		}
		params["genero_id"] = v
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
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, p)
}

// Patch applies the body on top of the stored patient.
func (h *Handler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), p); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, p)
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
