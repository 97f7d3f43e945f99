package payment

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const notFoundMsg = "payment not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/payments", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("", h.List)
	readGroup.GET("/:id", h.Get)

	writeGroup := api.Group("/payments", auth.RequireRole(auth.RoleAdmin, auth.RoleSecretaria))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.PATCH("/:id", h.Patch)
	writeGroup.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var p Payment
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = 0
	if _, err := h.svc.Create(c.Request().Context(), &p); err != nil {
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
	v := &apierr.ValidationError{}
	for _, k := range []string{"hist_clin_id", "paciente_id", "tipo_pago_id"} {
		if raw := c.QueryParam(k); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n <= 0 {
				v.Add(k, k+" must be a positive integer")
			}
			params[k] = raw
		}
	}
	if raw := c.QueryParam("pagado"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("pagado", "pagado must be true or false")
		}
		params["pagado"] = strconv.FormatBool(b)
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

func (h *Handler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var p Payment
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if _, err := h.svc.Update(c.Request().Context(), &p); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, p)
}

// Patch is the usual way to toggle pagado.
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
	if _, err := h.svc.Update(c.Request().Context(), p); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, p)
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

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
