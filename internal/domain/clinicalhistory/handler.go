package clinicalhistory

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const notFoundMsg = "clinical history not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("/clinical-histories", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo, auth.RoleSecretaria, auth.RoleAsistente))
	readGroup.GET("", h.List)
	readGroup.GET("/:id", h.Get)
	readGroup.GET("/:id/followups", h.ListFollowUps)

	writeGroup := api.Group("/clinical-histories", auth.RequireRole(auth.RoleAdmin, auth.RoleOdontologo))
	writeGroup.POST("", h.Create)
	writeGroup.PUT("/:id", h.Update)
	writeGroup.PATCH("/:id", h.Patch)
	writeGroup.DELETE("/:id", h.Delete)
	writeGroup.POST("/:id/followups", h.AddFollowUp)
}

func (h *Handler) Create(c echo.Context) error {
	var hc History
	if err := c.Bind(&hc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	hc.ID = 0
	if err := h.svc.Create(c.Request().Context(), &hc); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, hc)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, hc)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	v := &apierr.ValidationError{}
	for _, k := range []string{"paciente_id", "odontologo_id"} {
		if raw := c.QueryParam(k); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n <= 0 {
				v.Add(k, k+" must be a positive integer")
			}
			params[k] = raw
		}
	}
	if raw := c.QueryParam("finalizado"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			v.Add("finalizado", "finalizado must be true or false")
		}
		params["finalizado"] = strconv.FormatBool(b)
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
	var hc History
	if err := c.Bind(&hc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	hc.ID = id
	if err := h.svc.Update(c.Request().Context(), &hc); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, hc)
}

// Patch binds onto the stored history. Details are only rewritten when the
// body carries "detalles".
func (h *Handler) Patch(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	hc.Details = nil
	if err := c.Bind(hc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	hc.ID = id
	if err := h.svc.Update(c.Request().Context(), hc); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, hc)
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

func (h *Handler) ListFollowUps(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListFollowUps(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddFollowUp(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var f FollowUp
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	f.ID = 0
	f.HistoryID = id
	if err := h.svc.AddFollowUp(c.Request().Context(), &f); err != nil {
		return apierr.ToHTTP(err, notFoundMsg)
	}
	return c.JSON(http.StatusCreated, f)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
