package audit

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/auth"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/pagination"
)

const listFailedMsg = "error al obtener auditorías"

type Handler struct {
	svc    *Service
	loc    *time.Location
	logger zerolog.Logger
}

// NewHandler builds the audit handler. loc is the clinic time zone used to
// turn fecha_desde/fecha_hasta into day boundaries.
func NewHandler(svc *Service, loc *time.Location, logger zerolog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{svc: svc, loc: loc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	appts := api.Group("/appointments/audit", auth.RequireRole(auth.RoleAdmin, auth.RoleSecretaria, auth.RoleOdontologo))
	appts.GET("", h.ListAppointmentRecords)
	appts.GET("/:id", h.GetAppointmentRecord)

	pays := api.Group("/payments/audit", auth.RequireRole(auth.RoleAdmin, auth.RoleSecretaria))
	pays.GET("", h.ListPaymentRecords)
	pays.GET("/:id", h.GetPaymentRecord)
}

func (h *Handler) ListAppointmentRecords(c echo.Context) error {
	f, err := ParseAppointmentFilter(c, h.loc)
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	page, err := pagination.PageFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "invalid page")
	}
	items, total, err := h.svc.SearchAppointmentRecords(c.Request().Context(), f, page)
	if err != nil {
		return h.listFailed(err, "turnos")
	}
	if err := checkPageInRange(page, total); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPageResponse(items, total, page, requestURL(c)))
}

func (h *Handler) GetAppointmentRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetAppointmentRecord(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, "audit record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListPaymentRecords(c echo.Context) error {
	f, err := ParsePaymentFilter(c, h.loc)
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	page, err := pagination.PageFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "invalid page")
	}
	items, total, err := h.svc.SearchPaymentRecords(c.Request().Context(), f, page)
	if err != nil {
		return h.listFailed(err, "pagos")
	}
	if err := checkPageInRange(page, total); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPageResponse(items, total, page, requestURL(c)))
}

func (h *Handler) GetPaymentRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.GetPaymentRecord(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, "audit record not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) listFailed(err error, trail string) error {
	h.logger.Error().Err(err).Str("trail", trail).Msg("audit listing failed")
	return echo.NewHTTPError(http.StatusInternalServerError, listFailedMsg).SetInternal(err)
}

// Pages past the last one are not found, except the first page of an empty
// listing.
func checkPageInRange(page pagination.Page, total int) error {
	if page.Number > 1 && page.Offset() >= total {
		return echo.NewHTTPError(http.StatusNotFound, "invalid page")
	}
	return nil
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func requestURL(c echo.Context) *url.URL {
	req := c.Request()
	u := *req.URL
	u.Scheme = c.Scheme()
	u.Host = req.Host
	return &u
}
