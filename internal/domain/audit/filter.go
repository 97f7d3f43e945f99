package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
	"github.com/mariodiaz1375/consultorio-supabase/pkg/civil"
)

// ParseAppointmentFilter reads turno_numero, paciente_dni, accion,
// fecha_desde and fecha_hasta. Dates are whole days in loc.
func ParseAppointmentFilter(c echo.Context, loc *time.Location) (AppointmentFilter, error) {
	var f AppointmentFilter
	v := &apierr.ValidationError{}

	f.TurnoNumber = parseIntParam(c, "turno_numero", v)
	f.PatientDNI = strings.TrimSpace(c.QueryParam("paciente_dni"))
	f.Action = parseAction(c, appointmentActions, v)
	f.From, f.To = parseRange(c, loc, v)

	return f, v.OrNil()
}

// ParsePaymentFilter is ParseAppointmentFilter for payments, keyed by
// hist_clin_id instead of turno_numero.
func ParsePaymentFilter(c echo.Context, loc *time.Location) (PaymentFilter, error) {
	var f PaymentFilter
	v := &apierr.ValidationError{}

	f.HistoryNumber = parseIntParam(c, "hist_clin_id", v)
	f.PatientDNI = strings.TrimSpace(c.QueryParam("paciente_dni"))
	f.Action = parseAction(c, paymentActions, v)
	f.From, f.To = parseRange(c, loc, v)

	return f, v.OrNil()
}

func parseIntParam(c echo.Context, name string, v *apierr.ValidationError) *int64 {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		v.Add(name, "must be a positive integer")
		return nil
	}
	return &n
}

func parseAction(c echo.Context, valid map[string]bool, v *apierr.ValidationError) string {
	raw := strings.ToUpper(strings.TrimSpace(c.QueryParam("accion")))
	if raw == "" {
		return ""
	}
	if !valid[raw] {
		v.Add("accion", "unknown action "+strconv.Quote(raw))
		return ""
	}
	return raw
}

func parseRange(c echo.Context, loc *time.Location, v *apierr.ValidationError) (from, to *time.Time) {
	if loc == nil {
		loc = time.Local
	}
	if raw := c.QueryParam("fecha_desde"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			v.Add("fecha_desde", err.Error())
		} else {
			t := d.Start(loc)
			from = &t
		}
	}
	if raw := c.QueryParam("fecha_hasta"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			v.Add("fecha_hasta", err.Error())
		} else {
			t := d.End(loc)
			to = &t
		}
	}
	if from != nil && to != nil && from.After(*to) {
		v.Add("fecha_hasta", "must not be before fecha_desde")
	}
	return from, to
}
