package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *mockItemRepo) {
	svc, repo := newTestService()
	return NewHandler(svc), echo.New(), repo
}

func expectHTTP(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
}

func TestHandler_CreateItem(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nombre":"Endodoncia"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues(KindTreatments)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var it Item
	json.Unmarshal(rec.Body.Bytes(), &it)
	if it.ID == 0 || it.Name != "Endodoncia" {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestHandler_CreateItem_BadRequest(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues(KindTreatments)

	expectHTTP(t, h.Create(c), http.StatusBadRequest)
}

func TestHandler_List_UnknownKind(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues("planetas")

	expectHTTP(t, h.List(c), http.StatusNotFound)
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues(KindGenders, "42")

	expectHTTP(t, h.Get(c), http.StatusNotFound)
}

func TestHandler_Delete(t *testing.T) {
	h, e, _ := newTestHandler()
	it := &Item{Name: "OSDE"}
	h.svc.Create(context.Background(), KindInsurers, it)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues(KindInsurers, strconv.FormatInt(it.ID, 10))

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Delete_Referenced(t *testing.T) {
	h, e, repo := newTestHandler()
	it := &Item{Name: "Femenino"}
	h.svc.Create(context.Background(), KindGenders, it)
	repo.referenced[it.ID] = true

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind", "id")
	c.SetParamValues(KindGenders, strconv.FormatInt(it.ID, 10))

	err := h.Delete(c)
	expectHTTP(t, err, http.StatusBadRequest)
	if msg, _ := err.(*echo.HTTPError).Message.(string); !strings.Contains(msg, "still referenced") {
		t.Errorf("expected readable message, got %v", err.(*echo.HTTPError).Message)
	}
}

func TestHandler_ListAlias(t *testing.T) {
	h, e, _ := newTestHandler()
	h.svc.Create(context.Background(), KindPaymentTypes, &Item{Name: "Transferencia"})
	h.svc.Create(context.Background(), KindPaymentTypes, &Item{Name: "Efectivo"})

	req := httptest.NewRequest(http.MethodGet, "/api/payments/types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.listKind(KindPaymentTypes)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []Item
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 2 || items[0].Name != "Efectivo" {
		t.Errorf("expected 2 items sorted by name, got %+v", items)
	}
}

func TestHandler_CreateTimeSlot(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"hora":"10:30"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateTimeSlot(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_CreateWeekday_Invalid(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"numero_dia":6}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	expectHTTP(t, h.CreateWeekday(c), http.StatusBadRequest)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e, _ := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))

	want := map[string]bool{
		"GET /api/catalogs/:kind":          false,
		"POST /api/catalogs/:kind":         false,
		"DELETE /api/catalogs/:kind/:id":   false,
		"GET /api/catalogs/time-slots":     false,
		"GET /api/patients/genders":        false,
		"GET /api/staff/specialties":       false,
		"GET /api/staff/positions":         false,
		"GET /api/appointments/time-slots": false,
		"GET /api/appointments/weekdays":   false,
		"GET /api/payments/types":          false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		if !found {
			t.Errorf("missing route %s", route)
		}
	}
}
