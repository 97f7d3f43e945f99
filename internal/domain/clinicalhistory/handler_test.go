package clinicalhistory

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

func newTestHandler() (*Handler, *echo.Echo, *mockRepo) {
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

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withID(c echo.Context, id int64) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(id, 10))
	return c
}

func TestHandler_Create(t *testing.T) {
	h, e, _ := newTestHandler()
	c, rec := jsonContext(e, http.MethodPost, "/", `{"paciente_id":1,"odontologo_id":2,"descripcion":"Caries","finalizado":true,"detalles":[{"tratamiento_id":3,"pieza_id":11,"cara_id":2}]}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got History
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.EndedAt == nil {
		t.Error("expected fecha_fin derived from finalizado")
	}
	if len(got.Details) != 1 || got.Details[0].ToothID == nil || *got.Details[0].ToothID != 11 {
		t.Errorf("unexpected details %+v", got.Details)
	}
}

func TestHandler_Create_Invalid(t *testing.T) {
	h, e, _ := newTestHandler()
	c, _ := jsonContext(e, http.MethodPost, "/", `{"descripcion":"x"}`)
	expectHTTP(t, h.Create(c), http.StatusBadRequest)
}

func TestHandler_Patch_KeepsDetails(t *testing.T) {
	h, e, repo := newTestHandler()
	hc := newHistory()
	h.svc.Create(context.Background(), hc)

	c, rec := jsonContext(e, http.MethodPatch, "/", `{"finalizado":true}`)
	if err := h.Patch(withID(c, hc.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	stored := repo.store[hc.ID]
	if !stored.Finished || stored.EndedAt == nil {
		t.Error("expected history closed with fecha_fin")
	}
	if len(stored.Details) != 2 {
		t.Errorf("expected details untouched, got %d", len(stored.Details))
	}
}

func TestHandler_List_BadFilter(t *testing.T) {
	h, e, _ := newTestHandler()
	c, _ := jsonContext(e, http.MethodGet, "/?paciente_id=abc", "")
	expectHTTP(t, h.List(c), http.StatusBadRequest)
}

func TestHandler_List(t *testing.T) {
	h, e, _ := newTestHandler()
	h.svc.Create(context.Background(), newHistory())
	closed := newHistory()
	closed.Finished = true
	h.svc.Create(context.Background(), closed)

	c, rec := jsonContext(e, http.MethodGet, "/?finalizado=true", "")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data  []History `json:"data"`
		Total int       `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 || body.Data[0].ID != closed.ID {
		t.Errorf("unexpected listing %+v", body)
	}
}

func TestHandler_FollowUps(t *testing.T) {
	h, e, _ := newTestHandler()
	hc := newHistory()
	h.svc.Create(context.Background(), hc)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"descripcion":"Retiro de puntos"}`)
	if err := h.AddFollowUp(withID(c, hc.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	c, rec = jsonContext(e, http.MethodGet, "/", "")
	if err := h.ListFollowUps(withID(c, hc.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []FollowUp
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 1 || items[0].HistoryID != hc.ID {
		t.Errorf("unexpected follow-ups %+v", items)
	}

	c, _ = jsonContext(e, http.MethodGet, "/", "")
	expectHTTP(t, h.ListFollowUps(withID(c, 99)), http.StatusNotFound)
}

func TestHandler_Delete(t *testing.T) {
	h, e, repo := newTestHandler()
	hc := newHistory()
	h.svc.Create(context.Background(), hc)
	repo.referenced[hc.ID] = true

	c, _ := jsonContext(e, http.MethodDelete, "/", "")
	expectHTTP(t, h.Delete(withID(c, hc.ID)), http.StatusBadRequest)

	repo.referenced[hc.ID] = false
	c, rec := jsonContext(e, http.MethodDelete, "/", "")
	if err := h.Delete(withID(c, hc.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
