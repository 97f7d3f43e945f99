package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewHandler(env.svc), env
}

func jsonContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Token(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1")

	c, rec := jsonContext(http.MethodPost, "/api/auth/token", `{"username":"dra.paz","password":"clave-segura-1"}`)
	if err := h.Token(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var pair TokenPair
	json.Unmarshal(rec.Body.Bytes(), &pair)
	if pair.Access == "" || pair.Refresh == "" {
		t.Error("expected access and refresh in response")
	}
}

func TestHandler_Token_BadCredentials(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1")

	c, _ := jsonContext(http.MethodPost, "/api/auth/token", `{"username":"dra.paz","password":"nope"}`)
	expectStatus(t, h.Token(c), http.StatusUnauthorized)
}

func TestHandler_Token_MissingFields(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := jsonContext(http.MethodPost, "/api/auth/token", `{}`)
	expectStatus(t, h.Token(c), http.StatusBadRequest)
}

func TestHandler_Token_InvalidBody(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := jsonContext(http.MethodPost, "/api/auth/token", `{not json`)
	expectStatus(t, h.Token(c), http.StatusBadRequest)
}

func TestHandler_Refresh(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1")
	pair, _ := env.svc.Login(context.Background(), "dra.paz", "clave-segura-1")

	c, rec := jsonContext(http.MethodPost, "/api/auth/token/refresh", `{"refresh":"`+pair.Refresh+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(http.MethodPost, "/api/auth/token/refresh", `{"refresh":"`+pair.Refresh+`"}`)
	expectStatus(t, h.Refresh(c), http.StatusUnauthorized)
}

func TestHandler_Refresh_Missing(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := jsonContext(http.MethodPost, "/api/auth/token/refresh", `{}`)
	expectStatus(t, h.Refresh(c), http.StatusBadRequest)
}

func TestHandler_Logout(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1")
	pair, _ := env.svc.Login(context.Background(), "dra.paz", "clave-segura-1")

	c, rec := jsonContext(http.MethodPost, "/api/auth/logout", `{"refresh":"`+pair.Refresh+`"}`)
	c.SetRequest(c.Request().WithContext(ContextWithUser(c.Request().Context(), "1", nil)))
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Me(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1", RoleOdontologo)

	c, rec := jsonContext(http.MethodGet, "/api/auth/me", "")
	c.SetRequest(c.Request().WithContext(ContextWithUser(c.Request().Context(), "1", []string{RoleOdontologo})))
	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"username":"dra.paz"`) {
		t.Errorf("expected username in body, got %s", body)
	}
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Error("expected password hash to be hidden")
	}
}

func TestHandler_Me_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	c, _ := jsonContext(http.MethodGet, "/api/auth/me", "")
	c.SetRequest(c.Request().WithContext(ContextWithUser(c.Request().Context(), "42", nil)))
	expectStatus(t, h.Me(c), http.StatusNotFound)
}

func TestHandler_PasswordReset(t *testing.T) {
	h, env := newTestHandler(t)
	env.createUser(t, "dra.paz", "paz@consultorio.local", "clave-segura-1")

	c, rec := jsonContext(http.MethodPost, "/api/auth/password-reset", `{"email":"paz@consultorio.local"}`)
	if err := h.RequestPasswordReset(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	token := resetTokenFromEmail(t, env.sender.Calls()[0].Body)

	c, rec = jsonContext(http.MethodPost, "/api/auth/password-reset/confirm",
		`{"token":"`+token+`","password":"nueva-clave-2"}`)
	if err := h.ConfirmPasswordReset(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = jsonContext(http.MethodPost, "/api/auth/password-reset/confirm",
		`{"token":"`+token+`","password":"nueva-clave-3"}`)
	expectStatus(t, h.ConfirmPasswordReset(c), http.StatusBadRequest)
}

func TestHandler_PasswordReset_UnknownEmail(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := jsonContext(http.MethodPost, "/api/auth/password-reset", `{"email":"nadie@consultorio.local"}`)
	if err := h.RequestPasswordReset(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown email, got %d", rec.Code)
	}
}

func TestHandler_CreateUser(t *testing.T) {
	h, _ := newTestHandler(t)
	c, rec := jsonContext(http.MethodPost, "/api/auth/users",
		`{"username":"recepcion","email":"recepcion@consultorio.local","password":"clave-segura-1","roles":["secretaria"]}`)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	c, _ = jsonContext(http.MethodPost, "/api/auth/users",
		`{"username":"recepcion","email":"otra@consultorio.local","password":"clave-segura-1"}`)
	expectStatus(t, h.CreateUser(c), http.StatusBadRequest)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/api"))

	want := map[string]bool{
		"POST /api/auth/token":                  false,
		"POST /api/auth/token/refresh":          false,
		"POST /api/auth/password-reset":         false,
		"POST /api/auth/password-reset/confirm": false,
		"POST /api/auth/logout":                 false,
		"GET /api/auth/me":                      false,
		"POST /api/auth/users":                  false,
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
