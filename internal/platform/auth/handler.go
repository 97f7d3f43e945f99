package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/apierr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/token", h.Token)
	g.POST("/token/refresh", h.Refresh)
	g.POST("/password-reset", h.RequestPasswordReset)
	g.POST("/password-reset/confirm", h.ConfirmPasswordReset)

	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)

	admin := g.Group("/users", RequireRole(RoleAdmin))
	admin.POST("", h.CreateUser)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (h *Handler) Token(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pair, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Refresh == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"refresh": "refresh is required"})
	}
	pair, err := h.svc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *Handler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Refresh == "" {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"refresh": "refresh is required"})
	}
	if err := h.svc.Logout(c.Request().Context(), req.Refresh); err != nil {
		return authError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return apierr.ToHTTP(err, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) RequestPasswordReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"detail": "if the address belongs to an account, a reset link has been sent",
	})
}

func (h *Handler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ConfirmPasswordReset(c.Request().Context(), req.Token, req.Password); err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "password updated"})
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.CreateUser(c.Request().Context(), req.Username, req.Email, req.Password, req.Roles)
	if err != nil {
		return apierr.ToHTTP(err, "")
	}
	return c.JSON(http.StatusCreated, u)
}

func authError(err error) error {
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrInvalidToken) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return apierr.ToHTTP(err, "")
}
