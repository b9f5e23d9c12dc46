// handlers_auth.go - Login, registration and logout handlers
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/paperiq/dashboard/internal/backend"
	"github.com/paperiq/dashboard/internal/web"
	"go.uber.org/zap"
)

// AuthHandlerImpl implements the AuthHandler interface
type AuthHandlerImpl struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *zap.Logger) AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlerImpl{logger: logger}
}

type loginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type registerForm struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// HandleLoginPage shows the login form
func (h *AuthHandlerImpl) HandleLoginPage(c echo.Context) error {
	if s := currentSession(c); s != nil && s.Authenticated() {
		return c.Redirect(http.StatusSeeOther, DashboardPath)
	}
	return render(c, http.StatusOK, "login", web.Page{Title: "Login"})
}

// HandleLogin signs the browser session in
func (h *AuthHandlerImpl) HandleLogin(c echo.Context) error {
	s := currentSession(c)
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return NewBadRequestError("invalid login form", err)
	}

	user, err := s.Client.Login(c.Request().Context(), backend.LoginRequest{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		msg, status := authFailure(err, "Email and password are required", "Login failed")
		h.logger.Info("login failed", zap.String("email", form.Email), zap.Error(err))
		if wantsJSON(c) {
			return &APIError{Status: status, Code: "LOGIN_FAILED", Message: msg}
		}
		s.Dashboard.Notices().Error(msg)
		return render(c, status, "login", web.Page{Title: "Login", Form: web.Form{Email: form.Email}})
	}

	h.logger.Info("user logged in", zap.String("user", user.ID))
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, user)
	}
	s.Dashboard.Notices().Success(fmt.Sprintf("Welcome back, %s", user.DisplayName()))
	return c.Redirect(http.StatusSeeOther, DashboardPath)
}

// HandleRegisterPage shows the registration form
func (h *AuthHandlerImpl) HandleRegisterPage(c echo.Context) error {
	return render(c, http.StatusOK, "register", web.Page{Title: "Register"})
}

// HandleRegister creates an account and sends the user to the login page
func (h *AuthHandlerImpl) HandleRegister(c echo.Context) error {
	s := currentSession(c)
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return NewBadRequestError("invalid registration form", err)
	}

	result, err := s.Client.Register(c.Request().Context(), backend.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		msg, status := authFailure(err, "Name, a valid email and password are required", "Registration failed")
		h.logger.Info("registration failed", zap.String("email", form.Email), zap.Error(err))
		if wantsJSON(c) {
			return &APIError{Status: status, Code: "REGISTRATION_FAILED", Message: msg}
		}
		s.Dashboard.Notices().Error(msg)
		return render(c, status, "register", web.Page{
			Title: "Register",
			Form:  web.Form{Name: form.Name, Email: form.Email},
		})
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusCreated, result)
	}
	s.Dashboard.Notices().Success("Registration successful, please log in")
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// HandleLogout forgets the login and the uploaded document
func (h *AuthHandlerImpl) HandleLogout(c echo.Context) error {
	s := currentSession(c)
	if err := s.Dashboard.Logout(); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
		return NewInternalError("logout failed", err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, map[string]string{"redirect": LoginPath})
	}
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// authFailure picks the message and status shown for a failed auth call.
func authFailure(err error, inputMsg, fallback string) (string, int) {
	var input *backend.InputError
	if errors.As(err, &input) {
		return inputMsg, http.StatusBadRequest
	}
	var se *backend.StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fallback
		}
		if se.Status == http.StatusUnauthorized || se.Status == http.StatusBadRequest {
			return msg, se.Status
		}
		return msg, http.StatusBadGateway
	}
	return fallback, http.StatusBadGateway
}
