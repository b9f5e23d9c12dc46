package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/paperiq/dashboard/internal/models"
	"github.com/paperiq/dashboard/internal/session"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRequest is the body of POST /auth/register/.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (models.Result, error) {
	if err := checkInput(req); err != nil {
		return nil, err
	}
	var out models.Result
	if err := c.postJSON(ctx, "/auth/register/", req, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return out, nil
}

// Login signs in and persists the returned token and user record.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	if err := checkInput(req); err != nil {
		return nil, err
	}
	var out loginResponse
	if err := c.postJSON(ctx, "/auth/login/", req, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if out.Access == "" {
		return nil, errors.New("login: response has no access token")
	}
	if err := session.Save(c.store, out.Access, out.User); err != nil {
		return nil, fmt.Errorf("login: storing session: %w", err)
	}
	return out.User, nil
}

// CurrentUser fetches the signed-in user's record.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/auth/user/", nil, "", &u); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &u, nil
}

// Logout forgets the stored session. The backend keeps no server-side login
// state, so nothing is sent.
func (c *Client) Logout() error {
	return session.Clear(c.store)
}

// TokenExpiry reads the exp claim of a JWT access token without verifying it.
// The backend stays the authority on validity; this only feeds display.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func checkInput(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &InputError{Fields: fields, Err: err}
}
