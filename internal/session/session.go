package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paperiq/dashboard/internal/models"
)

// Save records a successful login: token, user record and the authenticated flag.
func Save(s Storage, token string, user *models.User) error {
	if user == nil {
		user = &models.User{}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.Set(KeyAccessToken, token); err != nil {
		return err
	}
	if err := s.Set(KeyUser, string(raw)); err != nil {
		return err
	}
	return s.Set(KeyIsAuthenticated, "true")
}

// Clear removes every session key. It attempts all removals and joins the errors.
func Clear(s Storage) error {
	return errors.Join(
		s.Remove(KeyAccessToken),
		s.Remove(KeyUser),
		s.Remove(KeyIsAuthenticated),
	)
}

// Token returns the stored bearer token, or "" when signed out.
func Token(s Storage) string {
	v, _ := s.Get(KeyAccessToken)
	return v
}

// User decodes the stored user record. It returns nil when none is stored or
// the record is unreadable.
func User(s Storage) *models.User {
	raw, ok := s.Get(KeyUser)
	if !ok || raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// IsAuthenticated reports whether a token is present.
func IsAuthenticated(s Storage) bool {
	return Token(s) != ""
}
