package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken means nobody is logged in.
var ErrNoToken = errors.New("no token stored")

type storedToken struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// TokenStore persists the session token in a JSON file.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(storedToken{Token: token, SavedAt: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load returns the stored token or ErrNoToken.
func (s *TokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return "", fmt.Errorf("failed to parse token file: %w", err)
	}
	if st.Token == "" {
		return "", ErrNoToken
	}
	return st.Token, nil
}

// Clear removes the token file. A missing file is not an error.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// TokenExpiry reads the exp claim without verifying the signature. ok is
// false when the token carries no exp.
func TokenExpiry(token string) (expiry time.Time, ok bool, err error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, false, nil
	}
	return exp.Time, true, nil
}
