package auth

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-board-go/internal/models"
	"job-board-go/pkg/httpclient"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestClient(t *testing.T, url string) (*Client, *TokenStore) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session", "token.json"))
	c := NewClient(httpclient.NewHttpClient(5*time.Second), nil, url, 0, store, log.New(io.Discard, "", 0))
	return c, store
}

func TestTokenStoreRoundTrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "token.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("abc"))
	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok, err := TokenExpiry(signedToken(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok, err = TokenExpiry(signedToken(t, jwt.MapClaims{"sub": "42"}))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = TokenExpiry("not-a-jwt")
	assert.Error(t, err)
}

func TestLoginPersistsToken(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	var got models.Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(models.AuthResponse{Token: token, Message: "ok"})
	}))
	defer srv.Close()

	c, store := newTestClient(t, srv.URL+"/api/")
	assert.False(t, c.Authenticated())

	resp, err := c.Login(context.Background(), models.Credentials{Email: "a@b.co", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, token, resp.Token)
	assert.Equal(t, "a@b.co", got.Email)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, token, saved)
	assert.True(t, c.Authenticated())

	require.NoError(t, c.Logout())
	assert.False(t, c.Authenticated())
}

func TestExpiredTokenIsNotAuthenticated(t *testing.T) {
	c, store := newTestClient(t, "http://unused")
	require.NoError(t, store.Save(signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})))
	assert.False(t, c.Authenticated())

	require.NoError(t, store.Save(signedToken(t, jwt.MapClaims{"sub": "42"})))
	assert.True(t, c.Authenticated())
}

func TestLoginFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	_, err := c.Login(context.Background(), models.Credentials{Email: "a@b.co", Password: "wrong"})

	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "Invalid credentials", rerr.Message)
	assert.Equal(t, http.StatusUnauthorized, rerr.StatusCode)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"User registered"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp, err := c.Register(context.Background(), models.Registration{Name: "Jane", Email: "j@x.io", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "User registered", resp.Message)
	assert.False(t, c.Authenticated())
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")
	_, err := c.Register(context.Background(), models.Registration{Name: "Jane", Email: "nope", Password: "123"})
	assert.ErrorContains(t, err, "invalid registration")
}
