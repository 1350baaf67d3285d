package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payportal/internal/domain"
	"payportal/internal/utils"
)

const secret = "test-secret"

type revokedSet map[string]bool

func (r revokedSet) TokenRevoked(_ context.Context, id string) (bool, error) { return r[id], nil }

type users map[string]*domain.User

func (u users) UserByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("not found")
}

func newRouter(revoked revokedSet, found users) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := r.Group("/", JWTAuthMiddleware(secret, revoked))
	auth.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey), "role": c.GetString(RoleKey)})
	})
	auth.GET("/admin", AdminOnlyMiddleware(found), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	token, claims, err := utils.GenerateJWT("u1", domain.RoleUser, secret, time.Hour)
	require.NoError(t, err)
	revoked := revokedSet{}
	r := newRouter(revoked, users{})

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)

	w := get(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1","role":"user"}`, w.Body.String())

	revoked[claims.ID] = true
	w = get(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAdminOnlyMiddleware(t *testing.T) {
	found := users{
		"u1": {ID: "u1", Role: domain.RoleUser},
		"a1": {ID: "a1", Role: domain.RoleAdmin},
	}
	r := newRouter(revokedSet{}, found)

	userToken, _, err := utils.GenerateJWT("u1", domain.RoleUser, secret, time.Hour)
	require.NoError(t, err)
	adminToken, _, err := utils.GenerateJWT("a1", domain.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)
	// A role claim alone does not grant access
	forged, _, err := utils.GenerateJWT("u1", domain.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", forged).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", adminToken).Code)
}
