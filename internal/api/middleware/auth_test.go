package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"penpal/backend/internal/api/middleware"
	"penpal/backend/internal/auth"
	"penpal/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity(secret))
	r.GET("/whoami", func(c *gin.Context) {
		id := middleware.CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": id.Authenticated, "username": id.Username})
	})
	r.GET("/private", middleware.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": middleware.CurrentIdentity(c).UserID})
	})
	return r
}

func TestIdentity(t *testing.T) {
	token, err := auth.IssueToken(secret, &models.User{ID: "u1", Username: "alice"}, time.Hour)
	require.NoError(t, err)
	r := newRouter()

	tests := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{"bearer header", "/whoami", "Bearer " + token, `{"authenticated":true,"username":"alice"}`},
		{"query token", "/whoami?token=" + token, "", `{"authenticated":true,"username":"alice"}`},
		{"no token", "/whoami", "", `{"authenticated":false,"username":""}`},
		{"bad token", "/whoami", "Bearer nope", `{"authenticated":false,"username":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestAuthRequired(t *testing.T) {
	token, err := auth.IssueToken(secret, &models.User{ID: "u1", Username: "alice"}, time.Hour)
	require.NoError(t, err)
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1"}`, w.Body.String())
}
