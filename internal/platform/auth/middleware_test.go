package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(testSecret), func(c *gin.Context) {
		id, name := AdminIdentity(c)
		c.JSON(http.StatusOK, gin.H{"admin_id": id, "admin_name": name})
	})
	r.GET("/super", RequireAuth(testSecret), RequireRole(RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "admin-1",
		"name": "Tester",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAuth(t *testing.T) {
	r := newAuthRouter()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, validClaims(RoleAdmin), testSecret)
		w := doGet(r, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin-1")
	})

	t.Run("missing header", func(t *testing.T) {
		w := doGet(r, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := doGet(r, "/protected", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, validClaims(RoleAdmin), []byte("other-secret"))
		w := doGet(r, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims(RoleAdmin)
		claims["exp"] = time.Now().Add(-time.Minute).Unix()
		token := signToken(t, jwt.SigningMethodHS256, claims, testSecret)
		w := doGet(r, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing sub", func(t *testing.T) {
		claims := validClaims(RoleAdmin)
		delete(claims, "sub")
		token := signToken(t, jwt.SigningMethodHS256, claims, testSecret)
		w := doGet(r, "/protected", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	t.Run("super admin allowed", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, validClaims(RoleSuperAdmin), testSecret)
		w := doGet(r, "/super", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("plain admin forbidden", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, validClaims(RoleAdmin), testSecret)
		w := doGet(r, "/super", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
