package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/service"
)

type userDirectoryStub struct {
	users map[string]*models.User
}

func (s *userDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newJWTTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authSvc := service.NewAuthService(&userDirectoryStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "tutor@example.com", FullName: "Tutor One", Role: models.RoleTeacher, Active: true},
		"user-2": {ID: "user-2", Email: "former@example.com", FullName: "Former Tutor", Role: models.RoleTeacher, Active: false},
	}}, service.AuthConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "ais-api"}, zap.NewNop())

	router := gin.New()
	router.GET("/protected", JWT(authSvc), func(c *gin.Context) {
		claims, ok := c.Get(ContextUserKey)
		require.True(t, ok, "claims must be stored for downstream handlers")
		c.JSON(http.StatusOK, gin.H{"user_id": claims.(*models.JWTClaims).UserID})
	})
	return router, authSvc
}

func performProtected(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAllowsActiveAccount(t *testing.T) {
	router, authSvc := newJWTTestRouter(t)
	token, err := authSvc.IssueAccessToken(&models.User{ID: "user-1", Email: "tutor@example.com", Role: models.RoleTeacher, Active: true})
	require.NoError(t, err)

	rec := performProtected(router, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-1")
}

// A syntactically valid token must not grant access once the account behind
// it has been deactivated.
func TestJWTRejectsInactiveAccount(t *testing.T) {
	router, authSvc := newJWTTestRouter(t)
	token, err := authSvc.IssueAccessToken(&models.User{ID: "user-2", Email: "former@example.com", Role: models.RoleTeacher, Active: false})
	require.NoError(t, err)

	rec := performProtected(router, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account is inactive")
}

func TestJWTRejectsDeletedAccount(t *testing.T) {
	router, authSvc := newJWTTestRouter(t)
	token, err := authSvc.IssueAccessToken(&models.User{ID: "user-404", Role: models.RoleTeacher, Active: true})
	require.NoError(t, err)

	rec := performProtected(router, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	router, _ := newJWTTestRouter(t)

	rec := performProtected(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
