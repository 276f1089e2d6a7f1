package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"job-portal/backend/models"
	"job-portal/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func protectedHandler(t *testing.T, wantID primitive.ObjectID, wantRole models.UserRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, err := utils.GetUserIDFromContext(r.Context())
		require.NoError(t, err, "context 中應該有使用者 ID")
		assert.Equal(t, wantID, gotID)

		gotRole, err := utils.GetUserRoleFromContext(r.Context())
		require.NoError(t, err, "context 中應該有使用者角色")
		assert.Equal(t, wantRole, gotRole)

		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID, "testuser", models.RoleHR, testSecret)
	require.NoError(t, err)

	mw := JWTMiddleware(testSecret)

	t.Run("缺少 Authorization header 時回 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		mw(protectedHandler(t, userID, models.RoleHR)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("格式錯誤的 header 時回 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", token) // 缺少 Bearer 前綴
		rec := httptest.NewRecorder()
		mw(protectedHandler(t, userID, models.RoleHR)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("無效 token 時回 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		mw(protectedHandler(t, userID, models.RoleHR)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("合法 token 放行並填入 context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw(protectedHandler(t, userID, models.RoleHR)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	userID := primitive.NewObjectID()
	mw := JWTMiddleware(testSecret)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("角色相符時放行", func(t *testing.T) {
		token, err := utils.GenerateJWT(userID, "admin", models.RoleAdmin, testSecret)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw(RequireRole(models.RoleAdmin)(ok)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("角色不符時回 403", func(t *testing.T) {
		token, err := utils.GenerateJWT(userID, "applicant", models.RoleApplicant, testSecret)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mw(RequireRole(models.RoleAdmin)(ok)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("未經 JWTMiddleware 時回 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		RequireRole(models.RoleAdmin)(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
