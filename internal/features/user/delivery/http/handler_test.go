package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-market-backend/internal/common/middleware"
	userredis "gift-market-backend/internal/features/user/repository/redis"
	"gift-market-backend/internal/features/user/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, service.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := service.NewUserService(userredis.NewProfileRepository(client))
	r := gin.New()
	r.Use(middleware.RequestID())
	NewUserHandler(svc, true).RegisterRoutes(r)
	return r, svc
}

func get(r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestGetUser(t *testing.T) {
	r, svc := newTestRouter(t)
	_, err := svc.GetOrCreateUser(context.Background(), "777", "carol", "Carol")
	require.NoError(t, err)

	w, out := get(r, "/users/0777")
	require.Equal(t, http.StatusOK, w.Code)
	profile := out["profile"].(map[string]interface{})
	assert.Equal(t, "777", profile["id"])
	assert.Equal(t, "carol", profile["username"])
	assert.Equal(t, float64(1), profile["level"])

	w, out = get(r, "/users/778")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", out["code"])

	w, out = get(r, "/users/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestGetMeRequiresInitData(t *testing.T) {
	r, _ := newTestRouter(t)

	w, out := get(r, "/users/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", out["code"])
}
