package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sooraj-Rao/college-resume-project/internal/domain/user"
	"github.com/Sooraj-Rao/college-resume-project/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[uuid.UUID]*user.User

func (s stubUsers) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func perform(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	u := &user.User{ID: uuid.New(), Email: "jane@example.com", IsActive: false}
	users := stubUsers{u.ID: u}

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(testSecret, users), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		loaded, ok := GetUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": loaded.Email})
	})

	valid, err := auth.GenerateToken(u.ID, u.Email, testSecret, 1)
	require.NoError(t, err)
	ghost, err := auth.GenerateToken(uuid.New(), "ghost@example.com", testSecret, 1)
	require.NoError(t, err)
	foreign, err := auth.GenerateToken(u.ID, u.Email, "other-secret", 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"deleted account", ghost, http.StatusUnauthorized},
		{"disabled account still passes", valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/me", tt.token, "")
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	id := uuid.New()
	token, err := auth.GenerateToken(id, "a@b.c", testSecret, 1)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/public", func(c *gin.Context) {
		got, ok := OptionalUserID(c, testSecret)
		c.JSON(http.StatusOK, gin.H{"id": got, "ok": ok})
	})

	w := perform(r, http.MethodGet, "/public", token, "")
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"ok":true`)

	w = perform(r, http.MethodGet, "/public", "broken", "")
	assert.Contains(t, w.Body.String(), `"ok":false`)
}

func TestAdminMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	admin, err := auth.GenerateAdminToken("root@example.com", testSecret, 1)
	require.NoError(t, err)
	userToken, err := auth.GenerateToken(uuid.New(), "a@b.c", testSecret, 1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/admin", "", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", "junk", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", userToken, "").Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/admin", admin, "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimitMiddleware(auth.NewMemoryRateLimiter(time.Minute, 2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "", "").Code)
	w := perform(r, http.MethodPost, "/login", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

type trackBody struct {
	SessionID string `json:"sessionId" validate:"required"`
	Event     string `json:"event" validate:"required,oneof=view download time exit"`
	Alias     string `json:"alias" validate:"alias"`
}

func TestValidateRequest(t *testing.T) {
	v := NewValidationMiddleware()
	r := gin.New()
	r.POST("/track", v.ValidateRequest(trackBody{}), func(c *gin.Context) {
		body := GetValidated[trackBody](c)
		c.JSON(http.StatusOK, gin.H{"event": body.Event})
	})

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"beacon text body", `{"sessionId":"abc","event":"exit"}`, http.StatusOK, `"event":"exit"`},
		{"empty body", ``, http.StatusBadRequest, "sessionId"},
		{"unknown event", `{"sessionId":"abc","event":"scroll"}`, http.StatusBadRequest, "must be one of"},
		{"bad alias", `{"sessionId":"abc","event":"view","alias":"a b"}`, http.StatusBadRequest, "alias"},
		{"malformed", `{"sessionId":`, http.StatusBadRequest, "Invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/track", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("ai", CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})
	cb.now = func() time.Time { return now }

	fail := true
	r := gin.New()
	r.POST("/ai", cb.CircuitBreakerMiddleware(), func(c *gin.Context) {
		if fail {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodPost, "/ai", "", "").Code)
	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodPost, "/ai", "", "").Code)
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodPost, "/ai", "", "").Code)

	now = now.Add(2 * time.Minute)
	fail = false
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/ai", "", "").Code)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCacheResponseWithoutRedis(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/overview", func(c *gin.Context) { c.Set(userIDKey, uuid.New()) },
		NewCacheMiddleware(nil, time.Minute).CacheResponse(),
		func(c *gin.Context) {
			calls++
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

	for i := 0; i < 2; i++ {
		w := perform(r, http.MethodGet, "/overview", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}
