package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

type roleTable map[string]entity.Role

func (r roleTable) CurrentRole(_ context.Context, email string) (entity.Role, error) {
	role, ok := r[email]
	if !ok {
		return "", repo.ErrNotFound
	}
	return role, nil
}

func serve(t *testing.T, h gin.HandlerFunc, req *http.Request, chain ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/t", append(chain, h)...)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOptionalAuth_Viewer(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	roles := roleTable{"a@x.com": entity.RoleInstructor}
	stale, _, err := jwt.Generate("a@x.com", "user")
	require.NoError(t, err)
	ghost, _, err := jwt.Generate("ghost@x.com", "admin")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  entity.Viewer
	}{
		{name: "anonymous"},
		{name: "garbage token", token: "x.y.z"},
		{name: "live role wins", token: stale, want: entity.Viewer{Email: "a@x.com", Role: entity.RoleInstructor}},
		{name: "unknown account", token: ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got entity.Viewer
			req := httptest.NewRequest(http.MethodGet, "/t", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := serve(t, func(c *gin.Context) {
				got = Viewer(c)
				c.Status(http.StatusNoContent)
			}, req, OptionalAuth(jwt, roles))
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trust   bool
		headers map[string]string
		want    string
	}{
		{name: "cloudflare header trusted", trust: true, headers: map[string]string{"CF-Connecting-IP": "203.0.113.7"}, want: "203.0.113.7"},
		{name: "left-most forwarded", trust: true, headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, want: "198.51.100.1"},
		{name: "headers ignored when untrusted", headers: map[string]string{"CF-Connecting-IP": "203.0.113.7"}, want: "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/t", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			var got string
			serve(t, func(c *gin.Context) {
				got = c.GetString("real_ip")
				c.Status(http.StatusNoContent)
			}, req, RealIP(tt.trust))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	rec := serve(t, func(c *gin.Context) { c.Status(http.StatusNoContent) }, req,
		RateLimit(nil, Rule{Scope: "t", Max: 1, Window: time.Minute}, KeyByIP(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitKeys(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/cart/a@x.com", nil)
	c.Set("real_ip", "203.0.113.9")

	assert.Equal(t, "ip:203.0.113.9", KeyByIP()(c))
	assert.Equal(t, "path:/cart/a@x.com:ip:203.0.113.9", KeyByIPAndPath()(c))
	assert.Equal(t, "anon:ip:203.0.113.9", KeyByUser()(c))

	c.Set(CtxUserEmail, "a@x.com")
	assert.Equal(t, "user:a@x.com", KeyByUser()(c))
}
