package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/aadi90392/yoga-master-full/pkg/response"
)

// Rule is one fixed-window limit. Rules with different scopes never share
// a counter, so a route limit stacks on top of the global one.
type Rule struct {
	Scope  string
	Max    int
	Window time.Duration
}

// KeyFunc identifies the caller a counter belongs to.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true to bypass the limit.
type AllowFunc func(*gin.Context) bool

func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + ipFromCtx(c) }
}

// KeyByIPAndPath counts each route pattern separately per client IP.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "path:" + normalizePath(c) + ":ip:" + ipFromCtx(c) }
}

// KeyByUser limits authenticated callers by email, anonymous ones by IP.
func KeyByUser() KeyFunc {
	return func(c *gin.Context) string {
		if email := c.GetString(CtxUserEmail); email != "" {
			return "user:" + email
		}
		return "anon:ip:" + ipFromCtx(c)
	}
}

// INCR plus PEXPIRE on the first hit; returns {count, pttl}.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RateLimit enforces rule with a Redis counter. A nil client, a bad rule or
// a Redis error lets the request through.
func RateLimit(rdb *redis.Client, rule Rule, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || rule.Max <= 0 || rule.Window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	prefix := "rl:" + rule.Scope + ":"
	limit := strconv.Itoa(rule.Max)
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, http.MethodOptions) || (allow != nil && allow(c)) {
			c.Next()
			return
		}
		res, err := windowScript.Run(c.Request.Context(), rdb, []string{prefix + keyFn(c)}, rule.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		count, pttl := int(res[0]), res[1]
		resetSec := 0
		if pttl > 0 {
			resetSec = int((time.Duration(pttl)*time.Millisecond + time.Second - 1) / time.Second)
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(rule.Max-count, 0)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
		if count > rule.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Fail(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
