// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods. The front
// desk retries status actions freely (flaky clinic wifi), so every POST may
// carry an Idempotency-Key header. The middleware validates the header,
// stashes the normalized key in the request context, and consults a lookup to
// detect requests that already completed, so downstream handlers can:
//   - read the key when recording a completed mutation (GetIdempotencyKey)
//   - short-circuit replays instead of re-running the write (IsReplay)
//   - skip rate limiting for served replays (internal flag)
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey a
// safe-retry key for unsafe operations. The value must be stable across
// retries of the same semantic action.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats a previously completed
// mutation for the same (user, tab, key) tuple.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation and scope derivation for
// IdempotencyValidator. TTL enforcement belongs in the lookup function.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
	// Scope derives the dedup scope for the current route, normally the sheet
	// tab the mutation targets. If nil, the route template path is used.
	Scope func(c *gin.Context) string
}

// IdempotencyLookup answers whether a completed, still-valid mutation exists
// for (userID, tab, key) at the given time. Return exists=true when the prior
// result can be replayed; return an error only for lookup failures, which must
// not block normal processing.
type IdempotencyLookup func(ctx context.Context, userID, tab, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it in the request context, and checks for a prior completed request
// via the supplied lookup. Detected replays are flagged for handlers (IsReplay)
// and exempted from rate limiting.
//
// Requests without the header pass through untouched; a malformed header is
// rejected with 400. The middleware never serves a cached payload itself:
// handlers decide how to answer a replay.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			scope := c.FullPath()
			if opts.Scope != nil {
				scope = opts.Scope(c)
			}
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), userIDFromCtx(c), scope, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx extracts the operator identity set by upstream middleware,
// falling back to the X-User-ID header and finally to the shared front-desk
// identity.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "front-desk"
}
