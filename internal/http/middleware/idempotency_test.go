package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestCtx(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func TestGetIdempotencyKey_AbsentAndPresent(t *testing.T) {
	c, _ := newTestCtx(http.MethodPost, "/x")
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("expected no key")
	}
	c.Set(ctxKeyIdemKey, "retry-1")
	if k, ok := GetIdempotencyKey(c); !ok || k != "retry-1" {
		t.Fatalf("got %q %v", k, ok)
	}
}

func TestIsReplay_Default(t *testing.T) {
	c, _ := newTestCtx(http.MethodPost, "/x")
	if IsReplay(c) {
		t.Fatalf("fresh context must not be a replay")
	}
}

func TestUserIDFromCtx_Fallbacks(t *testing.T) {
	c, _ := newTestCtx(http.MethodPost, "/x")
	if got := userIDFromCtx(c); got != "front-desk" {
		t.Fatalf("expected front-desk fallback, got %q", got)
	}

	c.Request.Header.Set("X-User-ID", "reception-2")
	if got := userIDFromCtx(c); got != "reception-2" {
		t.Fatalf("expected header identity, got %q", got)
	}

	c.Set("userID", "dr-admin")
	if got := userIDFromCtx(c); got != "dr-admin" {
		t.Fatalf("expected context identity, got %q", got)
	}
}

func TestIdempotencyValidator_NoHeader_PassThrough(t *testing.T) {
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, nil))
	r.POST("/outbox/:id/sent", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("no key expected")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/outbox/a1/sent", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_RejectsMalformedKey(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"spaces", "has spaces"},
		{"control", "bad\nkey"},
		{"too long", strings.Repeat("a", 201)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(IdempotencyValidator(IdempotencyOptions{}, nil))
			r.POST("/outbox/:id/sent", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := httptest.NewRequest(http.MethodPost, "/outbox/a1/sent", nil)
			req.Header.Set(HeaderIdempotencyKey, tc.key)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestIdempotencyValidator_LookupMiss_NotReplay(t *testing.T) {
	lookup := func(_ context.Context, userID, tab, key string, _ time.Time) (bool, error) {
		if userID != "front-desk" {
			t.Fatalf("unexpected user %q", userID)
		}
		if tab != "Outbox" || key != "k-1" {
			t.Fatalf("unexpected tab/key: %q %q", tab, key)
		}
		return false, nil
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{
		Scope: func(*gin.Context) string { return "Outbox" },
	}, lookup))
	r.POST("/outbox/:id/sent", func(c *gin.Context) {
		if IsReplay(c) {
			t.Fatalf("miss must not flag replay")
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/outbox/a1/sent", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_LookupHit_FlagsReplay(t *testing.T) {
	lookup := func(_ context.Context, _, _, _ string, _ time.Time) (bool, error) {
		return true, nil
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/recalls/:id/status", func(c *gin.Context) {
		if !IsReplay(c) {
			t.Fatalf("expected replay flag")
		}
		if v, ok := c.Get(ctxKeyRateBypass); !ok || v != true {
			t.Fatalf("expected rate bypass flag")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/recalls/r1/status", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_LookupError_Tolerated(t *testing.T) {
	lookup := func(_ context.Context, _, _, _ string, _ time.Time) (bool, error) {
		return false, errors.New("store unavailable")
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/outbox/:id/open", func(c *gin.Context) {
		if IsReplay(c) {
			t.Fatalf("lookup error must not flag replay")
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/outbox/a1/open", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_DefaultScopeIsRoutePath(t *testing.T) {
	var gotTab string
	lookup := func(_ context.Context, _, tab, _ string, _ time.Time) (bool, error) {
		gotTab = tab
		return false, nil
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/followups/cancelled/:id/close", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/followups/cancelled/f7/close", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if gotTab != "/followups/cancelled/:id/close" {
		t.Fatalf("scope = %q", gotTab)
	}
}
