package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func runWith(t *testing.T, mw gin.HandlerFunc, headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	engine := gin.New()

	var captured *gin.Context
	engine.GET("/", mw, func(c *gin.Context) {
		captured = c
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	engine.ServeHTTP(rec, req)
	return captured, rec
}

func TestRequestIDMiddleware_SetsUniqueID(t *testing.T) {
	first, _ := runWith(t, RequestIDMiddleware(), nil)
	second, _ := runWith(t, RequestIDMiddleware(), nil)

	a, b := first.GetString("request_id"), second.GetString("request_id")
	if a == "" || b == "" {
		t.Fatal("request_id not set")
	}
	if a == b {
		t.Error("request ids must differ per request")
	}
}

func TestRealIP_PrefersCloudflareHeader(t *testing.T) {
	c, _ := runWith(t, RealIP(), map[string]string{
		"CF-Connecting-IP": "203.0.113.7",
		"X-Forwarded-For":  "198.51.100.1, 10.0.0.1",
	})
	if got := c.GetString("real_ip"); got != "203.0.113.7" {
		t.Errorf("real_ip = %q, want the CF header value", got)
	}
}

func TestRealIP_FallsBackToForwardedFor(t *testing.T) {
	c, _ := runWith(t, RealIP(), map[string]string{
		"X-Forwarded-For": "198.51.100.1, 10.0.0.1",
	})
	if got := c.GetString("real_ip"); got != "198.51.100.1" {
		t.Errorf("real_ip = %q, want the left-most XFF entry", got)
	}
}

func TestRateLimit_PassThroughWithoutRedis(t *testing.T) {
	_, rec := runWith(t, RateLimit(nil, 1, time.Minute, KeyByIP(), nil), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("limiter without redis must be a no-op, got %d", rec.Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	allow := AllowPrivateIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("real_ip", "192.168.1.10")
	if !allow(c) {
		t.Error("192.168.1.10 should bypass the limiter")
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Set("real_ip", "203.0.113.7")
	if allow(c2) {
		t.Error("a public address must not bypass the limiter")
	}
}
