package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONFieldRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"  Cliente@Hornada.Example  "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "203.0.113.9:4444"

	key := KeyByIPAndJSONField("email")(c)
	if key != "cliente@hornada.example|203.0.113.9" {
		t.Fatalf("key want cliente@hornada.example|203.0.113.9 got %s", key)
	}

	// The body must still bind after key extraction.
	var payload struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		t.Fatalf("bind after key extraction failed: %v", err)
	}
	if strings.TrimSpace(payload.Email) != "Cliente@Hornada.Example" {
		t.Fatalf("restored body lost the email, got %q", payload.Email)
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"captcha_id":"x"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "203.0.113.9:4444"

	key := KeyByIPAndJSONField("email")(c)
	if key != "203.0.113.9" {
		t.Fatalf("missing field should fall back to ip, got %s", key)
	}
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	// A nil redis client disables the limit entirely.
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	// So does a rule without a budget.
	r.Use(RateLimitMiddleware(nil, RateLimitRule{}, nil))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status want 200 got %d", i, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d expected handler response, got %s", i, w.Body.String())
		}
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(21), want: 21, ok: true},
		{name: "int32", input: int32(22), want: 22, ok: true},
		{name: "uint64", input: uint64(23), want: 23, ok: true},
		{name: "float64 truncates", input: float64(24.9), want: 24, ok: true},
		{name: "string", input: "nope", want: 0, ok: false},
		{name: "nil", input: nil, want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
