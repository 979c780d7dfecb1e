package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hornada/hornada/internal/config"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{name: "wildcard", origin: "https://pedidos.hornada.example", allowed: []string{"*"}, want: "*"},
		{name: "wildcard with credentials echoes origin", origin: "https://pedidos.hornada.example", allowed: []string{"*"}, credentials: true, want: "https://pedidos.hornada.example"},
		{name: "allow list match", origin: "https://pedidos.hornada.example", allowed: []string{"https://admin.hornada.example", "https://pedidos.hornada.example"}, want: "https://pedidos.hornada.example"},
		{name: "allow list miss", origin: "https://evil.example", allowed: []string{"https://pedidos.hornada.example"}, want: ""},
		{name: "no origin no wildcard", origin: "", allowed: []string{"https://pedidos.hornada.example"}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials)
			if got != tc.want {
				t.Fatalf("resolved origin want %q got %q", tc.want, got)
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins:   []string{"https://pedidos.hornada.example"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://pedidos.hornada.example")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://pedidos.hornada.example" {
		t.Fatalf("allow origin want matched origin got %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("allow credentials should be true")
	}
	exposed := w.Header().Get("Access-Control-Expose-Headers")
	if exposed != cartTokenHeader+", "+requestIDHeader {
		t.Fatalf("expose headers want cart token and request id, got %q", exposed)
	}
	if w.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("max age want 600 got %q", w.Header().Get("Access-Control-Max-Age"))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	// A caller-supplied id is kept and echoed back.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-hornada-1")
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) != "req-hornada-1" {
		t.Fatalf("response request id want req-hornada-1 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-hornada-1" {
		t.Fatalf("context request id want req-hornada-1 got %s", resp["request_id"])
	}

	// Without one, the middleware mints an id.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w2.Header().Get(requestIDHeader) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestCartOwnerMiddlewareGuestToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CartOwnerMiddleware())
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": c.GetString("cart_owner")})
	})

	// First contact mints a guest token and echoes it back.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	minted := w.Header().Get(cartTokenHeader)
	if minted == "" {
		t.Fatalf("first contact should mint a cart token")
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["owner"] != "guest:"+minted {
		t.Fatalf("owner want guest:%s got %s", minted, resp["owner"])
	}

	// A returning guest keeps the same owner key.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req2.Header.Set(cartTokenHeader, "abc-123")
	r.ServeHTTP(w2, req2)
	var resp2 map[string]string
	if err := json.Unmarshal(w2.Body.Bytes(), &resp2); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp2["owner"] != "guest:abc-123" {
		t.Fatalf("owner want guest:abc-123 got %s", resp2["owner"])
	}
	if w2.Header().Get(cartTokenHeader) != "abc-123" {
		t.Fatalf("existing token should be echoed back")
	}
}

func TestCartOwnerMiddlewarePrefersUserIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", uint(7)) }, CartOwnerMiddleware())
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"owner": c.GetString("cart_owner")})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(cartTokenHeader, "abc-123")
	r.ServeHTTP(w, req)

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["owner"] != "user:7" {
		t.Fatalf("signed-in owner want user:7 got %s", resp["owner"])
	}
	if w.Header().Get(cartTokenHeader) != "" {
		t.Fatalf("signed-in requests should not mint guest tokens")
	}
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

	// Errors ride the unified envelope on HTTP 200.
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}
