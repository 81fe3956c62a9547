package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homeease/config"
	"homeease/models"
	"homeease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitPerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i+1, code)
		}
	}
	if code := call("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", code)
	}
	if code := call("10.0.0.2"); code != http.StatusNoContent {
		t.Fatalf("other client: status %d", code)
	}
}

func TestAuthStoresActorAndChecksRole(t *testing.T) {
	config.AppConfig.JWTSecret = "middleware-secret"
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), JWTAuthMiddleware())
	r.GET("/who", func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.String(http.StatusOK, string(actor.Role)+":"+actor.ID)
	})
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tok, err := utils.GenerateToken("u1", models.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "user:u1" {
		t.Fatalf("who: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin as user: %d", w.Code)
	}
}
