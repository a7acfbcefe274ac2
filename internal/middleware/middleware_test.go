package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(signer *auth.Signer) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.GET("/me", AuthRequired(signer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c)})
	})
	r.GET("/admin", AuthRequired(signer), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	signer := auth.NewSigner("k", time.Hour)
	r := newEngine(signer)

	if w := do(r, "/me", ""); w.Code != http.StatusUnauthorized || w.Body.String() != `{"error":"No access token"}` {
		t.Fatalf("missing token: %d %s", w.Code, w.Body.String())
	}
	if w := do(r, "/me", "garbage"); w.Code != http.StatusForbidden || w.Body.String() != `{"error":"Access token is invalid"}` {
		t.Fatalf("bad token: %d %s", w.Code, w.Body.String())
	}

	tok, _ := signer.Sign(models.ID(55), false)
	w := do(r, "/me", tok)
	if w.Code != http.StatusOK || w.Body.String() != `{"id":"55"}` {
		t.Fatalf("good token: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("request id header missing")
	}
}

func TestAdminRequired(t *testing.T) {
	signer := auth.NewSigner("k", time.Hour)
	r := newEngine(signer)

	user, _ := signer.Sign(1, false)
	if w := do(r, "/admin", user); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: %d", w.Code)
	}
	admin, _ := signer.Sign(2, true)
	if w := do(r, "/admin", admin); w.Code != http.StatusNoContent {
		t.Fatalf("admin: %d", w.Code)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newEngine(auth.NewSigner("k", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}
