package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/utils"
)

const testSecret = "test-secret"

func runWithAuth(t *testing.T, header string, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-bibs", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, c
}

func TestJWTAuthRejectsMissingAndGarbage(t *testing.T) {
	mw := JWTAuth(testSecret)

	rec, _ := runWithAuth(t, "", mw)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header: status = %d, want 401", rec.Code)
	}
	rec, _ = runWithAuth(t, "Bearer not-a-jwt", mw)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, model.RoleRunner, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, _ := runWithAuth(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleRunner, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, c := runWithAuth(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
	if sub, ok := c.Get("user_id").(float64); !ok || uint64(sub) != 7 {
		t.Fatalf("user_id claim = %v", c.Get("user_id"))
	}
	if role, ok := c.Get("role").(string); !ok || role != model.RoleRunner {
		t.Fatalf("role claim = %v", c.Get("role"))
	}
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleAdmin)

	e := echo.New()
	run := func(role interface{}) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/organizers", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		if err := h(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		return rec.Code
	}

	if code := run(nil); code != http.StatusForbidden {
		t.Fatalf("missing role: status = %d, want 403", code)
	}
	if code := run(model.RoleRunner); code != http.StatusForbidden {
		t.Fatalf("runner on admin route: status = %d, want 403", code)
	}
	if code := run(model.RoleAdmin); code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", code)
	}
}
