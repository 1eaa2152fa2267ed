package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	token, err := generateAccessToken("alice")
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUsername string
	handler := JwtAuthMiddleware(func(c echo.Context) error {
		gotUsername, _ = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUsername != "alice" {
		t.Fatalf("expected username alice, got %q", gotUsername)
	}
}

func TestJwtAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JwtAuthMiddleware(func(c echo.Context) error {
		t.Fatal("handler should not run without a token")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJwtAuthMiddlewareRejectsForgedToken(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	forged, err := generateAccessToken("alice")
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	// Rotate the secret so the token no longer verifies.
	t.Setenv("SESSION_SECRET", "rotated-secret")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JwtAuthMiddleware(func(c echo.Context) error {
		t.Fatal("handler should not run with a forged token")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAgeFromBirthDate(t *testing.T) {
	birth := time.Now().AddDate(-30, 0, -1)
	if age := ageFromBirthDate(birth); age != 30 {
		t.Fatalf("expected age 30, got %d", age)
	}
}
