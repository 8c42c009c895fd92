package auth_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/saulo-duarte/luma-lambda/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	os.Setenv("JWT_SECRET", testSecret)
	auth.Init()

	var gotClaims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.GetUserClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("ValidCookie", func(t *testing.T) {
		gotClaims = nil
		token, _ := auth.GenerateJWT(testUserID, auth.RoleUser, time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
		rec := httptest.NewRecorder()

		auth.AuthMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotClaims == nil || gotClaims.UserID != testUserID {
			t.Errorf("claims not propagated to the handler: %+v", gotClaims)
		}
	})

	t.Run("BearerFallback", func(t *testing.T) {
		gotClaims = nil
		token, _ := auth.GenerateJWT(testUserID, auth.RoleUser, time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		auth.AuthMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotClaims == nil {
			t.Error("claims not propagated from bearer token")
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		auth.AuthMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token, _ := auth.GenerateJWT(testUserID, auth.RoleUser, -time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
		rec := httptest.NewRecorder()

		auth.AuthMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestAdminMiddleware(t *testing.T) {
	os.Setenv("JWT_SECRET", testSecret)
	auth.Init()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: testUserID, Role: auth.RoleAdmin}))
		rec := httptest.NewRecorder()

		auth.AdminMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("UserForbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: testUserID, Role: auth.RoleUser}))
		rec := httptest.NewRecorder()

		auth.AdminMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("NoClaimsForbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		auth.AdminMiddleware(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
