package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/enzococca/soqotra-rockart/internal/user"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "9f1c2d3e",
		"username": "enzo",
		"role":     role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func TestRequireAuthInjectsClaims(t *testing.T) {
	var gotID, gotName, gotRole string
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(UserIDKey).(string)
		gotName, _ = r.Context().Value(UsernameKey).(string)
		gotRole, _ = r.Context().Value(UserRoleKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(user.RoleEditor)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "9f1c2d3e" || gotName != "enzo" || gotRole != user.RoleEditor {
		t.Errorf("unexpected claims in context: id=%q name=%q role=%q", gotID, gotName, gotRole)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	expired := validClaims(user.RoleViewer)
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", validClaims(user.RoleViewer))},
		{"expired", "Bearer " + signToken(t, testSecret, expired)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/records", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		have     string
		need     string
		expected int
	}{
		{"viewer blocked from editor route", user.RoleViewer, user.RoleEditor, http.StatusForbidden},
		{"editor allowed on editor route", user.RoleEditor, user.RoleEditor, http.StatusOK},
		{"admin allowed on editor route", user.RoleAdmin, user.RoleEditor, http.StatusOK},
		{"editor blocked from admin route", user.RoleEditor, user.RoleAdmin, http.StatusForbidden},
		{"unknown role blocked", "superuser", user.RoleViewer, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chain := RequireAuth(testSecret)(RequireRole(tc.need)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

			req := httptest.NewRequest(http.MethodGet, "/records", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(tc.have)))
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}
