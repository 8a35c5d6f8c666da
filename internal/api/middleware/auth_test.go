package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

const (
	testSecret = "segredo-de-teste"
	testKeyID  = "test-key-of"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// revokedSet — мок RevocationChecker.
type revokedSet map[string]bool

func (s revokedSet) IsRevoked(jti string) bool { return s[jti] }

func hmacToken(t *testing.T, secret, sub, jti string, role model.Role, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"jti":   jti,
		"email": sub + "@odontoforense.local",
		"cargo": string(role),
		"exp":   jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// claimsEcho — обработчик, возвращающий claims из контекста.
func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(claims)
	})
}

func doRequest(h http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/casos", http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthHMAC(t *testing.T) {
	revoked := revokedSet{"revogado": true}
	auth := NewJWTAuthHMAC(testSecret, 0, revoked, testLogger())
	h := auth.Middleware()(claimsEcho())
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"валидный токен", hmacToken(t, testSecret, "u1", "j1", model.RoleExaminer, future), http.StatusOK},
		{"без токена", "", http.StatusUnauthorized},
		{"чужой секрет", hmacToken(t, "outro", "u1", "j1", model.RoleExaminer, future), http.StatusUnauthorized},
		{"просрочен", hmacToken(t, testSecret, "u1", "j1", model.RoleExaminer, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"отозван", hmacToken(t, testSecret, "u1", "revogado", model.RoleExaminer, future), http.StatusUnauthorized},
		{"без sub", hmacToken(t, testSecret, "", "j2", model.RoleExaminer, future), http.StatusUnauthorized},
		{"мусор", "nao.e.jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodGet, tt.token)
			if rec.Code != tt.status {
				t.Errorf("status = %d, ожидалось %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	rec := doRequest(h, http.MethodGet, hmacToken(t, testSecret, "u1", "j1", model.RoleAdmin, future))
	var got AuthClaims
	_ = json.NewDecoder(rec.Body).Decode(&got)
	if got.Subject != "u1" || got.Role != model.RoleAdmin || got.TokenID != "j1" {
		t.Errorf("claims = %+v", got)
	}
}

func TestJWTAuthHMAC_RejectsOtherAlgorithms(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u1", "exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, _ := token.SignedString(key)

	h := NewJWTAuthHMAC(testSecret, 0, nil, testLogger()).Middleware()(claimsEcho())
	if rec := doRequest(h, http.MethodGet, signed); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, ожидалось 401", rec.Code)
	}
}

// buildJWKSetJSON строит JWKS JSON из публичного RSA-ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": kid,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	data, _ := json.Marshal(jwks)
	return data
}

func TestJWTAuthWithKeyfunc(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	h := NewJWTAuthWithKeyfunc(kf, time.Minute, nil, testLogger()).Middleware()(claimsEcho())

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   "idp-user",
		"cargo": "perito",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	rec := doRequest(h, http.MethodGet, signed)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var got AuthClaims
	_ = json.NewDecoder(rec.Body).Decode(&got)
	if got.Subject != "idp-user" || got.Role != model.RoleExaminer {
		t.Errorf("claims = %+v", got)
	}

	// HS256-токен не принимается в режиме JWKS
	if rec := doRequest(h, http.MethodGet, hmacToken(t, testSecret, "u1", "j1", model.RoleAdmin, time.Now().Add(time.Hour))); rec.Code != http.StatusUnauthorized {
		t.Errorf("HS256 в режиме JWKS: status = %d", rec.Code)
	}
}

func TestJWTAuthWithLocalHMAC(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	auth := NewJWTAuthWithKeyfunc(kf, 0, revokedSet{"revogado": true}, testLogger()).WithLocalHMAC(testSecret)
	h := auth.Middleware()(claimsEcho())
	future := time.Now().Add(time.Hour)

	idp := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "idp-user", "cargo": "perito", "exp": jwt.NewNumericDate(future),
	})
	idp.Header["kid"] = testKeyID
	idpSigned, err := idp.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"токен IdP", idpSigned, http.StatusOK},
		{"локальный токен", hmacToken(t, testSecret, "u1", "j1", model.RoleAdmin, future), http.StatusOK},
		{"чужой секрет", hmacToken(t, "outro-segredo", "u1", "j1", model.RoleAdmin, future), http.StatusUnauthorized},
		{"отозванный локальный", hmacToken(t, testSecret, "u1", "revogado", model.RoleAdmin, future), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doRequest(h, http.MethodGet, tt.token); rec.Code != tt.status {
				t.Errorf("status = %d, ожидалось %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewJWTAuthHMAC(testSecret, 0, nil, testLogger()).Middleware()(RequireRole(model.RoleAdmin)(ok))
	exp := time.Now().Add(time.Hour)

	if rec := doRequest(h, http.MethodGet, hmacToken(t, testSecret, "u1", "j1", model.RoleExaminer, exp)); rec.Code != http.StatusForbidden {
		t.Errorf("perito GET: status = %d, ожидалось 403", rec.Code)
	}
	if rec := doRequest(h, http.MethodGet, hmacToken(t, testSecret, "u1", "j1", model.RoleAdmin, exp)); rec.Code != http.StatusNoContent {
		t.Errorf("admin GET: status = %d", rec.Code)
	}
	if rec := doRequest(RequireRole(model.RoleAdmin)(ok), http.MethodGet, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("без claims: status = %d, ожидалось 401", rec.Code)
	}
}

func TestRequireWrite(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	auth := NewJWTAuthHMAC(testSecret, 0, nil, testLogger())
	h := auth.Middleware()(RequireWrite()(ok))
	exp := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		method string
		role   model.Role
		status int
	}{
		{"assistente читает", http.MethodGet, model.RoleAssistant, http.StatusNoContent},
		{"assistente не пишет", http.MethodPost, model.RoleAssistant, http.StatusForbidden},
		{"assistente не удаляет", http.MethodDelete, model.RoleAssistant, http.StatusForbidden},
		{"perito пишет", http.MethodPut, model.RoleExaminer, http.StatusNoContent},
		{"admin пишет", http.MethodPost, model.RoleAdmin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.method, hmacToken(t, testSecret, "u1", "j1", tt.role, exp))
			if rec.Code != tt.status {
				t.Errorf("status = %d, ожидалось %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRequireRoleForWrite(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewJWTAuthHMAC(testSecret, 0, nil, testLogger()).Middleware()(RequireRoleForWrite(model.RoleAdmin)(ok))
	exp := time.Now().Add(time.Hour)

	if rec := doRequest(h, http.MethodGet, hmacToken(t, testSecret, "u1", "j1", model.RoleExaminer, exp)); rec.Code != http.StatusNoContent {
		t.Errorf("perito GET: status = %d", rec.Code)
	}
	if rec := doRequest(h, http.MethodPost, hmacToken(t, testSecret, "u1", "j1", model.RoleExaminer, exp)); rec.Code != http.StatusForbidden {
		t.Errorf("perito POST: status = %d", rec.Code)
	}
	if rec := doRequest(h, http.MethodPost, hmacToken(t, testSecret, "u1", "j1", model.RoleAdmin, exp)); rec.Code != http.StatusNoContent {
		t.Errorf("admin POST: status = %d", rec.Code)
	}
}

func TestRequireWrite_WithoutClaims(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if rec := doRequest(RequireWrite()(ok), http.MethodPost, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, ожидалось 401", rec.Code)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/health/live", "/health/live"},
		{"/casos", "/casos"},
		{"/casos/", "/casos"},
		{"/casos/3f2a9c1e-0000-4000-8000-000000000000", "/casos/{id}"},
		{"/odontologia/abc", "/odontologia/{id}"},
		{"/casos/a/b", "other"},
		{"/usuarios/u1/senha", "/usuarios/{id}/senha"},
		{"/wp-admin", "other"},
		{"/", "other"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидалось %q", tt.in, got, tt.want)
		}
	}
}
