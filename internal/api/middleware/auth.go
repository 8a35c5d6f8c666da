// auth.go — JWT middleware аутентификации и проверка ролей.
// Два режима проверки подписи:
//   - HMAC (HS256) с общим секретом OF_JWT_SECRET — токены выпускает сам сервис;
//   - JWKS (RS256) по OF_JWT_JWKS_URL — токены внешнего IdP.
//
// В режиме JWKS с заданным секретом принимаются оба вида токенов (WithLocalHMAC).
//
// Роль берётся из claim "cargo"; отозванные (logout) jti отклоняются.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/odontoforense/internal/api/errors"
	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// Параметры JWKS-клиента.
const (
	jwksClientTimeout   = 10 * time.Second
	jwksRefreshInterval = 5 * time.Minute
)

type contextKey string

// ContextKeyClaims — claims аутентифицированного запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// AuthClaims — claims, помещаемые в контекст запроса.
type AuthClaims struct {
	// Subject — ID пользователя (sub)
	Subject string
	Email   string
	// Role — роль из claim "cargo"
	Role model.Role
	// TokenID — jti, используется для отзыва при logout
	TokenID   string
	ExpiresAt time.Time
}

// RevocationChecker — источник отозванных токенов.
type RevocationChecker interface {
	IsRevoked(jti string) bool
}

// tokenClaims — raw claims токена.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"cargo"`
}

// JWTAuth — middleware JWT-аутентификации.
type JWTAuth struct {
	keyfunc func(ctx context.Context) jwt.Keyfunc
	methods []string
	leeway  time.Duration
	revoked RevocationChecker
	logger  *slog.Logger
}

// NewJWTAuthHMAC создаёт middleware для токенов HS256.
// revoked может быть nil — отзыв не проверяется.
func NewJWTAuthHMAC(secret string, leeway time.Duration, revoked RevocationChecker, logger *slog.Logger) *JWTAuth {
	key := []byte(secret)
	return &JWTAuth{
		keyfunc: func(context.Context) jwt.Keyfunc {
			return func(*jwt.Token) (any, error) { return key, nil }
		},
		methods: []string{jwt.SigningMethodHS256.Alg()},
		leeway:  leeway,
		revoked: revoked,
		logger:  logger.With(slog.String("component", "jwt_auth")),
	}
}

// NewJWTAuthJWKS создаёт middleware для токенов RS256 с ключами из JWKS.
// Ключи обновляются в фоне; старт возможен при недоступном IdP.
func NewJWTAuthJWKS(jwksURL string, leeway time.Duration, revoked RevocationChecker, logger *slog.Logger) (*JWTAuth, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: jwksClientTimeout},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}
	return NewJWTAuthWithKeyfunc(k, leeway, revoked, logger), nil
}

// NewJWTAuthWithKeyfunc создаёт middleware RS256 с готовым keyfunc (тесты).
func NewJWTAuthWithKeyfunc(k keyfunc.Keyfunc, leeway time.Duration, revoked RevocationChecker, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		keyfunc: k.KeyfuncCtx,
		methods: []string{jwt.SigningMethodRS256.Alg()},
		leeway:  leeway,
		revoked: revoked,
		logger:  logger.With(slog.String("component", "jwt_auth")),
	}
}

// WithLocalHMAC возвращает копию middleware, которая дополнительно принимает
// токены HS256, подписанные secret. Остальные алгоритмы проверяет исходный keyfunc.
func (j *JWTAuth) WithLocalHMAC(secret string) *JWTAuth {
	key := []byte(secret)
	external := j.keyfunc
	hs256 := jwt.SigningMethodHS256.Alg()

	combined := *j
	combined.keyfunc = func(ctx context.Context) jwt.Keyfunc {
		ext := external(ctx)
		return func(t *jwt.Token) (any, error) {
			if t.Method.Alg() == hs256 {
				return key, nil
			}
			return ext(t)
		}
	}
	if !slices.Contains(j.methods, hs256) {
		combined.methods = append(slices.Clone(j.methods), hs256)
	}
	return &combined
}

// Middleware проверяет Bearer token и помещает AuthClaims в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				apierrors.Unauthorized(w, "Token de acesso ausente")
				return
			}

			raw := &tokenClaims{}
			_, err := jwt.ParseWithClaims(tokenString, raw, j.keyfunc(r.Context()),
				jwt.WithValidMethods(j.methods),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(j.leeway),
			)
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Sessão inválida ou expirada")
				return
			}
			if raw.Subject == "" {
				apierrors.Unauthorized(w, "Sessão inválida ou expirada")
				return
			}
			if j.revoked != nil && raw.ID != "" && j.revoked.IsRevoked(raw.ID) {
				apierrors.Unauthorized(w, "Sessão encerrada")
				return
			}

			claims := &AuthClaims{
				Subject: raw.Subject,
				Email:   raw.Email,
				Role:    model.Role(raw.Role),
				TokenID: raw.ID,
			}
			if raw.ExpiresAt != nil {
				claims.ExpiresAt = raw.ExpiresAt.Time
			}
			noteActor(r.Context(), claims)

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка Authorization.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// --- RBAC ---

// RequireWrite пропускает чтение всем, а изменяющие методы —
// только ролям с правом записи (admin, perito).
// Должен использоваться ПОСЛЕ JWTAuth.Middleware().
func RequireWrite() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Token de acesso ausente")
				return
			}
			if !claims.Role.CanWrite() {
				apierrors.Forbidden(w, "Perfil sem permissão de alteração")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleForWrite пропускает чтение всем, а изменения — только указанным ролям.
func RequireRoleForWrite(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Token de acesso ausente")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			apierrors.Forbidden(w, "Perfil sem permissão de alteração")
		})
	}
}

// RequireRole пропускает запросы любых методов только указанным ролям.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Token de acesso ausente")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				apierrors.Forbidden(w, "Perfil sem permissão de acesso")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims; nil, если запрос не аутентифицирован.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// SubjectFromContext возвращает ID пользователя или пустую строку.
func SubjectFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// WithClaims помещает claims в контекст (тесты обработчиков).
func WithClaims(ctx context.Context, claims *AuthClaims) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}
