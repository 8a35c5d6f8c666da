// auth.go — регистрация, вход и выход пользователей.
// Пароли хранятся как bcrypt-хэши в отдельной коллекции credenciais.
// Сессионный токен — JWT HS256 с claims sub, email, cargo, exp, jti.
// Отозванные токены хранятся в expirable LRU до истечения их TTL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/repository"
)

// revokedCacheSize — максимальное число одновременно отозванных токенов.
const revokedCacheSize = 10000

// Prometheus-метрики аутентификации.
var (
	authLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "of_auth_logins_total",
		Help: "Количество попыток входа по результату.",
	}, []string{"result"})
	authRevokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "of_auth_revoked_tokens_total",
		Help: "Количество отозванных токенов (logout).",
	})
)

// TokenClaims — claims сессионного токена.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string     `json:"email"`
	Role  model.Role `json:"cargo"`
}

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Name     string     `json:"nome"`
	Email    string     `json:"email"`
	Password string     `json:"senha"`
	Role     model.Role `json:"cargo"`
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	Token     string     `json:"token"`
	User      model.User `json:"usuario"`
	ExpiresAt time.Time  `json:"expiraEm"`
}

// AuthService — сервис аутентификации.
type AuthService struct {
	users   repository.Repository[model.User, model.UserPatch]
	creds   repository.Repository[model.Credential, model.CredentialPatch]
	secret  []byte
	ttl     time.Duration
	revoked *expirable.LRU[string, struct{}]
	now     func() time.Time
	logger  *slog.Logger

	// mu сериализует изменения пользователей и учётных данных
	// (проверка уникальности e-mail)
	mu sync.Mutex
}

// NewAuthService создаёт сервис аутентификации.
// secret — ключ подписи HS256, ttl — время жизни токена.
// Пустой secret отключает локальный вход: Register, Login и SetPassword
// возвращают ErrLocalAuthDisabled (режим только внешнего IdP).
func NewAuthService(
	users repository.Repository[model.User, model.UserPatch],
	creds repository.Repository[model.Credential, model.CredentialPatch],
	secret string,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		creds:   creds,
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: expirable.NewLRU[string, struct{}](revokedCacheSize, nil, ttl),
		now:     time.Now,
		logger:  logger.With(slog.String("component", "auth_service")),
	}
}

// LocalEnabled сообщает, выпускает ли сервис собственные токены.
func (s *AuthService) LocalEnabled() bool {
	return len(s.secret) > 0
}

// Register создаёт пользователя и его учётные данные.
// Занятый e-mail → repository.ErrConflict, даже если у пользователя
// ещё нет пароля: пароль такому пользователю задаёт администратор (SetPassword).
// Роль admin при самостоятельной регистрации доступна только первому пользователю.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if !s.LocalEnabled() {
		return model.User{}, ErrLocalAuthDisabled
	}
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Password) == "" {
		return model.User{}, fmt.Errorf("%w: senha é obrigatória", repository.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx, repository.Filter{})
	if err != nil {
		return model.User{}, err
	}
	if _, found := findByEmail(users, email); found {
		return model.User{}, fmt.Errorf("%w: e-mail %s já cadastrado", repository.ErrConflict, email)
	}
	if in.Role == model.RoleAdmin && len(users) > 0 {
		return model.User{}, ErrAdminRegistration
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{Name: in.Name, Email: email, Role: in.Role})
	if err != nil {
		return model.User{}, err
	}
	if _, err := s.creds.Create(ctx, model.Credential{ID: user.ID, Email: user.Email, PasswordHash: hash}); err != nil {
		// Без учётных данных пользователь не сможет войти — откатываем
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("Не удалось откатить создание пользователя",
				slog.String("user_id", user.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return model.User{}, err
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// SetPassword задаёт пароль существующему пользователю.
// Учётные данные создаются, если их ещё нет.
func (s *AuthService) SetPassword(ctx context.Context, userID, password string) error {
	if !s.LocalEnabled() {
		return ErrLocalAuthDisabled
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: senha é obrigatória", repository.ErrValidation)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.creds.Update(ctx, user.ID, model.CredentialPatch{Email: &user.Email, PasswordHash: &hash})
	if errors.Is(err, repository.ErrNotFound) {
		_, err = s.creds.Create(ctx, model.Credential{ID: user.ID, Email: user.Email, PasswordHash: hash})
	}
	if err != nil {
		return err
	}

	s.logger.Info("Пароль пользователя изменён", slog.String("user_id", user.ID))
	return nil
}

// Login проверяет пароль и выпускает токен.
// Учётные данные ищутся по ID пользователя с этим e-mail, поэтому
// записи удалённых пользователей и прежние e-mail не участвуют во входе.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if !s.LocalEnabled() {
		return LoginResult{}, ErrLocalAuthDisabled
	}
	email = normalizeEmail(email)

	user, cred, err := s.findAccount(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		authLoginsTotal.WithLabelValues("invalid").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		authLoginsTotal.WithLabelValues("invalid").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Status == model.UserInactive {
		authLoginsTotal.WithLabelValues("inactive").Inc()
		return LoginResult{}, ErrInactiveUser
	}

	token, exp, err := s.issue(user)
	if err != nil {
		return LoginResult{}, err
	}

	authLoginsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Вход выполнен", slog.String("user_id", user.ID))
	return LoginResult{Token: token, User: user, ExpiresAt: exp}, nil
}

// Logout отзывает токен до истечения его срока.
// Просроченный или невалидный токен — не ошибка.
func (s *AuthService) Logout(token string) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return
	}
	s.Revoke(claims.ID)
	s.logger.Info("Выход выполнен", slog.String("user_id", claims.Subject))
}

// Revoke помечает jti как отозванный.
func (s *AuthService) Revoke(jti string) {
	if jti == "" {
		return
	}
	s.revoked.Add(jti, struct{}{})
	authRevokedTotal.Inc()
}

// IsRevoked сообщает, отозван ли токен с указанным jti.
func (s *AuthService) IsRevoked(jti string) bool {
	return s.revoked.Contains(jti)
}

// ParseToken проверяет подпись, срок и отзыв токена.
func (s *AuthService) ParseToken(token string) (*TokenClaims, error) {
	if !s.LocalEnabled() {
		return nil, ErrInvalidToken
	}
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if s.IsRevoked(claims.ID) {
		return nil, fmt.Errorf("%w: token revogado", ErrInvalidToken)
	}
	return claims, nil
}

// Keyfunc возвращает ключ проверки HS256.
func (s *AuthService) Keyfunc(*jwt.Token) (any, error) {
	return s.secret, nil
}

func (s *AuthService) issue(user model.User) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("подпись токена: %w", err)
	}
	return signed, exp, nil
}

func findByEmail(users []model.User, email string) (model.User, bool) {
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return model.User{}, false
}

// findAccount возвращает пользователя с e-mail и его учётные данные.
func (s *AuthService) findAccount(ctx context.Context, email string) (model.User, model.Credential, error) {
	users, err := s.users.List(ctx, repository.Filter{})
	if err != nil {
		return model.User{}, model.Credential{}, err
	}
	user, found := findByEmail(users, email)
	if !found {
		return model.User{}, model.Credential{}, repository.ErrNotFound
	}
	cred, err := s.creds.Get(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Credential{}, err
	}
	return user, cred, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("хэширование пароля: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
