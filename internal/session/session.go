// Пакет session — явная клиентская сессия: токен, пользователь, срок действия.
// Сессия начинается при входе, завершается при выходе или при ответе 401
// от удалённого API (в этом случае вызывается обработчик OnEnd).
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// ErrNoSession — сессия не начата, завершена или истекла.
var ErrNoSession = errors.New("сессия не активна")

// EndReason — причина завершения сессии.
type EndReason string

const (
	// EndLogout — пользователь вышел
	EndLogout EndReason = "logout"
	// EndUnauthorized — сервер отклонил токен (401)
	EndUnauthorized EndReason = "unauthorized"
)

// Session — потокобезопасная клиентская сессия.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      model.User
	expiresAt time.Time
	onEnd     func(reason EndReason)
	now       func() time.Time
}

// New создаёт пустую сессию.
func New() *Session {
	return &Session{now: time.Now}
}

// OnEnd задаёт обработчик завершения сессии по 401 («вернуться ко входу»).
func (s *Session) OnEnd(fn func(reason EndReason)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = fn
}

// Begin начинает сессию. Срок действия берётся из claim exp токена;
// подпись не проверяется — это делает сервер.
// Непрозрачный токен (не JWT) принимается без срока действия.
func (s *Session) Begin(token string, user model.User) {
	exp := expiryOf(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.expiresAt = exp
}

// End завершает сессию по инициативе пользователя.
func (s *Session) End() {
	s.clear()
}

// Invalidate завершает сессию после 401 и вызывает обработчик OnEnd.
func (s *Session) Invalidate() {
	if !s.clear() {
		return
	}
	s.mu.RLock()
	fn := s.onEnd
	s.mu.RUnlock()
	if fn != nil {
		fn(EndUnauthorized)
	}
}

// Token возвращает bearer-токен активной сессии.
func (s *Session) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return "", ErrNoSession
	}
	return s.token, nil
}

// User возвращает пользователя активной сессии.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || s.expiredLocked() {
		return model.User{}, false
	}
	return s.user, true
}

// ExpiresAt возвращает срок действия токена (нулевое время — без срока).
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Active сообщает, есть ли действующая сессия.
func (s *Session) Active() bool {
	_, ok := s.User()
	return ok
}

// clear сбрасывает сессию; возвращает true, если она была начата.
func (s *Session) clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.token != ""
	s.token = ""
	s.user = model.User{}
	s.expiresAt = time.Time{}
	return had
}

func (s *Session) expiredLocked() bool {
	return !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt)
}

// expiryOf извлекает exp из JWT без проверки подписи.
func expiryOf(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
