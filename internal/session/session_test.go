package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// signedToken создаёт HS256 токен с заданным exp.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret-0123456789"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestSession_BeginAndToken(t *testing.T) {
	s := New()
	if _, err := s.Token(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Token() до входа = %v, ожидалось ErrNoSession", err)
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	s.Begin(token, model.User{ID: "u1", Role: model.RoleExaminer})

	got, err := s.Token(context.Background())
	if err != nil || got != token {
		t.Fatalf("Token() = %q, %v", got, err)
	}
	if !s.ExpiresAt().Equal(exp) {
		t.Errorf("ExpiresAt() = %v, ожидалось %v", s.ExpiresAt(), exp)
	}
	if u, ok := s.User(); !ok || u.ID != "u1" {
		t.Errorf("User() = %+v, %v", u, ok)
	}
}

func TestSession_ExpiredToken(t *testing.T) {
	s := New()
	s.Begin(signedToken(t, time.Now().Add(-time.Minute)), model.User{ID: "u1"})

	if _, err := s.Token(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("Token() для истёкшего токена = %v, ожидалось ErrNoSession", err)
	}
	if s.Active() {
		t.Error("сессия с истёкшим токеном не должна быть активной")
	}
}

func TestSession_OpaqueTokenHasNoExpiry(t *testing.T) {
	s := New()
	s.Begin("opaque-token", model.User{ID: "u1"})
	if !s.ExpiresAt().IsZero() {
		t.Errorf("ExpiresAt() = %v, ожидалось нулевое время", s.ExpiresAt())
	}
	if !s.Active() {
		t.Error("сессия должна быть активной")
	}
}

func TestSession_EndDoesNotFireOnEnd(t *testing.T) {
	s := New()
	fired := false
	s.OnEnd(func(EndReason) { fired = true })
	s.Begin("t", model.User{})

	s.End()
	if fired {
		t.Error("OnEnd не должен вызываться при обычном выходе")
	}
	if s.Active() {
		t.Error("сессия должна быть завершена")
	}
}

func TestSession_InvalidateFiresOnEndOnce(t *testing.T) {
	s := New()
	var reasons []EndReason
	s.OnEnd(func(r EndReason) { reasons = append(reasons, r) })
	s.Begin("t", model.User{})

	s.Invalidate()
	s.Invalidate()

	if len(reasons) != 1 || reasons[0] != EndUnauthorized {
		t.Errorf("reasons = %v, ожидался один вызов unauthorized", reasons)
	}
}

func TestSession_CancelledContext(t *testing.T) {
	s := New()
	s.Begin("t", model.User{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Token(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Token() = %v, ожидалось context.Canceled", err)
	}
}

func TestSession_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli", "session.json")
	s := New()
	token := signedToken(t, time.Now().Add(time.Hour))
	s.Begin(token, model.User{ID: "u1", Email: "perito@example.com"})

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() вернул ошибку: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("файл сессии не создан: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("права = %v, ожидалось 0600", info.Mode().Perm())
	}

	restored := New()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	got, err := restored.Token(context.Background())
	if err != nil || got != token {
		t.Errorf("Token() после Load = %q, %v", got, err)
	}
	if u, _ := restored.User(); u.Email != "perito@example.com" {
		t.Errorf("User().Email = %q", u.Email)
	}

	// Сохранение завершённой сессии удаляет файл
	restored.End()
	if err := restored.Save(path); err != nil {
		t.Fatalf("Save() завершённой сессии: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("файл сессии должен быть удалён")
	}
}

func TestSession_LoadMissingFile(t *testing.T) {
	s := New()
	if err := s.Load(filepath.Join(t.TempDir(), "none")); err != nil {
		t.Errorf("Load() отсутствующего файла = %v", err)
	}
	if s.Active() {
		t.Error("сессия не должна быть активной")
	}
}
