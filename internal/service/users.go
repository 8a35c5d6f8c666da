package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/repository"
)

// accountUsers — репозиторий пользователей, согласованный с учётными данными:
// e-mail уникален, смена e-mail переносится в credenciais,
// удаление пользователя удаляет и его пароль.
type accountUsers struct {
	repository.Repository[model.User, model.UserPatch]
	auth *AuthService
}

// Users возвращает репозиторий пользователей для API администратора.
func (s *AuthService) Users() repository.Repository[model.User, model.UserPatch] {
	return &accountUsers{Repository: s.users, auth: s}
}

func (u *accountUsers) Create(ctx context.Context, user model.User) (model.User, error) {
	u.auth.mu.Lock()
	defer u.auth.mu.Unlock()

	if err := u.ensureEmailFree(ctx, user.Email, ""); err != nil {
		return model.User{}, err
	}
	return u.Repository.Create(ctx, user)
}

func (u *accountUsers) Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	u.auth.mu.Lock()
	defer u.auth.mu.Unlock()

	if patch.Email != nil {
		if err := u.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return model.User{}, err
		}
	}
	updated, err := u.Repository.Update(ctx, id, patch)
	if err != nil || patch.Email == nil {
		return updated, err
	}

	_, err = u.auth.creds.Update(ctx, id, model.CredentialPatch{Email: &updated.Email})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		// Вход идёт по e-mail пользователя, устаревший e-mail в credenciais не мешает
		u.auth.logger.Warn("Не удалось обновить e-mail учётных данных",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}
	return updated, nil
}

func (u *accountUsers) Delete(ctx context.Context, id string) error {
	u.auth.mu.Lock()
	defer u.auth.mu.Unlock()

	if err := u.Repository.Delete(ctx, id); err != nil {
		return err
	}
	if err := u.auth.creds.Delete(ctx, id); err != nil {
		u.auth.logger.Warn("Не удалось удалить учётные данные",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ensureEmailFree проверяет, что e-mail не занят другим пользователем.
func (u *accountUsers) ensureEmailFree(ctx context.Context, email, selfID string) error {
	users, err := u.Repository.List(ctx, repository.Filter{})
	if err != nil {
		return err
	}
	if other, found := findByEmail(users, normalizeEmail(email)); found && other.ID != selfID {
		return fmt.Errorf("%w: e-mail %s já cadastrado", repository.ErrConflict, normalizeEmail(email))
	}
	return nil
}
