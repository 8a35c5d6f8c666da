package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// persisted — формат файла сессии CLI.
type persisted struct {
	Token string     `json:"token"`
	User  model.User `json:"usuario"`
}

// Save сохраняет активную сессию в файл (права 0600).
// Неактивная сессия удаляет файл.
func (s *Session) Save(path string) error {
	s.mu.RLock()
	p := persisted{Token: s.token, User: s.user}
	active := s.token != "" && !s.expiredLocked()
	s.mu.RUnlock()

	if !active {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка удаления файла сессии: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("не удалось создать директорию сессии: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}
	return nil
}

// Load восстанавливает сессию из файла. Отсутствующий файл — пустая сессия.
func (s *Session) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения файла сессии: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("повреждённый файл сессии %s: %w", path, err)
	}
	if p.Token == "" {
		return nil
	}
	s.Begin(p.Token, p.User)
	return nil
}
