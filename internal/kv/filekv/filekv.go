// Пакет filekv — хранилище ключей в директории: один JSON-файл на ключ.
// Все операции записи выполняются атомарно: temp → fsync → rename.
package filekv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// fileSuffix — расширение файлов значений.
const fileSuffix = ".json"

// Store — файловое хранилище ключей.
type Store struct {
	dir string
}

// New создаёт хранилище в директории dir (создаётся при необходимости).
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("директория хранилища не задана")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir возвращает корневую директорию хранилища.
func (s *Store) Dir() string {
	return s.dir
}

// Path возвращает путь к файлу ключа.
// Ключ экранируется, чтобы ':' и '/' не попадали в имя файла.
// Пример: "odontoforense:casos" → "<dir>/odontoforense%3Acasos.json"
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+fileSuffix)
}

// Get читает значение ключа. Отсутствующий файл → ok=false.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения ключа %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set атомарно записывает значение ключа.
// Паттерн: temp файл → fsync → atomic rename.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)

	f, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.WriteString(value); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка записи: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return nil
}

// Remove удаляет файл ключа.
// Возвращает nil, если файл уже не существует.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления ключа %s: %w", key, err)
	}
	return nil
}
