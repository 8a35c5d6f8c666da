package filekv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bigkaa/odontoforense/internal/kv/kvtest"
)

func TestStore_Contract(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() вернул ошибку: %v", err)
	}
	kvtest.RunContract(t, s)
}

func TestNew_EmptyDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("ожидалась ошибка для пустой директории")
	}
}

func TestStore_PathEscapesKey(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)

	p := s.Path("odontoforense:casos/x")
	if filepath.Dir(p) != dir {
		t.Errorf("файл ключа вне директории хранилища: %s", p)
	}
	if !strings.HasSuffix(p, ".json") {
		t.Errorf("ожидалось расширение .json: %s", p)
	}
}

// TestStore_SetLeavesNoTempFiles проверяет, что после атомарной записи
// в директории остаётся только итоговый файл.
func TestStore_SetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Set(ctx, "odontoforense:casos", `[]`); err != nil {
			t.Fatalf("Set() вернул ошибку: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("ожидался 1 файл, найдено: %v", names)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s, _ := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Error("Set() с отменённым контекстом должен вернуть ошибку")
	}
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get() с отменённым контекстом должен вернуть ошибку")
	}
}

func TestStore_GetUnreadable(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	// Директория на месте файла ключа — ошибка чтения, а не отсутствие
	if err := os.Mkdir(s.Path("broken"), 0o750); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if _, _, err := s.Get(context.Background(), "broken"); err == nil {
		t.Error("ожидалась ошибка чтения")
	}
}
