// Пакет kvtest — общий набор проверок контракта kv.Backend.
package kvtest

import (
	"context"
	"testing"

	"github.com/bigkaa/odontoforense/internal/kv"
)

// RunContract проверяет базовое поведение backend:
// отсутствующий ключ, запись, перезапись, удаление, повторное удаление.
func RunContract(t *testing.T, b kv.Backend) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := b.Get(ctx, "of:missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, ожидалось ok=false err=nil", ok, err)
	}

	if err := b.Set(ctx, "of:casos", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set() вернул ошибку: %v", err)
	}
	got, ok, err := b.Get(ctx, "of:casos")
	if err != nil || !ok {
		t.Fatalf("Get() после Set: ok=%v err=%v", ok, err)
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("Get() = %q, ожидалось исходное значение", got)
	}

	if err := b.Set(ctx, "of:casos", `[]`); err != nil {
		t.Fatalf("повторный Set() вернул ошибку: %v", err)
	}
	if got, _, _ := b.Get(ctx, "of:casos"); got != `[]` {
		t.Errorf("после перезаписи Get() = %q, ожидалось []", got)
	}

	// Ключи независимы
	if err := b.Set(ctx, "of:vitimas", `["v"]`); err != nil {
		t.Fatalf("Set(vitimas) вернул ошибку: %v", err)
	}

	if err := b.Remove(ctx, "of:casos"); err != nil {
		t.Fatalf("Remove() вернул ошибку: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "of:casos"); ok {
		t.Error("ключ должен отсутствовать после Remove")
	}
	if err := b.Remove(ctx, "of:casos"); err != nil {
		t.Errorf("повторный Remove() должен быть no-op, получено: %v", err)
	}

	if got, ok, _ := b.Get(ctx, "of:vitimas"); !ok || got != `["v"]` {
		t.Errorf("соседний ключ изменён: ok=%v value=%q", ok, got)
	}
}
