package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bigkaa/odontoforense/internal/apiclient"
	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/kv"
	"github.com/bigkaa/odontoforense/internal/notify"
	"github.com/bigkaa/odontoforense/internal/seed"
	"github.com/bigkaa/odontoforense/internal/session"
	"github.com/bigkaa/odontoforense/internal/store"
)

func TestNotifying_SuccessAndFailure(t *testing.T) {
	repo, backend := newCaseRepo(t, nil)
	rec := notify.NewRecorder(10)
	n := NewNotifying[model.Case, model.CasePatch](repo, rec, MessagesFor("caso"))
	ctx := context.Background()

	created, err := n.Create(ctx, model.Case{Title: "A"})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}
	got := rec.Recent()
	if len(got) != 1 || got[0].Title != "Caso criado" || got[0].Variant != notify.VariantDefault {
		t.Fatalf("уведомления = %+v", got)
	}

	if _, err := n.Update(ctx, "missing", model.CasePatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() = %v", err)
	}
	last := rec.Recent()[0]
	if last.Variant != notify.VariantDestructive || last.Title != "Erro ao atualizar caso" {
		t.Errorf("уведомление об ошибке = %+v", last)
	}
	if last.Description != ErrNotFound.Error() {
		t.Errorf("описание = %q", last.Description)
	}

	backend.failSet = true
	if err := n.Delete(ctx, created.ID); !errors.Is(err, ErrStorage) {
		t.Fatalf("Delete() = %v", err)
	}
	if last := rec.Recent()[0]; last.Title != "Erro ao remover caso" || last.Description != ErrStorage.Error() {
		t.Errorf("уведомление об ошибке = %+v", last)
	}

	// Чтение не уведомляет
	before := len(rec.Recent())
	_, _ = n.List(ctx, Filter{})
	_, _ = n.Get(ctx, created.ID)
	if len(rec.Recent()) != before {
		t.Error("List/Get не должны отправлять уведомления")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"remote", &apiclient.RemoteError{Status: 400, Message: "E-mail já cadastrado"}, "E-mail já cadastrado"},
		{"validation", invalid("título é obrigatório"), "dados inválidos: título é obrigatório"},
		{"not found", errors.Join(errors.New("caso x"), ErrNotFound), ErrNotFound.Error()},
		{"cancelled", context.Canceled, "Operação cancelada"},
		{"unknown", errors.New("boom"), apiclient.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

func TestIntegrity_RejectsDanglingReference(t *testing.T) {
	adapter := store.New(kv.NewMemory(), testLogger())
	keys := store.NewKeys("test")
	cases := NewLocal(adapter, keys, CaseDescriptor, nil, testLogger())
	victims := NewIntegrity[model.Victim, model.VictimPatch](
		NewLocal(adapter, keys, VictimDescriptor, nil, testLogger()),
		VictimDescriptor, "caso", ExistsIn[model.Case, model.CasePatch](cases),
	)
	ctx := context.Background()

	if _, err := victims.Create(ctx, model.Victim{Name: "v", CaseID: "nope"}); !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("Create() = %v, ожидалась ErrReferenceNotFound", err)
	}
	if list, _ := victims.List(ctx, Filter{}); len(list) != 0 {
		t.Error("запись с висячей ссылкой сохранена")
	}

	c, _ := cases.Create(ctx, model.Case{Title: "A"})
	v, err := victims.Create(ctx, model.Victim{Name: "v", CaseID: c.ID})
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	// Без ссылки проверка не выполняется
	if _, err := victims.Create(ctx, model.Victim{Name: "sem caso"}); err != nil {
		t.Errorf("Create() без ссылки = %v", err)
	}

	if _, err := victims.Update(ctx, v.ID, model.VictimPatch{CaseID: ptr("nope")}); !errors.Is(err, ErrReferenceNotFound) {
		t.Errorf("Update() = %v, ожидалась ErrReferenceNotFound", err)
	}
	if _, err := victims.Update(ctx, v.ID, model.VictimPatch{Name: ptr("novo")}); err != nil {
		t.Errorf("Update() без смены ссылки = %v", err)
	}
}

func TestMetered_CountsResults(t *testing.T) {
	repo, _ := newCaseRepo(t, nil)
	m := NewMetered[model.Case, model.CasePatch](repo, "caso_metered_test")
	ctx := context.Background()

	_, _ = m.Create(ctx, model.Case{Title: "A"})
	_, _ = m.Create(ctx, model.Case{})
	_, _ = m.Get(ctx, "missing")

	if got := testutil.ToFloat64(operationsTotal.WithLabelValues("caso_metered_test", "create", "ok")); got != 1 {
		t.Errorf("create/ok = %v", got)
	}
	if got := testutil.ToFloat64(operationsTotal.WithLabelValues("caso_metered_test", "create", "invalid")); got != 1 {
		t.Errorf("create/invalid = %v", got)
	}
	if got := testutil.ToFloat64(operationsTotal.WithLabelValues("caso_metered_test", "get", "not_found")); got != 1 {
		t.Errorf("get/not_found = %v", got)
	}
}

func TestNewLocalSet_ReferenceRejectionsCountedAsInvalid(t *testing.T) {
	adapter := store.New(kv.NewMemory(), testLogger())
	set := NewLocalSet(adapter, LocalConfig{
		Keys:              store.NewKeys("test"),
		Defaults:          seed.Empty(),
		EnforceReferences: true,
	}, testLogger())
	ctx := context.Background()

	invalid := operationsTotal.WithLabelValues("vitima", "create", "invalid")
	before := testutil.ToFloat64(invalid)

	if _, err := set.Victims.Create(ctx, model.Victim{Name: "X", CaseID: "inexistente"}); !errors.Is(err, ErrReferenceNotFound) {
		t.Fatalf("Create() = %v, ожидалась ErrReferenceNotFound", err)
	}
	if got := testutil.ToFloat64(invalid) - before; got != 1 {
		t.Errorf("vitima/create/invalid прирост = %v, ожидалось 1", got)
	}
}

func TestNewLocalSet(t *testing.T) {
	adapter := store.New(kv.NewMemory(), testLogger())
	rec := notify.NewRecorder(10)
	set := NewLocalSet(adapter, LocalConfig{
		Keys:              store.NewKeys("test"),
		Defaults:          seed.Demo(),
		EnforceReferences: true,
		Notifier:          rec,
	}, testLogger())
	ctx := context.Background()

	cases, err := set.Cases.List(ctx, Filter{})
	if err != nil || len(cases) != len(seed.Demo().Cases) {
		t.Fatalf("Cases.List() = %d записей, %v", len(cases), err)
	}

	victims, _ := set.Victims.List(ctx, Filter{OwnerID: "demo-caso-1"})
	if len(victims) != 1 || victims[0].ID != "demo-vitima-1" {
		t.Errorf("Victims.List(demo-caso-1) = %+v", victims)
	}

	if _, err := set.Dental.Create(ctx, model.DentalRecord{VictimID: "nope"}); !errors.Is(err, ErrReferenceNotFound) {
		t.Errorf("Dental.Create() = %v, ожидалась ErrReferenceNotFound", err)
	}
	if _, err := set.Evidence.Create(ctx, model.Evidence{CaseID: "demo-caso-2", Type: model.EvidenceDocument}); err != nil {
		t.Errorf("Evidence.Create() = %v", err)
	}

	got := rec.Recent()
	if len(got) != 2 {
		t.Fatalf("уведомлений = %d, ожидалось 2", len(got))
	}
	if got[0].Title != "Evidência registrada" {
		t.Errorf("последнее уведомление = %+v", got[0])
	}
	if got[1].Variant != notify.VariantDestructive || !strings.Contains(got[1].Description, "vitima nope") {
		t.Errorf("уведомление об ошибке = %+v", got[1])
	}
}

func TestNewRemoteSet(t *testing.T) {
	client := apiclient.New("http://127.0.0.1:1", 0, session.New(), testLogger())
	set := NewRemoteSet(client, nil)
	if set.Cases == nil || set.Victims == nil || set.Evidence == nil || set.Reports == nil ||
		set.Dental == nil || set.Analytics == nil || set.Users == nil {
		t.Fatalf("NewRemoteSet() = %+v", set)
	}
}
