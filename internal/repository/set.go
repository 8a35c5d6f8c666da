package repository

import (
	"log/slog"
	"time"

	"github.com/bigkaa/odontoforense/internal/apiclient"
	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/notify"
	"github.com/bigkaa/odontoforense/internal/seed"
	"github.com/bigkaa/odontoforense/internal/store"
)

// Set — репозитории всех сущностей, собранные с декораторами.
// Реализация (локальная или удалённая) выбирается конфигурацией.
type Set struct {
	Cases     Repository[model.Case, model.CasePatch]
	Victims   Repository[model.Victim, model.VictimPatch]
	Evidence  Repository[model.Evidence, model.EvidencePatch]
	Reports   Repository[model.Report, model.ReportPatch]
	Dental    Repository[model.DentalRecord, model.DentalRecordPatch]
	Analytics Repository[model.AnalyticsReport, model.AnalyticsReportPatch]
	Users     Repository[model.User, model.UserPatch]
}

// LocalConfig — параметры локального набора.
type LocalConfig struct {
	Keys store.Keys
	// Defaults — значения незаписанных коллекций
	Defaults seed.Data
	// Latency — искусственная задержка операций
	Latency time.Duration
	// EnforceReferences — включить декоратор ссылочной целостности
	EnforceReferences bool
	// Notifier — приёмник уведомлений (nil — notify.Discard)
	Notifier notify.Notifier
	// Options — дополнительные опции локальных репозиториев
	Options []LocalOption
}

// NewLocalSet собирает набор поверх адаптера коллекций.
// Порядок слоёв: Local → Integrity → Metered → Notifying,
// так что отказы по ссылкам учитываются в метриках как invalid.
func NewLocalSet(adapter *store.Adapter, cfg LocalConfig, logger *slog.Logger) *Set {
	sink := cfg.Notifier
	if sink == nil {
		sink = notify.Discard
	}
	opts := append([]LocalOption{WithLatency(cfg.Latency)}, cfg.Options...)

	cases := NewLocal(adapter, cfg.Keys, CaseDescriptor, cfg.Defaults.Cases, logger, opts...)
	victims := NewLocal(adapter, cfg.Keys, VictimDescriptor, cfg.Defaults.Victims, logger, opts...)

	var victimRepo Repository[model.Victim, model.VictimPatch] = victims
	var evidenceRepo Repository[model.Evidence, model.EvidencePatch] = NewLocal(adapter, cfg.Keys, EvidenceDescriptor, cfg.Defaults.Evidence, logger, opts...)
	var reportRepo Repository[model.Report, model.ReportPatch] = NewLocal(adapter, cfg.Keys, ReportDescriptor, cfg.Defaults.Reports, logger, opts...)
	var dentalRepo Repository[model.DentalRecord, model.DentalRecordPatch] = NewLocal(adapter, cfg.Keys, DentalDescriptor, cfg.Defaults.Dental, logger, opts...)
	analytics := NewLocal(adapter, cfg.Keys, AnalyticsDescriptor, cfg.Defaults.Analytics, logger, opts...)
	users := NewLocal(adapter, cfg.Keys, UserDescriptor, cfg.Defaults.Users, logger, opts...)

	if cfg.EnforceReferences {
		caseExists := ExistsIn[model.Case, model.CasePatch](cases)
		victimRepo = NewIntegrity(victimRepo, VictimDescriptor, "caso", caseExists)
		evidenceRepo = NewIntegrity(evidenceRepo, EvidenceDescriptor, "caso", caseExists)
		reportRepo = NewIntegrity(reportRepo, ReportDescriptor, "caso", caseExists)
		dentalRepo = NewIntegrity(dentalRepo, DentalDescriptor, "vitima", ExistsIn[model.Victim, model.VictimPatch](victims))
	}

	s := &Set{
		Cases:     metered[model.Case, model.CasePatch](cases, CaseDescriptor),
		Victims:   metered(victimRepo, VictimDescriptor),
		Evidence:  metered(evidenceRepo, EvidenceDescriptor),
		Reports:   metered(reportRepo, ReportDescriptor),
		Dental:    metered(dentalRepo, DentalDescriptor),
		Analytics: metered[model.AnalyticsReport, model.AnalyticsReportPatch](analytics, AnalyticsDescriptor),
		Users:     metered[model.User, model.UserPatch](users, UserDescriptor),
	}
	s.withNotifications(sink)
	return s
}

// NewRemoteSet собирает набор поверх REST API.
// Ссылочную целостность обеспечивает сервер.
func NewRemoteSet(client *apiclient.Client, sink notify.Notifier) *Set {
	if sink == nil {
		sink = notify.Discard
	}
	s := &Set{
		Cases:     NewRemote(client, CaseDescriptor),
		Victims:   NewRemote(client, VictimDescriptor),
		Evidence:  NewRemote(client, EvidenceDescriptor),
		Reports:   NewRemote(client, ReportDescriptor),
		Dental:    NewRemote(client, DentalDescriptor),
		Analytics: NewRemote(client, AnalyticsDescriptor),
		Users:     NewRemote(client, UserDescriptor),
	}
	s.withNotifications(sink)
	return s
}

// NewCredentials создаёт локальный репозиторий хэшей паролей.
// defaults — учётные данные незаписанной коллекции (демо-набор или nil).
// Уведомления для него не отправляются.
func NewCredentials(adapter *store.Adapter, keys store.Keys, defaults []model.Credential, logger *slog.Logger, opts ...LocalOption) Repository[model.Credential, model.CredentialPatch] {
	return NewLocal(adapter, keys, CredentialDescriptor, defaults, logger, opts...)
}

func (s *Set) withNotifications(sink notify.Notifier) {
	s.Cases = notifying(s.Cases, sink, CaseDescriptor)
	s.Victims = notifying(s.Victims, sink, VictimDescriptor)
	s.Evidence = notifying(s.Evidence, sink, EvidenceDescriptor)
	s.Reports = notifying(s.Reports, sink, ReportDescriptor)
	s.Dental = notifying(s.Dental, sink, DentalDescriptor)
	s.Analytics = notifying(s.Analytics, sink, AnalyticsDescriptor)
	s.Users = notifying(s.Users, sink, UserDescriptor)
}

func metered[T any, P any](r Repository[T, P], d Descriptor[T, P]) Repository[T, P] {
	return NewMetered[T, P](r, d.Entity)
}

func notifying[T any, P any](r Repository[T, P], sink notify.Notifier, d Descriptor[T, P]) Repository[T, P] {
	return NewNotifying(r, sink, MessagesFor(d.Entity))
}
