package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/store"
)

// invalid оборачивает описание нарушения в ErrValidation.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// CaseDescriptor — дела. Фильтр по usuarioId.
var CaseDescriptor = Descriptor[model.Case, model.CasePatch]{
	Entity:     "caso",
	Collection: store.CollectionCases,
	Resource:   "/casos",
	OwnerParam: "usuarioId",
	ID:         func(c *model.Case) string { return c.ID },
	SetID:      func(c *model.Case, id string) { c.ID = id },
	Owner:      func(c *model.Case) string { return c.CreatorUserID },
	Apply:      func(p model.CasePatch, c *model.Case) { p.Apply(c) },
	OnCreate: func(c *model.Case, now time.Time) {
		if c.Status == "" {
			c.Status = model.CaseInProgress
		}
		c.CreatedAt = now
		c.UpdatedAt = now
	},
	OnUpdate: func(c *model.Case, now time.Time) { c.UpdatedAt = now },
	Validate: func(c *model.Case) error {
		if blank(c.Title) {
			return invalid("título é obrigatório")
		}
		if !c.Status.Valid() {
			return invalid("status %q desconhecido", c.Status)
		}
		return nil
	},
}

// VictimDescriptor — жертвы. Фильтр и ссылка по casoId.
var VictimDescriptor = Descriptor[model.Victim, model.VictimPatch]{
	Entity:     "vitima",
	Collection: store.CollectionVictims,
	Resource:   "/vitimas",
	OwnerParam: "casoId",
	ID:         func(v *model.Victim) string { return v.ID },
	SetID:      func(v *model.Victim, id string) { v.ID = id },
	Owner:      func(v *model.Victim) string { return v.CaseID },
	PatchOwner: func(p model.VictimPatch) *string { return p.CaseID },
	Apply:      func(p model.VictimPatch, v *model.Victim) { p.Apply(v) },
	OnCreate: func(v *model.Victim, now time.Time) {
		if v.NIC == "" {
			v.NIC = model.GenerateNIC()
		}
		v.CreatedAt = now
		v.UpdatedAt = now
	},
	OnUpdate: func(v *model.Victim, now time.Time) { v.UpdatedAt = now },
	Validate: func(v *model.Victim) error {
		if !model.ValidNIC(v.NIC) {
			return invalid("NIC deve conter %d dígitos", model.NICLength)
		}
		if v.Age != nil && (*v.Age < 0 || *v.Age > 150) {
			return invalid("idade fora do intervalo")
		}
		return nil
	},
}

// EvidenceDescriptor — улики. Фильтр и ссылка по casoId.
var EvidenceDescriptor = Descriptor[model.Evidence, model.EvidencePatch]{
	Entity:     "evidencia",
	Collection: store.CollectionEvidence,
	Resource:   "/evidencias",
	OwnerParam: "casoId",
	ID:         func(e *model.Evidence) string { return e.ID },
	SetID:      func(e *model.Evidence, id string) { e.ID = id },
	Owner:      func(e *model.Evidence) string { return e.CaseID },
	PatchOwner: func(p model.EvidencePatch) *string { return p.CaseID },
	Apply:      func(p model.EvidencePatch, e *model.Evidence) { p.Apply(e) },
	OnCreate: func(e *model.Evidence, now time.Time) {
		if e.AnalysisStatus == "" {
			e.AnalysisStatus = model.AnalysisPending
		}
		e.UploadedAt = now
	},
	Validate: func(e *model.Evidence) error {
		if !e.Type.Valid() {
			return invalid("tipo %q desconhecido", e.Type)
		}
		if !e.AnalysisStatus.Valid() {
			return invalid("status de análise %q desconhecido", e.AnalysisStatus)
		}
		return nil
	},
}

// ReportDescriptor — экспертные заключения. Фильтр и ссылка по casoId.
var ReportDescriptor = Descriptor[model.Report, model.ReportPatch]{
	Entity:     "laudo",
	Collection: store.CollectionReports,
	Resource:   "/laudos",
	OwnerParam: "casoId",
	ID:         func(r *model.Report) string { return r.ID },
	SetID:      func(r *model.Report, id string) { r.ID = id },
	Owner:      func(r *model.Report) string { return r.CaseID },
	PatchOwner: func(p model.ReportPatch) *string { return p.CaseID },
	Apply:      func(p model.ReportPatch, r *model.Report) { p.Apply(r) },
	OnCreate:   func(r *model.Report, now time.Time) { r.CreatedAt = now },
	Validate: func(r *model.Report) error {
		if blank(r.Expert) {
			return invalid("perito responsável é obrigatório")
		}
		return nil
	},
}

// DentalDescriptor — стоматологические записи. Фильтр и ссылка по vitimaId.
var DentalDescriptor = Descriptor[model.DentalRecord, model.DentalRecordPatch]{
	Entity:     "odontologia",
	Collection: store.CollectionDental,
	Resource:   "/odontologia",
	OwnerParam: "vitimaId",
	ID:         func(d *model.DentalRecord) string { return d.ID },
	SetID:      func(d *model.DentalRecord, id string) { d.ID = id },
	Owner:      func(d *model.DentalRecord) string { return d.VictimID },
	PatchOwner: func(p model.DentalRecordPatch) *string { return p.VictimID },
	Apply:      func(p model.DentalRecordPatch, d *model.DentalRecord) { p.Apply(d) },
	OnCreate: func(d *model.DentalRecord, now time.Time) {
		d.CreatedAt = now
		d.UpdatedAt = now
	},
	OnUpdate: func(d *model.DentalRecord, now time.Time) { d.UpdatedAt = now },
}

// AnalyticsDescriptor — аналитические отчёты. Фильтр по usuarioId.
// Пустое содержимое синтезируется по типу отчёта.
var AnalyticsDescriptor = Descriptor[model.AnalyticsReport, model.AnalyticsReportPatch]{
	Entity:     "relatorio",
	Collection: store.CollectionAnalytics,
	Resource:   "/relatorios",
	OwnerParam: "usuarioId",
	ID:         func(r *model.AnalyticsReport) string { return r.ID },
	SetID:      func(r *model.AnalyticsReport, id string) { r.ID = id },
	Owner:      func(r *model.AnalyticsReport) string { return r.CreatorUserID },
	Apply:      func(p model.AnalyticsReportPatch, r *model.AnalyticsReport) { p.Apply(r) },
	OnCreate: func(r *model.AnalyticsReport, now time.Time) {
		if r.Type == "" {
			r.Type = model.AnalyticsGeneral
		}
		if blank(r.Content) {
			r.Content = model.SynthesizeContent(r.Type, now)
		}
		r.CreatedAt = now
	},
	Validate: func(r *model.AnalyticsReport) error {
		if blank(r.Title) {
			return invalid("título é obrigatório")
		}
		if !r.Type.Valid() {
			return invalid("tipo %q desconhecido", r.Type)
		}
		return nil
	},
}

// UserDescriptor — пользователи.
var UserDescriptor = Descriptor[model.User, model.UserPatch]{
	Entity:     "usuario",
	Collection: store.CollectionUsers,
	Resource:   "/usuarios",
	ID:         func(u *model.User) string { return u.ID },
	SetID:      func(u *model.User, id string) { u.ID = id },
	Apply:      func(p model.UserPatch, u *model.User) { p.Apply(u) },
	OnCreate: func(u *model.User, now time.Time) {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.Role == "" {
			u.Role = model.RoleAssistant
		}
		if u.Status == "" {
			u.Status = model.UserActive
		}
		u.CreatedAt = now
		u.UpdatedAt = now
	},
	OnUpdate: func(u *model.User, now time.Time) {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		u.UpdatedAt = now
	},
	Validate: func(u *model.User) error {
		if blank(u.Name) {
			return invalid("nome é obrigatório")
		}
		if !strings.Contains(u.Email, "@") {
			return invalid("e-mail inválido")
		}
		if !u.Role.Valid() {
			return invalid("cargo %q desconhecido", u.Role)
		}
		if u.Status != model.UserActive && u.Status != model.UserInactive {
			return invalid("status %q desconhecido", u.Status)
		}
		return nil
	},
}

// CredentialDescriptor — хэши паролей. ID совпадает с ID пользователя,
// поэтому SetID сохраняет уже заданный идентификатор.
var CredentialDescriptor = Descriptor[model.Credential, model.CredentialPatch]{
	Entity:     "credencial",
	Collection: store.CollectionCredentials,
	ID:         func(c *model.Credential) string { return c.ID },
	SetID: func(c *model.Credential, id string) {
		if c.ID == "" {
			c.ID = id
		}
	},
	Apply: func(p model.CredentialPatch, c *model.Credential) { p.Apply(c) },
	OnCreate: func(c *model.Credential, _ time.Time) {
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	},
	OnUpdate: func(c *model.Credential, _ time.Time) {
		c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	},
	Validate: func(c *model.Credential) error {
		if blank(c.PasswordHash) {
			return invalid("senha é obrigatória")
		}
		return nil
	},
}
