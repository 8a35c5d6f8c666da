package model

import "time"

// Report — экспертное заключение (Laudo) по делу.
type Report struct {
	ID          string `json:"id"`
	CaseID      string `json:"casoId"`
	Description string `json:"descricao"`
	Conclusions string `json:"conclusoes"`
	// Expert — ФИО ответственного эксперта
	Expert    string    `json:"peritoResponsavel"`
	Notes     string    `json:"observacoes,omitempty"`
	CreatedAt time.Time `json:"dataCriacao"`
}

// ReportPatch — частичное обновление заключения.
type ReportPatch struct {
	CaseID      *string `json:"casoId,omitempty"`
	Description *string `json:"descricao,omitempty"`
	Conclusions *string `json:"conclusoes,omitempty"`
	Expert      *string `json:"peritoResponsavel,omitempty"`
	Notes       *string `json:"observacoes,omitempty"`
}

// Apply переносит заданные поля патча на заключение.
func (p ReportPatch) Apply(r *Report) {
	if p.CaseID != nil {
		r.CaseID = *p.CaseID
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Conclusions != nil {
		r.Conclusions = *p.Conclusions
	}
	if p.Expert != nil {
		r.Expert = *p.Expert
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}
