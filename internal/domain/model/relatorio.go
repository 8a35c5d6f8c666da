package model

import (
	"fmt"
	"time"
)

// AnalyticsType — тип аналитического отчёта.
type AnalyticsType string

const (
	AnalyticsCases    AnalyticsType = "casos"
	AnalyticsVictims  AnalyticsType = "vitimas"
	AnalyticsEvidence AnalyticsType = "evidencias"
	AnalyticsReports  AnalyticsType = "laudos"
	AnalyticsGeneral  AnalyticsType = "geral"
)

// analyticsLabels — подписи типов для синтеза содержимого.
var analyticsLabels = map[AnalyticsType]string{
	AnalyticsCases:    "casos",
	AnalyticsVictims:  "vítimas",
	AnalyticsEvidence: "evidências",
	AnalyticsReports:  "laudos",
	AnalyticsGeneral:  "atividades gerais",
}

// Valid проверяет, что тип входит в допустимый набор.
func (t AnalyticsType) Valid() bool {
	_, ok := analyticsLabels[t]
	return ok
}

// AnalyticsReport — аналитический отчёт (Relatório).
type AnalyticsReport struct {
	ID      string        `json:"id"`
	Title   string        `json:"titulo"`
	Type    AnalyticsType `json:"tipo"`
	Content string        `json:"conteudo"`
	// CreatorUserID — автор отчёта (необязателен)
	CreatorUserID string    `json:"usuarioId,omitempty"`
	CreatedAt     time.Time `json:"dataCriacao"`
}

// AnalyticsReportPatch — частичное обновление отчёта.
type AnalyticsReportPatch struct {
	Title   *string        `json:"titulo,omitempty"`
	Type    *AnalyticsType `json:"tipo,omitempty"`
	Content *string        `json:"conteudo,omitempty"`
}

// Apply переносит заданные поля патча на отчёт.
func (p AnalyticsReportPatch) Apply(r *AnalyticsReport) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
}

// SynthesizeContent формирует текст отчёта по его типу.
// Неизвестный тип описывается своим значением как есть.
func SynthesizeContent(t AnalyticsType, at time.Time) string {
	label, ok := analyticsLabels[t]
	if !ok {
		label = string(t)
	}
	return fmt.Sprintf("Relatório de %s gerado em %s.", label, at.UTC().Format("02/01/2006 15:04"))
}
