// Пакет model — доменные модели odontoforense.
// Имена JSON-полей совпадают с REST API (на португальском).
package model

import "time"

// CaseStatus — статус расследования.
// Переходы между статусами не ограничены.
type CaseStatus string

const (
	// CaseInProgress — расследование ведётся
	CaseInProgress CaseStatus = "Em andamento"
	// CaseFinalized — расследование завершено
	CaseFinalized CaseStatus = "Finalizado"
	// CaseArchived — дело в архиве
	CaseArchived CaseStatus = "Arquivado"
)

// Valid проверяет, что статус входит в допустимый набор.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseInProgress, CaseFinalized, CaseArchived:
		return true
	}
	return false
}

// Case — судебно-одонтологическое дело (Caso).
type Case struct {
	// ID — UUID дела
	ID string `json:"id"`
	// Title — название
	Title string `json:"titulo"`
	// Description — описание
	Description string `json:"descricao"`
	// Status — текущий статус
	Status CaseStatus `json:"status"`
	// CreatedAt — время создания
	CreatedAt time.Time `json:"dataCriacao"`
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time `json:"dataAtualizacao"`
	// CreatorUserID — ID пользователя, создавшего дело
	CreatorUserID string `json:"usuarioId"`
}

// CasePatch — частичное обновление дела. nil = поле не меняется.
type CasePatch struct {
	Title         *string     `json:"titulo,omitempty"`
	Description   *string     `json:"descricao,omitempty"`
	Status        *CaseStatus `json:"status,omitempty"`
	CreatorUserID *string     `json:"usuarioId,omitempty"`
}

// Apply переносит заданные поля патча на дело.
func (p CasePatch) Apply(c *Case) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.CreatorUserID != nil {
		c.CreatorUserID = *p.CreatorUserID
	}
}
