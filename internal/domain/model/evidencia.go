package model

import "time"

// EvidenceType — тип улики.
type EvidenceType string

const (
	EvidencePhoto      EvidenceType = "foto"
	EvidenceRadiograph EvidenceType = "radiografia"
	EvidenceDocument   EvidenceType = "documento"
	EvidenceVideo      EvidenceType = "video"
	EvidenceAudio      EvidenceType = "audio"
	EvidenceOther      EvidenceType = "outro"
)

// Valid проверяет, что тип входит в допустимый набор.
func (t EvidenceType) Valid() bool {
	switch t {
	case EvidencePhoto, EvidenceRadiograph, EvidenceDocument,
		EvidenceVideo, EvidenceAudio, EvidenceOther:
		return true
	}
	return false
}

// AnalysisStatus — статус анализа улики.
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "Pendente"
	AnalysisInProgress AnalysisStatus = "Em análise"
	AnalysisCompleted  AnalysisStatus = "Concluído"
)

// Valid проверяет, что статус анализа входит в допустимый набор.
func (s AnalysisStatus) Valid() bool {
	switch s {
	case AnalysisPending, AnalysisInProgress, AnalysisCompleted:
		return true
	}
	return false
}

// GeoPoint — координаты места обнаружения.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Evidence — улика (Evidência), привязанная к делу.
type Evidence struct {
	ID     string       `json:"id"`
	CaseID string       `json:"casoId"`
	Type   EvidenceType `json:"tipo"`
	// FileRef — непрозрачная ссылка на файл (URL или data URL)
	FileRef        string         `json:"arquivo"`
	Description    string         `json:"descricao"`
	Location       *GeoPoint      `json:"localizacao,omitempty"`
	AnalysisStatus AnalysisStatus `json:"statusAnalise"`
	AnalysisResult string         `json:"resultadoAnalise,omitempty"`
	UploadedAt     time.Time      `json:"dataUpload"`
}

// EvidencePatch — частичное обновление улики.
type EvidencePatch struct {
	CaseID         *string         `json:"casoId,omitempty"`
	Type           *EvidenceType   `json:"tipo,omitempty"`
	FileRef        *string         `json:"arquivo,omitempty"`
	Description    *string         `json:"descricao,omitempty"`
	Location       *GeoPoint       `json:"localizacao,omitempty"`
	AnalysisStatus *AnalysisStatus `json:"statusAnalise,omitempty"`
	AnalysisResult *string         `json:"resultadoAnalise,omitempty"`
}

// Apply переносит заданные поля патча на улику.
func (p EvidencePatch) Apply(e *Evidence) {
	if p.CaseID != nil {
		e.CaseID = *p.CaseID
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.FileRef != nil {
		e.FileRef = *p.FileRef
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Location != nil {
		loc := *p.Location
		e.Location = &loc
	}
	if p.AnalysisStatus != nil {
		e.AnalysisStatus = *p.AnalysisStatus
	}
	if p.AnalysisResult != nil {
		e.AnalysisResult = *p.AnalysisResult
	}
}
