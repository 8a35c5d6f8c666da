package model

import "time"

// DentalRecord — стоматологическая запись (Odontologia) жертвы.
type DentalRecord struct {
	ID       string `json:"id"`
	VictimID string `json:"vitimaId"`
	// DentalData — свободный текст с данными осмотра
	DentalData string    `json:"dadosOdontologicos"`
	Notes      string    `json:"observacoes,omitempty"`
	CreatedAt  time.Time `json:"dataCriacao"`
	UpdatedAt  time.Time `json:"dataAtualizacao"`
}

// DentalRecordPatch — частичное обновление стоматологической записи.
type DentalRecordPatch struct {
	VictimID   *string `json:"vitimaId,omitempty"`
	DentalData *string `json:"dadosOdontologicos,omitempty"`
	Notes      *string `json:"observacoes,omitempty"`
}

// Apply переносит заданные поля патча на запись.
func (p DentalRecordPatch) Apply(d *DentalRecord) {
	if p.VictimID != nil {
		d.VictimID = *p.VictimID
	}
	if p.DentalData != nil {
		d.DentalData = *p.DentalData
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
}
