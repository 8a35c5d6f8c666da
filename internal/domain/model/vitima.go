package model

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NICLength — длина числового идентификационного кода жертвы.
const NICLength = 8

// Victim — жертва (Vítima), опознанная или нет.
// Ссылка на дело (CaseID) не проверяется и не каскадируется.
type Victim struct {
	ID string `json:"id"`
	// NIC — 8-значный числовой код; уникальность не гарантируется
	NIC       string `json:"nic"`
	Name      string `json:"nome"`
	Gender    string `json:"genero"`
	Age       *int   `json:"idade,omitempty"`
	Document  string `json:"documento,omitempty"`
	Address   string `json:"endereco,omitempty"`
	Ethnicity string `json:"etnia,omitempty"`
	Notes     string `json:"observacoes"`
	// DentalChart — одонтограмма: номер зуба → наблюдение
	DentalChart map[string]string `json:"odontograma,omitempty"`
	CaseID      string            `json:"casoId"`
	CreatedAt   time.Time         `json:"dataCriacao"`
	UpdatedAt   time.Time         `json:"dataAtualizacao"`
}

// VictimPatch — частичное обновление жертвы.
type VictimPatch struct {
	NIC         *string            `json:"nic,omitempty"`
	Name        *string            `json:"nome,omitempty"`
	Gender      *string            `json:"genero,omitempty"`
	Age         *int               `json:"idade,omitempty"`
	Document    *string            `json:"documento,omitempty"`
	Address     *string            `json:"endereco,omitempty"`
	Ethnicity   *string            `json:"etnia,omitempty"`
	Notes       *string            `json:"observacoes,omitempty"`
	DentalChart *map[string]string `json:"odontograma,omitempty"`
	CaseID      *string            `json:"casoId,omitempty"`
}

// Apply переносит заданные поля патча на жертву.
func (p VictimPatch) Apply(v *Victim) {
	if p.NIC != nil {
		v.NIC = *p.NIC
	}
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Gender != nil {
		v.Gender = *p.Gender
	}
	if p.Age != nil {
		age := *p.Age
		v.Age = &age
	}
	if p.Document != nil {
		v.Document = *p.Document
	}
	if p.Address != nil {
		v.Address = *p.Address
	}
	if p.Ethnicity != nil {
		v.Ethnicity = *p.Ethnicity
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
	if p.DentalChart != nil {
		v.DentalChart = *p.DentalChart
	}
	if p.CaseID != nil {
		v.CaseID = *p.CaseID
	}
}

// GenerateNIC возвращает случайный 8-значный код.
func GenerateNIC() string {
	return fmt.Sprintf("%0*d", NICLength, rand.IntN(100_000_000))
}

// ValidNIC проверяет формат кода: ровно 8 цифр.
func ValidNIC(nic string) bool {
	if len(nic) != NICLength {
		return false
	}
	for _, r := range nic {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
