// Пакет seed — демонстрационные данные, возвращаемые хранилищем,
// пока коллекция ни разу не записана (OF_SEED_DEMO=true).
package seed

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/odontoforense/internal/domain/model"
)

// DemoPassword — пароль демонстрационных пользователей.
const DemoPassword = "odonto-demo-2024"

// Data — значения коллекций по умолчанию.
type Data struct {
	Cases       []model.Case
	Victims     []model.Victim
	Evidence    []model.Evidence
	Reports     []model.Report
	Dental      []model.DentalRecord
	Analytics   []model.AnalyticsReport
	Users       []model.User
	Credentials []model.Credential // ID совпадает с ID пользователя
}

// Empty возвращает пустые коллекции.
func Empty() Data {
	return Data{}
}

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

// demoCredentials выдаёт каждому пользователю пароль DemoPassword.
// Минимальная стоимость bcrypt: набор строится при каждом вызове Demo.
func demoCredentials(users []model.User) []model.Credential {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.MinCost)
	if err != nil {
		panic("seed: bcrypt: " + err.Error())
	}
	creds := make([]model.Credential, 0, len(users))
	for _, u := range users {
		creds = append(creds, model.Credential{ID: u.ID, Email: u.Email, PasswordHash: string(hash)})
	}
	return creds
}

// Demo возвращает демонстрационный набор.
// ID фиксированы, чтобы ссылки между коллекциями были согласованы.
func Demo() Data {
	d := Data{
		Users: []model.User{
			{ID: "demo-user-admin", Name: "Administrador", Email: "admin@odontoforense.local",
				Role: model.RoleAdmin, Status: model.UserActive,
				CreatedAt: at(2024, time.January, 2), UpdatedAt: at(2024, time.January, 2)},
			{ID: "demo-user-perito", Name: "Dra. Ana Souza", Email: "ana.souza@odontoforense.local",
				Role: model.RoleExaminer, Status: model.UserActive,
				CreatedAt: at(2024, time.January, 3), UpdatedAt: at(2024, time.January, 3)},
		},
		Cases: []model.Case{
			{ID: "demo-caso-1", Title: "Identificação de vítima em acidente rodoviário",
				Description: "Vítima sem documentos encontrada na BR-101.",
				Status:      model.CaseInProgress, CreatorUserID: "demo-user-perito",
				CreatedAt: at(2024, time.January, 15), UpdatedAt: at(2024, time.January, 20)},
			{ID: "demo-caso-2", Title: "Análise de marca de mordida",
				Description: "Comparação de arco dentário com suspeito.",
				Status:      model.CaseFinalized, CreatorUserID: "demo-user-perito",
				CreatedAt: at(2024, time.February, 5), UpdatedAt: at(2024, time.March, 1)},
			{ID: "demo-caso-3", Title: "Ossada encontrada em área rural",
				Description: "Estimativa de idade pela análise dentária.",
				Status:      model.CaseArchived, CreatorUserID: "demo-user-admin",
				CreatedAt: at(2024, time.March, 10), UpdatedAt: at(2024, time.April, 2)},
		},
		Victims: []model.Victim{
			{ID: "demo-vitima-1", NIC: "10293847", Name: "Não identificada", Gender: "masculino",
				Age: intPtr(35), Notes: "Restaurações em amálgama nos molares.",
				DentalChart: map[string]string{"16": "restauração", "26": "restauração", "38": "ausente"},
				CaseID:      "demo-caso-1",
				CreatedAt:   at(2024, time.January, 16), UpdatedAt: at(2024, time.January, 16)},
			{ID: "demo-vitima-2", NIC: "56473829", Name: "Não identificada", Gender: "feminino",
				Notes: "Arcada completa, sem tratamentos.", CaseID: "demo-caso-3",
				CreatedAt: at(2024, time.March, 11), UpdatedAt: at(2024, time.March, 11)},
		},
		Evidence: []model.Evidence{
			{ID: "demo-evidencia-1", CaseID: "demo-caso-1", Type: model.EvidenceRadiograph,
				FileRef: "https://files.odontoforense.local/rx-panoramica-001.png", Description: "Radiografia panorâmica",
				Location:       &model.GeoPoint{Latitude: -8.0476, Longitude: -34.877},
				AnalysisStatus: model.AnalysisInProgress, UploadedAt: at(2024, time.January, 17)},
			{ID: "demo-evidencia-2", CaseID: "demo-caso-2", Type: model.EvidencePhoto,
				FileRef: "https://files.odontoforense.local/mordida-002.jpg", Description: "Fotografia da marca de mordida",
				AnalysisStatus: model.AnalysisCompleted, AnalysisResult: "Compatível com o arco do suspeito.",
				UploadedAt: at(2024, time.February, 6)},
		},
		Reports: []model.Report{
			{ID: "demo-laudo-1", CaseID: "demo-caso-2", Description: "Laudo de análise de mordida",
				Conclusions: "Padrão compatível em 12 pontos de referência.", Expert: "Dra. Ana Souza",
				CreatedAt: at(2024, time.March, 1)},
		},
		Dental: []model.DentalRecord{
			{ID: "demo-odonto-1", VictimID: "demo-vitima-1",
				DentalData: "Molares 16 e 26 restaurados; 38 ausente.",
				CreatedAt:  at(2024, time.January, 18), UpdatedAt: at(2024, time.January, 18)},
		},
		Analytics: []model.AnalyticsReport{
			{ID: "demo-relatorio-1", Title: "Resumo do primeiro trimestre", Type: model.AnalyticsGeneral,
				Content:       model.SynthesizeContent(model.AnalyticsGeneral, at(2024, time.April, 1)),
				CreatorUserID: "demo-user-admin", CreatedAt: at(2024, time.April, 1)},
		},
	}
	d.Credentials = demoCredentials(d.Users)
	return d
}
