// Пакет service — бизнес-логика поверх репозиториев:
// агрегатор панели, аутентификация, мониторинг зависимостей.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bigkaa/odontoforense/internal/domain/model"
	"github.com/bigkaa/odontoforense/internal/repository"
)

// periodLayout — формат периода активности (календарный месяц).
const periodLayout = "2006-01"

// Summarizer — источник сводки панели.
// Реализуется локальным DashboardService и удалённым apiclient.Client.
type Summarizer interface {
	Summarize(ctx context.Context) (model.DashboardSnapshot, error)
}

// DashboardService вычисляет сводку по текущему содержимому репозиториев.
// Кэширования нет: каждый вызов перечитывает коллекции.
type DashboardService struct {
	cases    repository.Repository[model.Case, model.CasePatch]
	victims  repository.Repository[model.Victim, model.VictimPatch]
	evidence repository.Repository[model.Evidence, model.EvidencePatch]
	reports  repository.Repository[model.Report, model.ReportPatch]
}

// NewDashboardService создаёт агрегатор поверх набора репозиториев.
func NewDashboardService(set *repository.Set) *DashboardService {
	return &DashboardService{
		cases:    set.Cases,
		victims:  set.Victims,
		evidence: set.Evidence,
		reports:  set.Reports,
	}
}

// Summarize считает счётчики и помесячную активность.
func (s *DashboardService) Summarize(ctx context.Context) (model.DashboardSnapshot, error) {
	var snap model.DashboardSnapshot

	cases, err := s.cases.List(ctx, repository.Filter{})
	if err != nil {
		return snap, fmt.Errorf("чтение дел: %w", err)
	}
	victims, err := s.victims.List(ctx, repository.Filter{})
	if err != nil {
		return snap, fmt.Errorf("чтение жертв: %w", err)
	}
	evidence, err := s.evidence.List(ctx, repository.Filter{})
	if err != nil {
		return snap, fmt.Errorf("чтение улик: %w", err)
	}
	reports, err := s.reports.List(ctx, repository.Filter{})
	if err != nil {
		return snap, fmt.Errorf("чтение заключений: %w", err)
	}

	snap.TotalCases = len(cases)
	snap.TotalVictims = len(victims)
	snap.TotalEvidence = len(evidence)
	snap.TotalReports = len(reports)

	periods := map[string]*model.ActivityPeriod{}
	bucket := func(t time.Time) *model.ActivityPeriod {
		key := t.UTC().Format(periodLayout)
		p, ok := periods[key]
		if !ok {
			p = &model.ActivityPeriod{Period: key}
			periods[key] = p
		}
		return p
	}

	for _, c := range cases {
		switch c.Status {
		case model.CaseInProgress:
			snap.CasesInProgress++
		case model.CaseFinalized:
			snap.CasesFinalized++
		case model.CaseArchived:
			snap.CasesArchived++
		}
		bucket(c.CreatedAt).CaseCount++
	}
	for _, v := range victims {
		bucket(v.CreatedAt).VictimCount++
	}
	for _, e := range evidence {
		bucket(e.UploadedAt).EvidenceCount++
	}

	snap.Activity = make([]model.ActivityPeriod, 0, len(periods))
	for _, p := range periods {
		snap.Activity = append(snap.Activity, *p)
	}
	// "2006-01" сортируется лексикографически в хронологическом порядке
	sort.Slice(snap.Activity, func(i, j int) bool {
		return snap.Activity[i].Period < snap.Activity[j].Period
	})

	return snap, nil
}
