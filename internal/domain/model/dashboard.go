package model

// DashboardSnapshot — сводная статистика для главного экрана.
type DashboardSnapshot struct {
	TotalCases      int `json:"totalCasos"`
	CasesInProgress int `json:"casosEmAndamento"`
	CasesFinalized  int `json:"casosFinalizados"`
	CasesArchived   int `json:"casosArquivados"`
	TotalVictims    int `json:"totalVitimas"`
	TotalEvidence   int `json:"totalEvidencias"`
	TotalReports    int `json:"totalLaudos"`
	// Activity — помесячная активность в порядке возрастания периода
	Activity []ActivityPeriod `json:"atividade"`
}

// ActivityPeriod — активность за календарный месяц.
type ActivityPeriod struct {
	// Period — месяц в формате YYYY-MM (UTC)
	Period        string `json:"periodo"`
	CaseCount     int    `json:"casos"`
	VictimCount   int    `json:"vitimas"`
	EvidenceCount int    `json:"evidencias"`
}
