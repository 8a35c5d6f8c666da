package store

import "context"

// Имена коллекций.
const (
	CollectionCases       = "casos"
	CollectionVictims     = "vitimas"
	CollectionEvidence    = "evidencias"
	CollectionReports     = "laudos"
	CollectionDental      = "odontologia"
	CollectionAnalytics   = "relatorios"
	CollectionUsers       = "usuarios"
	CollectionCredentials = "credenciais"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "odontoforense"

// Collections — все коллекции в порядке сброса.
var Collections = []string{
	CollectionCases,
	CollectionVictims,
	CollectionEvidence,
	CollectionReports,
	CollectionDental,
	CollectionAnalytics,
	CollectionUsers,
	CollectionCredentials,
}

// Keys строит ключи коллекций с общим префиксом.
type Keys struct {
	prefix string
}

// NewKeys создаёт построитель ключей. Пустой префикс заменяется DefaultPrefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// For возвращает ключ коллекции: "<prefix>:<collection>".
func (k Keys) For(collection string) string {
	return k.prefix + ":" + collection
}

// Reset удаляет все коллекции; последующие чтения вернут значения по умолчанию.
func (a *Adapter) Reset(ctx context.Context, keys Keys) error {
	for _, c := range Collections {
		if err := a.Remove(ctx, keys.For(c)); err != nil {
			return err
		}
	}
	return nil
}
