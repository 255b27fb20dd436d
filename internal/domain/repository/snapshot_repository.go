package repository

import "github.com/evetrack/corphangar/internal/domain/entity"

// SnapshotRepository puerto para los snapshots agregados por ciclo.
type SnapshotRepository interface {
	Create(snap *entity.HangarSnapshot) error
	ListByCorporation(corporationID int64, limit int) ([]*entity.HangarSnapshot, error)
	// PruneKeepLatest conserva los `keep` snapshots más recientes y borra el resto.
	PruneKeepLatest(corporationID int64, keep int) (int64, error)
}
