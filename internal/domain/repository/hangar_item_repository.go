package repository

import (
	"time"

	"github.com/evetrack/corphangar/internal/domain/entity"
)

// HangarItemRepository puerto para los items de hangar.
// El motor de reconciliación es el único dueño de la transición active/inactive.
type HangarItemRepository interface {
	// ListByCorporation devuelve todas las filas de la corporación (activas e inactivas).
	ListByCorporation(corporationID int64) ([]*entity.HangarItem, error)
	ListActiveByCorporation(corporationID int64) ([]*entity.HangarItem, error)
	// KnownTypeNames nombres de tipo ya persistidos para esos type_ids (cache DB-first).
	KnownTypeNames(typeIDs []int64) (map[int64]string, error)
	// BulkUpsert inserta o actualiza por item_id (cantidad, valor, ubicación, división, flags, active, last_seen).
	BulkUpsert(items []*entity.HangarItem) error
	// Deactivate marca inactivos los item_ids dados.
	Deactivate(corporationID int64, itemIDs []int64, at time.Time) error
}
