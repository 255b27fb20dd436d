package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.HangarItemRepository = (*HangarItemRepo)(nil)

// HangarItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type HangarItemRepo struct {
	q Querier
}

// NewHangarItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHangarItemRepository(q Querier) *HangarItemRepo {
	return &HangarItemRepo{q: q}
}

const hangarItemColumns = `id, corporation_id, item_id, type_id, type_name, location_id, division_id,
       quantity, estimated_value, is_singleton, is_blueprint_copy, is_active, first_seen, last_seen`

func (r *HangarItemRepo) list(query string, args ...any) ([]*entity.HangarItem, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hangar items: %w", err)
	}
	defer rows.Close()

	var items []*entity.HangarItem
	for rows.Next() {
		var it entity.HangarItem
		err := rows.Scan(
			&it.ID, &it.CorporationID, &it.ItemID, &it.TypeID, &it.TypeName,
			&it.LocationID, &it.DivisionID, &it.Quantity, &it.EstimatedValue,
			&it.IsSingleton, &it.IsBlueprintCopy, &it.IsActive, &it.FirstSeen, &it.LastSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hangar item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// ListByCorporation devuelve todas las filas de la corporación, activas e inactivas.
func (r *HangarItemRepo) ListByCorporation(corporationID int64) ([]*entity.HangarItem, error) {
	query := `SELECT ` + hangarItemColumns + ` FROM hangar_items WHERE corporation_id = $1 ORDER BY last_seen DESC`
	return r.list(query, corporationID)
}

// ListActiveByCorporation devuelve el conjunto activo (los items de la última sincronización exitosa).
func (r *HangarItemRepo) ListActiveByCorporation(corporationID int64) ([]*entity.HangarItem, error) {
	query := `SELECT ` + hangarItemColumns + ` FROM hangar_items WHERE corporation_id = $1 AND is_active`
	return r.list(query, corporationID)
}

// KnownTypeNames devuelve los nombres de tipo ya persistidos para esos type_ids.
func (r *HangarItemRepo) KnownTypeNames(typeIDs []int64) (map[int64]string, error) {
	if len(typeIDs) == 0 {
		return map[int64]string{}, nil
	}
	query := `SELECT DISTINCT type_id, type_name FROM hangar_items WHERE type_id = ANY($1)`
	rows, err := r.q.Query(context.Background(), query, typeIDs)
	if err != nil {
		return nil, fmt.Errorf("known type names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan type name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// BulkUpsert inserta o actualiza por item_id en un solo batch. first_seen se
// fija en el insert y no se toca en el update.
func (r *HangarItemRepo) BulkUpsert(items []*entity.HangarItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `
		INSERT INTO hangar_items (corporation_id, item_id, type_id, type_name, location_id, division_id,
		                          quantity, estimated_value, is_singleton, is_blueprint_copy, is_active,
		                          first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (item_id) DO UPDATE SET
			type_name       = EXCLUDED.type_name,
			location_id     = EXCLUDED.location_id,
			division_id     = EXCLUDED.division_id,
			quantity        = EXCLUDED.quantity,
			estimated_value = EXCLUDED.estimated_value,
			is_singleton    = EXCLUDED.is_singleton,
			is_blueprint_copy = EXCLUDED.is_blueprint_copy,
			is_active       = EXCLUDED.is_active,
			last_seen       = EXCLUDED.last_seen`
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(query,
			it.CorporationID, it.ItemID, it.TypeID, it.TypeName, it.LocationID, it.DivisionID,
			it.Quantity, it.EstimatedValue, it.IsSingleton, it.IsBlueprintCopy, it.IsActive,
			it.LastSeen,
		)
	}
	br := r.q.SendBatch(context.Background(), batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("bulk upsert hangar items: %w", err)
		}
	}
	return nil
}

// Deactivate marca inactivos los item_ids dados y sella last_seen.
func (r *HangarItemRepo) Deactivate(corporationID int64, itemIDs []int64, at time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query := `
		UPDATE hangar_items SET is_active = false, last_seen = $3
		WHERE corporation_id = $1 AND item_id = ANY($2)`
	_, err := r.q.Exec(context.Background(), query, corporationID, itemIDs, at)
	if err != nil {
		return fmt.Errorf("deactivate hangar items: %w", err)
	}
	return nil
}
