package postgres

import (
	"context"
	"fmt"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implementación sobre PostgreSQL (usable con pool o tx).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

// Create persiste el snapshot agregado del ciclo.
func (r *SnapshotRepo) Create(snap *entity.HangarSnapshot) error {
	query := `
		INSERT INTO hangar_snapshots (corporation_id, snapshot_time, total_items, total_value)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		snap.CorporationID, snap.SnapshotTime, snap.TotalItems, snap.TotalValue,
	)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	return nil
}

// ListByCorporation snapshots más recientes primero.
func (r *SnapshotRepo) ListByCorporation(corporationID int64, limit int) ([]*entity.HangarSnapshot, error) {
	if limit <= 0 {
		limit = 48
	}
	query := `
		SELECT id, corporation_id, snapshot_time, total_items, total_value
		FROM hangar_snapshots WHERE corporation_id = $1
		ORDER BY snapshot_time DESC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, corporationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*entity.HangarSnapshot
	for rows.Next() {
		var s entity.HangarSnapshot
		if err := rows.Scan(&s.ID, &s.CorporationID, &s.SnapshotTime, &s.TotalItems, &s.TotalValue); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, &s)
	}
	return snaps, rows.Err()
}

// PruneKeepLatest conserva los `keep` snapshots más recientes y borra el resto.
func (r *SnapshotRepo) PruneKeepLatest(corporationID int64, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	query := `
		DELETE FROM hangar_snapshots
		WHERE corporation_id = $1 AND id NOT IN (
			SELECT id FROM hangar_snapshots
			WHERE corporation_id = $1
			ORDER BY snapshot_time DESC LIMIT $2
		)`
	tag, err := r.q.Exec(context.Background(), query, corporationID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
