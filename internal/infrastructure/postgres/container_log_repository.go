package postgres

import (
	"context"
	"fmt"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.ContainerLogRepository = (*ContainerLogRepo)(nil)

// ContainerLogRepo implementación sobre PostgreSQL (usable con pool o tx).
type ContainerLogRepo struct {
	q Querier
}

// NewContainerLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContainerLogRepository(q Querier) *ContainerLogRepo {
	return &ContainerLogRepo{q: q}
}

// CreateIfAbsent inserta la entrada si su clave natural no existe todavía.
// Devuelve true si insertó. La constraint única del esquema deduplica.
func (r *ContainerLogRepo) CreateIfAbsent(log *entity.ContainerLog) (bool, error) {
	query := `
		INSERT INTO container_logs (corporation_id, character_id, character_name, container_id,
		                            container_type_id, container_type_name, action, type_id, type_name,
		                            quantity, location_id, location_flag, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		log.CorporationID, log.CharacterID, log.CharacterName, log.ContainerID,
		log.ContainerTypeID, log.ContainerTypeName, log.Action, log.TypeID, log.TypeName,
		log.Quantity, log.LocationID, log.LocationFlag, log.LoggedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create container log: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByCorporation entradas más recientes primero.
func (r *ContainerLogRepo) ListByCorporation(corporationID int64, limit int) ([]*entity.ContainerLog, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `
		SELECT id, corporation_id, character_id, character_name, container_id,
		       container_type_id, container_type_name, action, type_id, type_name,
		       quantity, location_id, location_flag, logged_at
		FROM container_logs WHERE corporation_id = $1
		ORDER BY logged_at DESC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, corporationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list container logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.ContainerLog
	for rows.Next() {
		var l entity.ContainerLog
		err := rows.Scan(
			&l.ID, &l.CorporationID, &l.CharacterID, &l.CharacterName, &l.ContainerID,
			&l.ContainerTypeID, &l.ContainerTypeName, &l.Action, &l.TypeID, &l.TypeName,
			&l.Quantity, &l.LocationID, &l.LocationFlag, &l.LoggedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan container log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
