package postgres

import (
	"context"
	"fmt"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.DivisionRepository = (*DivisionRepo)(nil)

// DivisionRepo implementación sobre PostgreSQL (usable con pool o tx).
type DivisionRepo struct {
	q Querier
}

// NewDivisionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDivisionRepository(q Querier) *DivisionRepo {
	return &DivisionRepo{q: q}
}

// Upsert inserta o actualiza el nombre de la división (clave: corporación + división).
func (r *DivisionRepo) Upsert(div *entity.HangarDivision) error {
	query := `
		INSERT INTO hangar_divisions (corporation_id, division_id, division_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (corporation_id, division_id)
		DO UPDATE SET division_name = EXCLUDED.division_name`
	_, err := r.q.Exec(context.Background(), query, div.CorporationID, div.DivisionID, div.DivisionName)
	if err != nil {
		return fmt.Errorf("upsert division: %w", err)
	}
	return nil
}

// ListByCorporation devuelve las divisiones de la corporación ordenadas por número.
func (r *DivisionRepo) ListByCorporation(corporationID int64) ([]*entity.HangarDivision, error) {
	query := `
		SELECT id, corporation_id, division_id, division_name
		FROM hangar_divisions WHERE corporation_id = $1 ORDER BY division_id`
	rows, err := r.q.Query(context.Background(), query, corporationID)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}
	defer rows.Close()

	var divs []*entity.HangarDivision
	for rows.Next() {
		var d entity.HangarDivision
		if err := rows.Scan(&d.ID, &d.CorporationID, &d.DivisionID, &d.DivisionName); err != nil {
			return nil, fmt.Errorf("scan division: %w", err)
		}
		divs = append(divs, &d)
	}
	return divs, rows.Err()
}
