package repository

import "github.com/evetrack/corphangar/internal/domain/entity"

// DivisionRepository puerto para las divisiones de hangar.
// Las divisiones se refrescan en cada ciclo (upsert), nunca se borran a mitad de ciclo.
type DivisionRepository interface {
	Upsert(div *entity.HangarDivision) error
	ListByCorporation(corporationID int64) ([]*entity.HangarDivision, error)
}
