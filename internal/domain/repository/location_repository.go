package repository

import "github.com/evetrack/corphangar/internal/domain/entity"

// LocationRepository puerto para ubicaciones resueltas (cache durable).
type LocationRepository interface {
	GetByID(locationID int64) (*entity.Location, error)
	Create(loc *entity.Location) error
	// UpdateMetadata rellena nombre/jerarquía de una ubicación placeholder ya existente.
	UpdateMetadata(loc *entity.Location) error
}
