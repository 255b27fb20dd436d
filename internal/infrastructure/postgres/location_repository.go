package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// GetByID obtiene una ubicación por su ID remoto.
func (r *LocationRepo) GetByID(locationID int64) (*entity.Location, error) {
	query := `
		SELECT location_id, location_name, location_type,
		       solar_system_id, solar_system_name, region_id, region_name, updated_at
		FROM locations WHERE location_id = $1`
	var loc entity.Location
	err := r.q.QueryRow(context.Background(), query, locationID).Scan(
		&loc.LocationID, &loc.LocationName, &loc.LocationType,
		&loc.SolarSystemID, &loc.SolarSystemName, &loc.RegionID, &loc.RegionName, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

// Create persiste una ubicación recién resuelta (o placeholder).
func (r *LocationRepo) Create(loc *entity.Location) error {
	query := `
		INSERT INTO locations (location_id, location_name, location_type,
		                       solar_system_id, solar_system_name, region_id, region_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.q.Exec(context.Background(), query,
		loc.LocationID, loc.LocationName, loc.LocationType,
		loc.SolarSystemID, loc.SolarSystemName, loc.RegionID, loc.RegionName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// UpdateMetadata rellena nombre y jerarquía de una ubicación ya existente (backfill de placeholder).
func (r *LocationRepo) UpdateMetadata(loc *entity.Location) error {
	query := `
		UPDATE locations
		SET location_name = $2, location_type = $3,
		    solar_system_id = $4, solar_system_name = $5,
		    region_id = $6, region_name = $7, updated_at = now()
		WHERE location_id = $1`
	_, err := r.q.Exec(context.Background(), query,
		loc.LocationID, loc.LocationName, loc.LocationType,
		loc.SolarSystemID, loc.SolarSystemName, loc.RegionID, loc.RegionName,
	)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}
