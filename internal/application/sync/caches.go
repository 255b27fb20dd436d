package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// LocationCache cache read-through de ubicaciones, con alcance de un ciclo:
// memoria → BD → fuente externa → placeholder. Las instancias se construyen
// por ciclo para que corporaciones distintas nunca compartan estado mutable.
// Get es seguro para uso concurrente (los lookups son idempotentes; un fetch
// duplicado es solo desperdicio).
type LocationCache struct {
	repo   repository.LocationRepository
	source InventorySource
	token  string

	mu   gosync.Mutex
	byID map[int64]*entity.Location
}

// NewLocationCache construye el cache para un ciclo.
func NewLocationCache(repo repository.LocationRepository, source InventorySource, token string) *LocationCache {
	return &LocationCache{
		repo:   repo,
		source: source,
		token:  token,
		byID:   make(map[int64]*entity.Location),
	}
}

// Get resuelve una ubicación: BD primero, fuente externa en miss y, si el
// directorio tampoco la conoce, sintetiza un placeholder con tipo unknown en
// vez de fallar. Una ubicación placeholder ya persistida se intenta rellenar
// (backfill) en el siguiente encuentro.
func (c *LocationCache) Get(ctx context.Context, locationID int64) (*entity.Location, error) {
	c.mu.Lock()
	if loc, ok := c.byID[locationID]; ok {
		c.mu.Unlock()
		return loc, nil
	}
	c.mu.Unlock()

	loc, err := c.repo.GetByID(locationID)
	switch {
	case err == nil:
		if loc.LocationType == entity.LocationTypeUnknown {
			if refreshed := c.fetch(ctx, locationID); refreshed != nil {
				refreshed.UpdatedAt = time.Now()
				if upErr := c.repo.UpdateMetadata(refreshed); upErr == nil {
					loc = refreshed
				}
			}
		}
	case errors.Is(err, domain.ErrNotFound):
		loc = c.fetch(ctx, locationID)
		if loc == nil {
			loc = &entity.Location{
				LocationID:   locationID,
				LocationName: fmt.Sprintf("Unknown Location %d", locationID),
				LocationType: entity.LocationTypeUnknown,
			}
		}
		if crErr := c.repo.Create(loc); crErr != nil {
			if !errors.Is(crErr, domain.ErrDuplicate) {
				return nil, fmt.Errorf("crear location %d: %w", locationID, crErr)
			}
			// Otro lookup concurrente la creó primero; releer.
			if loc, err = c.repo.GetByID(locationID); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("leer location %d: %w", locationID, err)
	}

	c.mu.Lock()
	c.byID[locationID] = loc
	c.mu.Unlock()
	return loc, nil
}

// fetch consulta la fuente y arma la jerarquía sistema→constelación→región,
// tolerando cualquier eslabón faltante (jerarquía parcial es aceptable).
// Devuelve nil si el directorio no conoce la ubicación.
func (c *LocationCache) fetch(ctx context.Context, locationID int64) *entity.Location {
	var (
		info    *LocationInfo
		locType string
	)
	if locationID >= entity.StructureIDFloor {
		info, _ = c.source.FetchStructure(ctx, locationID, c.token)
		locType = entity.LocationTypeStructure
	} else {
		info, _ = c.source.FetchStation(ctx, locationID)
		locType = entity.LocationTypeStation
	}
	if info == nil {
		return nil
	}

	loc := &entity.Location{
		LocationID:   locationID,
		LocationName: info.Name,
		LocationType: locType,
	}
	if info.SolarSystemID == 0 {
		return loc
	}
	systemID := info.SolarSystemID
	loc.SolarSystemID = &systemID

	system, _ := c.source.FetchSolarSystem(ctx, systemID)
	if system == nil {
		return loc
	}
	loc.SolarSystemName = system.Name
	if system.ConstellationID == 0 {
		return loc
	}
	regionID, _ := c.source.FetchConstellationRegion(ctx, system.ConstellationID)
	if regionID == 0 {
		return loc
	}
	loc.RegionID = &regionID
	if name, _ := c.source.FetchRegionName(ctx, regionID); name != "" {
		loc.RegionName = name
	}
	return loc
}

// TypeNameCache cache read-through de nombres de tipo, con alcance de un ciclo:
// memoria → nombres ya persistidos → fuente externa → placeholder.
type TypeNameCache struct {
	itemRepo repository.HangarItemRepository
	source   InventorySource

	mu    gosync.Mutex
	names map[int64]string
}

// NewTypeNameCache construye el cache para un ciclo.
func NewTypeNameCache(itemRepo repository.HangarItemRepository, source InventorySource) *TypeNameCache {
	return &TypeNameCache{
		itemRepo: itemRepo,
		source:   source,
		names:    make(map[int64]string),
	}
}

// Prime precarga desde la BD los nombres ya conocidos para esos type_ids,
// evitando un fetch externo por cada tipo ya visto antes.
func (c *TypeNameCache) Prime(typeIDs []int64) error {
	known, err := c.itemRepo.KnownTypeNames(typeIDs)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for id, name := range known {
		if name != "" {
			c.names[id] = name
		}
	}
	c.mu.Unlock()
	return nil
}

// Get devuelve el nombre del tipo; en miss del directorio sintetiza
// "Unknown Type {id}" en vez de fallar.
func (c *TypeNameCache) Get(ctx context.Context, typeID int64) string {
	c.mu.Lock()
	if name, ok := c.names[typeID]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	name, err := c.source.FetchTypeName(ctx, typeID)
	if err != nil || name == "" {
		name = fmt.Sprintf("Unknown Type %d", typeID)
	}

	c.mu.Lock()
	c.names[typeID] = name
	c.mu.Unlock()
	return name
}
