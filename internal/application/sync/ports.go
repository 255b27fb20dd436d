package sync

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// DivisionInfo división de hangar tal como la devuelve la fuente.
type DivisionInfo struct {
	Division int
	Name     string
}

// WalletInfo balance de una división de wallet. La división 1 es el balance maestro.
type WalletInfo struct {
	Division int
	Balance  decimal.Decimal
}

// LocationInfo metadata de una estación o estructura.
type LocationInfo struct {
	Name          string
	SolarSystemID int64 // 0 si la fuente no lo informa
}

// SolarSystemInfo metadata de un sistema solar.
type SolarSystemInfo struct {
	Name            string
	ConstellationID int64
}

// ContainerLogEntry entrada cruda del log de acceso a contenedores.
type ContainerLogEntry struct {
	CharacterID     int64
	ContainerID     int64
	ContainerTypeID int64
	Action          string
	TypeID          int64
	Quantity        *int64
	LocationID      int64
	LocationFlag    string
	LoggedAt        time.Time
}

// InventorySource colaborador externo que provee el listado de assets y la
// metadata de ubicaciones/tipos. Los métodos de metadata devuelven (nil, nil)
// cuando el directorio no conoce el ID: la ausencia de metadata nunca aborta
// un ciclo.
type InventorySource interface {
	FetchAssets(ctx context.Context, corporationID int64, token string) ([]*entity.AssetRecord, error)
	FetchDivisions(ctx context.Context, corporationID int64, token string) ([]DivisionInfo, error)
	FetchWallets(ctx context.Context, corporationID int64, token string) ([]WalletInfo, error)
	FetchContainerLogs(ctx context.Context, corporationID int64, token string) ([]ContainerLogEntry, error)

	FetchStation(ctx context.Context, stationID int64) (*LocationInfo, error)
	FetchStructure(ctx context.Context, structureID int64, token string) (*LocationInfo, error)
	FetchTypeName(ctx context.Context, typeID int64) (string, error)
	FetchSolarSystem(ctx context.Context, systemID int64) (*SolarSystemInfo, error)
	// FetchConstellationRegion devuelve el region_id de una constelación (0 si no se conoce).
	FetchConstellationRegion(ctx context.Context, constellationID int64) (int64, error)
	FetchRegionName(ctx context.Context, regionID int64) (string, error)
}

// PriceCatalog tabla de precios de mercado por type_id. Una implementación
// puede cachear con expiración acotada: la staleness de precios es aceptable.
// Ante fallo de fetch devuelve el mapa vacío, no error duro.
type PriceCatalog interface {
	Prices(ctx context.Context) (map[int64]decimal.Decimal, error)
}

// TokenProvider colaborador externo que entrega una credencial válida por
// corporación. Sin credencial utilizable devuelve domain.ErrCredentialUnavailable.
type TokenProvider interface {
	TokenFor(ctx context.Context, corporationID int64) (string, error)
}

// Lease lease de sincronización en curso; Release lo libera antes de expirar.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker exclusión mutua por corporación: un segundo sync de la misma
// corporación no debe arrancar mientras hay uno en vuelo. El TTL acota el
// lease para que un worker caído no bloquee syncs futuros indefinidamente.
// Con el lease ya tomado devuelve domain.ErrSyncInProgress.
type Locker interface {
	Obtain(ctx context.Context, corporationID int64, ttl time.Duration) (Lease, error)
}

// AlertDispatcher consume las transacciones recién producidas por un ciclo.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, corporationID int64) error
}

// TxRunner ejecuta fn dentro de una transacción de BD, con los repositorios
// atados a esa tx. Es la única frontera transaccional del ciclo: o toda la
// transición de estado es visible, o nada de ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.HangarItemRepository,
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
	) error) error
}
