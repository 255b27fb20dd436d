package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/domain/entity"
)

// CorporationRepository puerto para las corporaciones rastreadas.
type CorporationRepository interface {
	GetByID(corporationID int64) (*entity.Corporation, error)
	ListTrackingEnabled() ([]*entity.Corporation, error)
	Create(corp *entity.Corporation) error
	// UpdateLastSync avanza la marca de última sincronización exitosa.
	UpdateLastSync(corporationID int64, at time.Time) error
	// UpdateWalletBalance actualiza el balance maestro (best-effort, fuera de la transacción del ciclo).
	UpdateWalletBalance(corporationID int64, balance decimal.Decimal) error
	SetTracking(corporationID int64, enabled bool) error
}
