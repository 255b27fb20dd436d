package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Corporation representa una corporación cuyo hangar se está rastreando.
// Se crea en el primer descubrimiento o por registro manual; nunca se borra automáticamente.
type Corporation struct {
	CorporationID   int64
	CorporationName string
	TrackingEnabled bool
	WalletBalance   decimal.Decimal // balance maestro (división 1), best-effort
	LastSync        *time.Time      // última sincronización exitosa; señal de salud del sync
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
