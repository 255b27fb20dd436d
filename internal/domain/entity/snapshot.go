package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// HangarSnapshot resumen agregado de un ciclo de sincronización exitoso.
// Solo guarda totales: un diseño anterior que embebía la lista completa de
// items crecía sin límite y fue abandonado.
type HangarSnapshot struct {
	ID            int64
	CorporationID int64
	SnapshotTime  time.Time
	TotalItems    int
	TotalValue    decimal.Decimal
}
