package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// HangarItem un item presente (o históricamente presente) en el hangar.
// Invariante: exactamente una fila por item_id remoto; IsActive == true sii
// el item apareció en la última sincronización exitosa.
type HangarItem struct {
	ID              int64
	CorporationID   int64
	ItemID          int64
	TypeID          int64
	TypeName        string
	LocationID      int64
	DivisionID      *int64 // FK a HangarDivision.ID; nil si el flag no mapea a una división conocida
	Quantity        int64
	EstimatedValue  decimal.Decimal
	IsSingleton     bool
	IsBlueprintCopy bool
	IsActive        bool
	FirstSeen       time.Time
	LastSeen        time.Time
}
