package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción detectada por el clasificador de diffs.
const (
	TransactionADD    = "ADD"
	TransactionREMOVE = "REMOVE"
	TransactionCHANGE = "CHANGE"
)

// HangarTransaction registro inmutable (append-only) de una transición detectada.
// Nunca se actualiza, salvo NotificationSent, que el despachador de alertas
// muta exactamente una vez.
type HangarTransaction struct {
	ID               int64
	CorporationID    int64
	TransactionType  string // ADD, REMOVE, CHANGE
	TypeID           int64
	TypeName         string
	OldQuantity      int64
	NewQuantity      int64
	QuantityChange   int64 // delta con signo
	LocationID       int64
	DivisionID       *int64
	EstimatedValue   decimal.Decimal
	CharacterID      *int64 // actor, si es atribuible (no derivable del diff; queda nil)
	CharacterName    string
	DetectedAt       time.Time
	NotificationSent bool
}
