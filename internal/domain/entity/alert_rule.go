package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de alerta configurables.
const (
	AlertItemAdded      = "ITEM_ADDED"
	AlertItemRemoved    = "ITEM_REMOVED"
	AlertValueThreshold = "VALUE_THRESHOLD"
	AlertQuantityChange = "QUANTITY_CHANGE"
)

// AlertRule predicado definido por el usuario, evaluado contra las
// transacciones recién producidas por un ciclo.
type AlertRule struct {
	ID                int64
	CorporationID     int64
	Name              string
	AlertType         string
	TypeID            *int64 // filtro opcional por tipo de item
	DivisionID        *int64 // filtro opcional por división
	ValueThreshold    *decimal.Decimal
	QuantityThreshold *int64
	WebhookURL        string // destino de la notificación
	IsActive          bool
	CreatedAt         time.Time
}

// Matches evalúa la regla contra una transacción: tipo de alerta, filtros
// opcionales de type_id y división, umbral de valor (valor >= umbral) y
// umbral de cantidad (|delta| >= umbral).
func (r *AlertRule) Matches(tx *HangarTransaction) bool {
	switch r.AlertType {
	case AlertItemAdded:
		if tx.TransactionType != TransactionADD {
			return false
		}
	case AlertItemRemoved:
		if tx.TransactionType != TransactionREMOVE {
			return false
		}
	case AlertValueThreshold, AlertQuantityChange:
		// sin restricción por tipo de transacción
	default:
		return false
	}

	if r.TypeID != nil && *r.TypeID != tx.TypeID {
		return false
	}
	if r.DivisionID != nil {
		if tx.DivisionID == nil || *tx.DivisionID != *r.DivisionID {
			return false
		}
	}
	if r.ValueThreshold != nil && tx.EstimatedValue.LessThan(*r.ValueThreshold) {
		return false
	}
	if r.QuantityThreshold != nil {
		delta := tx.QuantityChange
		if delta < 0 {
			delta = -delta
		}
		if delta < *r.QuantityThreshold {
			return false
		}
	}
	return true
}
