package repository

import (
	"time"

	"github.com/evetrack/corphangar/internal/domain/entity"
)

// TransactionRepository puerto para el log append-only de transacciones.
type TransactionRepository interface {
	BulkCreate(txs []*entity.HangarTransaction) error
	ListByCorporation(corporationID int64, limit int) ([]*entity.HangarTransaction, error)
	// ListUnnotifiedSince transacciones sin notificar detectadas desde `since` (para el despachador de alertas).
	ListUnnotifiedSince(corporationID int64, since time.Time) ([]*entity.HangarTransaction, error)
	// MarkNotified marca notification_sent; se invoca exactamente una vez por transacción.
	MarkNotified(ids []int64) error
	// DeleteOlderThan poda de retención: borra transacciones anteriores al corte.
	DeleteOlderThan(corporationID int64, cutoff time.Time) (int64, error)
}
