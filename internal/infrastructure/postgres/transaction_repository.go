package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación sobre PostgreSQL (usable con pool o tx).
// El log de transacciones es append-only: solo notification_sent se muta.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, corporation_id, transaction_type, type_id, type_name,
       old_quantity, new_quantity, quantity_change, location_id, division_id,
       estimated_value, character_id, character_name, detected_at, notification_sent`

// BulkCreate inserta las transacciones del ciclo en un solo batch.
func (r *TransactionRepo) BulkCreate(txs []*entity.HangarTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	query := `
		INSERT INTO hangar_transactions (corporation_id, transaction_type, type_id, type_name,
		                                 old_quantity, new_quantity, quantity_change, location_id, division_id,
		                                 estimated_value, character_id, character_name, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(query,
			t.CorporationID, t.TransactionType, t.TypeID, t.TypeName,
			t.OldQuantity, t.NewQuantity, t.QuantityChange, t.LocationID, t.DivisionID,
			t.EstimatedValue, t.CharacterID, t.CharacterName, t.DetectedAt,
		)
	}
	br := r.q.SendBatch(context.Background(), batch)
	defer br.Close()
	for range txs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("bulk create transactions: %w", err)
		}
	}
	return nil
}

func (r *TransactionRepo) list(query string, args ...any) ([]*entity.HangarTransaction, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*entity.HangarTransaction
	for rows.Next() {
		var t entity.HangarTransaction
		err := rows.Scan(
			&t.ID, &t.CorporationID, &t.TransactionType, &t.TypeID, &t.TypeName,
			&t.OldQuantity, &t.NewQuantity, &t.QuantityChange, &t.LocationID, &t.DivisionID,
			&t.EstimatedValue, &t.CharacterID, &t.CharacterName, &t.DetectedAt, &t.NotificationSent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

// ListByCorporation transacciones más recientes primero.
func (r *TransactionRepo) ListByCorporation(corporationID int64, limit int) ([]*entity.HangarTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + transactionColumns + `
		FROM hangar_transactions WHERE corporation_id = $1
		ORDER BY detected_at DESC LIMIT $2`
	return r.list(query, corporationID, limit)
}

// ListUnnotifiedSince transacciones sin notificar detectadas desde `since`.
func (r *TransactionRepo) ListUnnotifiedSince(corporationID int64, since time.Time) ([]*entity.HangarTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM hangar_transactions
		WHERE corporation_id = $1 AND detected_at >= $2 AND NOT notification_sent
		ORDER BY detected_at`
	return r.list(query, corporationID, since)
}

// MarkNotified marca notification_sent en las transacciones dadas.
func (r *TransactionRepo) MarkNotified(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE hangar_transactions SET notification_sent = true WHERE id = ANY($1)`
	_, err := r.q.Exec(context.Background(), query, ids)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// DeleteOlderThan borra transacciones anteriores al corte (retención).
func (r *TransactionRepo) DeleteOlderThan(corporationID int64, cutoff time.Time) (int64, error) {
	query := `DELETE FROM hangar_transactions WHERE corporation_id = $1 AND detected_at < $2`
	tag, err := r.q.Exec(context.Background(), query, corporationID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}
