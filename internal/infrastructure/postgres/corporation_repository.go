package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.CorporationRepository = (*CorporationRepo)(nil)

// CorporationRepo implementación sobre PostgreSQL (usable con pool o tx).
type CorporationRepo struct {
	q Querier
}

// NewCorporationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCorporationRepository(q Querier) *CorporationRepo {
	return &CorporationRepo{q: q}
}

const corporationColumns = `corporation_id, corporation_name, tracking_enabled, wallet_balance, last_sync, created_at, updated_at`

func scanCorporation(row pgx.Row) (*entity.Corporation, error) {
	var c entity.Corporation
	err := row.Scan(
		&c.CorporationID, &c.CorporationName, &c.TrackingEnabled,
		&c.WalletBalance, &c.LastSync, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID obtiene una corporación por su ID remoto.
func (r *CorporationRepo) GetByID(corporationID int64) (*entity.Corporation, error) {
	query := `SELECT ` + corporationColumns + ` FROM corporations WHERE corporation_id = $1`
	corp, err := scanCorporation(r.q.QueryRow(context.Background(), query, corporationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get corporation: %w", err)
	}
	return corp, nil
}

// ListTrackingEnabled devuelve las corporaciones con tracking habilitado.
func (r *CorporationRepo) ListTrackingEnabled() ([]*entity.Corporation, error) {
	query := `SELECT ` + corporationColumns + ` FROM corporations WHERE tracking_enabled ORDER BY corporation_name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list corporations: %w", err)
	}
	defer rows.Close()

	var corps []*entity.Corporation
	for rows.Next() {
		c, err := scanCorporation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan corporation: %w", err)
		}
		corps = append(corps, c)
	}
	return corps, rows.Err()
}

// Create registra una corporación a rastrear.
func (r *CorporationRepo) Create(corp *entity.Corporation) error {
	query := `
		INSERT INTO corporations (corporation_id, corporation_name, tracking_enabled, wallet_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		corp.CorporationID, corp.CorporationName, corp.TrackingEnabled, corp.WalletBalance,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create corporation: %w", err)
	}
	return nil
}

// UpdateLastSync avanza la marca de última sincronización exitosa.
func (r *CorporationRepo) UpdateLastSync(corporationID int64, at time.Time) error {
	query := `UPDATE corporations SET last_sync = $2, updated_at = now() WHERE corporation_id = $1`
	_, err := r.q.Exec(context.Background(), query, corporationID, at)
	if err != nil {
		return fmt.Errorf("update last_sync: %w", err)
	}
	return nil
}

// UpdateWalletBalance actualiza el balance maestro (best-effort).
func (r *CorporationRepo) UpdateWalletBalance(corporationID int64, balance decimal.Decimal) error {
	query := `UPDATE corporations SET wallet_balance = $2, updated_at = now() WHERE corporation_id = $1`
	_, err := r.q.Exec(context.Background(), query, corporationID, balance)
	if err != nil {
		return fmt.Errorf("update wallet_balance: %w", err)
	}
	return nil
}

// SetTracking habilita o deshabilita el tracking.
func (r *CorporationRepo) SetTracking(corporationID int64, enabled bool) error {
	query := `UPDATE corporations SET tracking_enabled = $2, updated_at = now() WHERE corporation_id = $1`
	tag, err := r.q.Exec(context.Background(), query, corporationID, enabled)
	if err != nil {
		return fmt.Errorf("set tracking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
