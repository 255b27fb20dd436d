package postgres

import (
	"context"
	"fmt"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

var _ repository.AlertRuleRepository = (*AlertRuleRepo)(nil)

// AlertRuleRepo implementación sobre PostgreSQL (usable con pool o tx).
type AlertRuleRepo struct {
	q Querier
}

// NewAlertRuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRuleRepository(q Querier) *AlertRuleRepo {
	return &AlertRuleRepo{q: q}
}

// ListActive devuelve las reglas activas de la corporación.
func (r *AlertRuleRepo) ListActive(corporationID int64) ([]*entity.AlertRule, error) {
	query := `
		SELECT id, corporation_id, name, alert_type, type_id, division_id,
		       value_threshold, quantity_threshold, webhook_url, is_active, created_at
		FROM alert_rules WHERE corporation_id = $1 AND is_active
		ORDER BY name`
	rows, err := r.q.Query(context.Background(), query, corporationID)
	if err != nil {
		return nil, fmt.Errorf("list alert rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.AlertRule
	for rows.Next() {
		var rule entity.AlertRule
		err := rows.Scan(
			&rule.ID, &rule.CorporationID, &rule.Name, &rule.AlertType,
			&rule.TypeID, &rule.DivisionID, &rule.ValueThreshold, &rule.QuantityThreshold,
			&rule.WebhookURL, &rule.IsActive, &rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

// HasActive indica si la corporación tiene al menos una regla activa.
func (r *AlertRuleRepo) HasActive(corporationID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM alert_rules WHERE corporation_id = $1 AND is_active)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, corporationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has active rules: %w", err)
	}
	return exists, nil
}

// Create persiste una regla de alerta.
func (r *AlertRuleRepo) Create(rule *entity.AlertRule) error {
	query := `
		INSERT INTO alert_rules (corporation_id, name, alert_type, type_id, division_id,
		                         value_threshold, quantity_threshold, webhook_url, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`
	_, err := r.q.Exec(context.Background(), query,
		rule.CorporationID, rule.Name, rule.AlertType, rule.TypeID, rule.DivisionID,
		rule.ValueThreshold, rule.QuantityThreshold, rule.WebhookURL, rule.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create alert rule: %w", err)
	}
	return nil
}
