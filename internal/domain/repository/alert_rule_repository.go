package repository

import "github.com/evetrack/corphangar/internal/domain/entity"

// AlertRuleRepository puerto para las reglas de alerta.
type AlertRuleRepository interface {
	ListActive(corporationID int64) ([]*entity.AlertRule, error)
	// HasActive permite al orquestador evitar despachar la evaluación cuando no hay reglas.
	HasActive(corporationID int64) (bool, error)
	Create(rule *entity.AlertRule) error
}
