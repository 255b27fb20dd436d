package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
	"github.com/evetrack/corphangar/pkg/logger"
)

// Notifier colaborador externo que entrega una alerta a sus destinatarios.
type Notifier interface {
	Notify(ctx context.Context, rule *entity.AlertRule, tx *entity.HangarTransaction) error
}

// UseCase evalúa las reglas de alerta activas contra las transacciones recién
// producidas y marca notification_sent exactamente una vez por transacción,
// aunque varias reglas hayan coincidido.
type UseCase struct {
	ruleRepo repository.AlertRuleRepository
	txRepo   repository.TransactionRepository
	notifier Notifier
	window   time.Duration // ventana hacia atrás de transacciones a considerar
	log      *logger.Logger
}

// NewUseCase construye el despachador. window <= 0 usa 5 minutos.
func NewUseCase(
	ruleRepo repository.AlertRuleRepository,
	txRepo repository.TransactionRepository,
	notifier Notifier,
	window time.Duration,
	log *logger.Logger,
) *UseCase {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &UseCase{ruleRepo: ruleRepo, txRepo: txRepo, notifier: notifier, window: window, log: log}
}

// Dispatch evalúa cada regla activa contra cada transacción sin notificar de
// la ventana reciente. Un fallo de entrega de una notificación no marca la
// transacción, para que el próximo despacho la reintente.
func (uc *UseCase) Dispatch(ctx context.Context, corporationID int64) error {
	rules, err := uc.ruleRepo.ListActive(corporationID)
	if err != nil {
		return fmt.Errorf("listar reglas: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	since := time.Now().UTC().Add(-uc.window)
	txs, err := uc.txRepo.ListUnnotifiedSince(corporationID, since)
	if err != nil {
		return fmt.Errorf("listar transacciones sin notificar: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}

	var notified []int64
	for _, tx := range txs {
		delivered := false
		failed := false
		for _, rule := range rules {
			if !rule.Matches(tx) {
				continue
			}
			if err := uc.notifier.Notify(ctx, rule, tx); err != nil {
				failed = true
				uc.log.Warn().Err(err).
					Int64("rule_id", rule.ID).
					Int64("transaction_id", tx.ID).
					Msg("entrega de alerta falló")
				continue
			}
			delivered = true
			uc.log.Info().
				Str("rule", rule.Name).
				Str("type", tx.TransactionType).
				Int64("transaction_id", tx.ID).
				Msg("alerta disparada")
		}
		if delivered && !failed {
			notified = append(notified, tx.ID)
		}
	}

	if len(notified) > 0 {
		if err := uc.txRepo.MarkNotified(notified); err != nil {
			return fmt.Errorf("marcar notificadas: %w", err)
		}
	}
	return nil
}
