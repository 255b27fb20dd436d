package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/evetrack/corphangar/internal/application/dto"
	"github.com/evetrack/corphangar/internal/domain/repository"
	"github.com/evetrack/corphangar/pkg/logger"
)

// Options política de retención. El log de transacciones crece sin límite si
// no se poda externamente; esta es la tarea de housekeeping recomendada.
type Options struct {
	KeepSnapshots        int           // snapshots más recientes a conservar por corporación
	TransactionRetention time.Duration // horizonte de edad para las transacciones
}

func (o Options) withDefaults() Options {
	if o.KeepSnapshots <= 0 {
		o.KeepSnapshots = 48
	}
	if o.TransactionRetention <= 0 {
		o.TransactionRetention = 90 * 24 * time.Hour
	}
	return o
}

// CleanupUseCase poda snapshots y transacciones viejas para cada corporación rastreada.
type CleanupUseCase struct {
	corpRepo repository.CorporationRepository
	snapRepo repository.SnapshotRepository
	txRepo   repository.TransactionRepository
	opts     Options
	log      *logger.Logger
}

// NewCleanupUseCase construye la tarea de retención.
func NewCleanupUseCase(
	corpRepo repository.CorporationRepository,
	snapRepo repository.SnapshotRepository,
	txRepo repository.TransactionRepository,
	opts Options,
	log *logger.Logger,
) *CleanupUseCase {
	return &CleanupUseCase{
		corpRepo: corpRepo,
		snapRepo: snapRepo,
		txRepo:   txRepo,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Run aplica la política de retención a todas las corporaciones con tracking habilitado.
func (uc *CleanupUseCase) Run(ctx context.Context) (*dto.CleanupResult, error) {
	corps, err := uc.corpRepo.ListTrackingEnabled()
	if err != nil {
		return nil, fmt.Errorf("listar corporaciones: %w", err)
	}

	res := &dto.CleanupResult{}
	cutoff := time.Now().UTC().Add(-uc.opts.TransactionRetention)
	for _, corp := range corps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		snaps, err := uc.snapRepo.PruneKeepLatest(corp.CorporationID, uc.opts.KeepSnapshots)
		if err != nil {
			uc.log.Warn().Err(err).Int64("corporation_id", corp.CorporationID).Msg("poda de snapshots falló")
		}
		res.SnapshotsDeleted += snaps

		txs, err := uc.txRepo.DeleteOlderThan(corp.CorporationID, cutoff)
		if err != nil {
			uc.log.Warn().Err(err).Int64("corporation_id", corp.CorporationID).Msg("poda de transacciones falló")
		}
		res.TransactionsDeleted += txs
	}

	uc.log.Info().
		Int64("snapshots_deleted", res.SnapshotsDeleted).
		Int64("transactions_deleted", res.TransactionsDeleted).
		Msg("retención aplicada")
	return res, nil
}
