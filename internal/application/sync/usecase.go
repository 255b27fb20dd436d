package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/evetrack/corphangar/internal/application/dto"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/inventory"
	"github.com/evetrack/corphangar/internal/domain/repository"
	"github.com/evetrack/corphangar/pkg/logger"
)

// Options parámetros del orquestador.
type Options struct {
	LockTTL       time.Duration // lease por corporación; acotado para que un worker caído no bloquee
	RetryAttempts int           // reintentos acotados del fetch de assets
	RetryBackoff  time.Duration // backoff base entre reintentos (lineal)
	MaxParallel   int           // corporaciones sincronizadas en paralelo en SyncAll
	PrefetchLimit int           // lookups de metadata concurrentes dentro de un ciclo
}

func (o Options) withDefaults() Options {
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Minute
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = 4
	}
	if o.PrefetchLimit <= 0 {
		o.PrefetchLimit = 8
	}
	return o
}

// UseCase orquesta el ciclo de sincronización por corporación: credencial,
// lease, fetch, resolución de metadata, reconciliación atómica, wallet
// best-effort y despacho de alertas.
type UseCase struct {
	corpRepo  repository.CorporationRepository
	divRepo   repository.DivisionRepository
	locRepo   repository.LocationRepository
	itemRepo  repository.HangarItemRepository
	logRepo   repository.ContainerLogRepository
	alertRepo repository.AlertRuleRepository
	txRunner  TxRunner

	source     InventorySource
	tokens     TokenProvider
	prices     PriceCatalog
	locker     Locker
	dispatcher AlertDispatcher

	opts Options
	log  *logger.Logger
}

// NewUseCase construye el orquestador.
func NewUseCase(
	corpRepo repository.CorporationRepository,
	divRepo repository.DivisionRepository,
	locRepo repository.LocationRepository,
	itemRepo repository.HangarItemRepository,
	logRepo repository.ContainerLogRepository,
	alertRepo repository.AlertRuleRepository,
	txRunner TxRunner,
	source InventorySource,
	tokens TokenProvider,
	prices PriceCatalog,
	locker Locker,
	dispatcher AlertDispatcher,
	opts Options,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		corpRepo:   corpRepo,
		divRepo:    divRepo,
		locRepo:    locRepo,
		itemRepo:   itemRepo,
		logRepo:    logRepo,
		alertRepo:  alertRepo,
		txRunner:   txRunner,
		source:     source,
		tokens:     tokens,
		prices:     prices,
		locker:     locker,
		dispatcher: dispatcher,
		opts:       opts.withDefaults(),
		log:        log,
	}
}

// SyncAll despacha un ciclo independiente por cada corporación con tracking
// habilitado. Los ciclos corren en paralelo acotado; el fallo de una
// corporación nunca afecta a las demás.
func (uc *UseCase) SyncAll(ctx context.Context) (*dto.SyncSummary, error) {
	corps, err := uc.corpRepo.ListTrackingEnabled()
	if err != nil {
		return nil, fmt.Errorf("listar corporaciones: %w", err)
	}
	if len(corps) == 0 {
		uc.log.Warn().Msg("no hay corporaciones con tracking habilitado")
		return &dto.SyncSummary{}, nil
	}

	summary := &dto.SyncSummary{Dispatched: len(corps)}
	var mu gosync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.MaxParallel)
	for _, corp := range corps {
		corp := corp
		g.Go(func() error {
			res := uc.syncOne(gctx, corp.CorporationID)
			mu.Lock()
			summary.Results = append(summary.Results, *res)
			switch res.Status {
			case dto.SyncStatusSuccess:
				summary.Succeeded++
			case dto.SyncStatusSkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return summary, nil
}

// SyncCorporation ejecuta el ciclo de una corporación y devuelve su resultado.
func (uc *UseCase) SyncCorporation(ctx context.Context, corporationID int64) (*dto.SyncResult, error) {
	res := uc.syncOne(ctx, corporationID)
	if res.Status == dto.SyncStatusError {
		return res, errors.New(res.Message)
	}
	return res, nil
}

func (uc *UseCase) syncOne(ctx context.Context, corporationID int64) *dto.SyncResult {
	runID := uuid.New().String()
	res := &dto.SyncResult{RunID: runID, CorporationID: corporationID}
	log := uc.log.With().Str("run_id", runID).Int64("corporation_id", corporationID).Logger()

	corp, err := uc.corpRepo.GetByID(corporationID)
	if err != nil {
		res.Status = dto.SyncStatusError
		res.Message = fmt.Sprintf("corporación %d: %v", corporationID, err)
		log.Error().Err(err).Msg("corporación no encontrada")
		return res
	}
	if !corp.TrackingEnabled {
		res.Status = dto.SyncStatusSkipped
		res.Message = "tracking deshabilitado"
		return res
	}

	token, err := uc.tokens.TokenFor(ctx, corporationID)
	if err != nil {
		res.Status = dto.SyncStatusError
		res.Message = domain.ErrCredentialUnavailable.Error()
		log.Error().Err(err).Msg("sin credencial válida")
		return res
	}

	// Exclusión mutua por corporación: dos ciclos concurrentes calcularían el
	// diff contra el mismo conjunto activo previo y duplicarían ADD/REMOVE.
	lease, err := uc.locker.Obtain(ctx, corporationID, uc.opts.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrSyncInProgress) {
			res.Status = dto.SyncStatusSkipped
			res.Message = "sincronización en curso"
			log.Info().Msg("lease tomado por otro worker; ciclo omitido")
			return res
		}
		res.Status = dto.SyncStatusError
		res.Message = fmt.Sprintf("obtener lease: %v", err)
		return res
	}
	defer func() { _ = lease.Release(context.WithoutCancel(ctx)) }()

	log.Info().Str("corporation", corp.CorporationName).Msg("iniciando ciclo de sincronización")

	if err := uc.syncDivisions(ctx, corporationID, token); err != nil {
		// No fatal: se sigue con las divisiones ya conocidas.
		log.Warn().Err(err).Msg("no se pudieron refrescar las divisiones")
	}

	assets, err := uc.fetchAssetsWithRetry(ctx, corporationID, token)
	if err != nil {
		res.Status = dto.SyncStatusError
		res.Message = domain.ErrSourceUnreachable.Error()
		log.Error().Err(err).Msg("fetch de assets falló; estado persistido intacto")
		return res
	}

	prices, err := uc.prices.Prices(ctx)
	if err != nil {
		// Precio por defecto 0: staleness o ausencia de precios no aborta el ciclo.
		log.Warn().Err(err).Msg("tabla de precios no disponible; valuación en 0")
		prices = map[int64]decimal.Decimal{}
	}

	resolved, err := uc.resolveAssets(ctx, corporationID, token, assets, prices, &log)
	if err != nil {
		res.Status = dto.SyncStatusError
		res.Message = err.Error()
		return res
	}

	now := time.Now().UTC()
	var cs *ChangeSet
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.HangarItemRepository,
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
	) error {
		// El conjunto activo previo se captura dentro de la transacción,
		// antes de mutar nada.
		previous, err := itemRepo.ListActiveByCorporation(corporationID)
		if err != nil {
			return err
		}
		cs, err = BuildChangeSet(corporationID, previous, resolved, now)
		if err != nil {
			return err
		}
		if err := itemRepo.BulkUpsert(cs.Upserts); err != nil {
			return err
		}
		if err := itemRepo.Deactivate(corporationID, cs.RemovedIDs, now); err != nil {
			return err
		}
		if err := txRepo.BulkCreate(cs.Transactions); err != nil {
			return err
		}
		return snapRepo.Create(&entity.HangarSnapshot{
			CorporationID: corporationID,
			SnapshotTime:  now,
			TotalItems:    cs.ActiveCount,
			TotalValue:    cs.TotalValue,
		})
	})
	if err != nil {
		res.Status = dto.SyncStatusError
		res.Message = err.Error()
		if errors.Is(err, domain.ErrConsistencyViolation) {
			log.Error().Err(err).Msg("violación de consistencia; ciclo revertido, escalar para investigación")
		} else {
			log.Error().Err(err).Msg("reconciliación falló; transacción revertida")
		}
		return res
	}

	// Wallet: best-effort, nunca revierte la reconciliación ya commiteada.
	uc.syncWallet(ctx, corporationID, token, &log)

	if err := uc.corpRepo.UpdateLastSync(corporationID, now); err != nil {
		log.Warn().Err(err).Msg("no se pudo avanzar last_sync")
	}

	// Logs de contenedores: best-effort (requiere scope adicional).
	uc.syncContainerLogs(ctx, corporationID, token, &log)

	// Despachar alertas solo si hay reglas activas que evaluar.
	if ok, err := uc.alertRepo.HasActive(corporationID); err == nil && ok {
		if err := uc.dispatcher.Dispatch(ctx, corporationID); err != nil {
			log.Warn().Err(err).Msg("despacho de alertas falló")
		}
	}

	res.Status = dto.SyncStatusSuccess
	res.ItemsProcessed = cs.ActiveCount
	for _, tx := range cs.Transactions {
		switch tx.TransactionType {
		case entity.TransactionADD:
			res.Added++
		case entity.TransactionREMOVE:
			res.Removed++
		case entity.TransactionCHANGE:
			res.Changed++
		}
	}
	log.Info().
		Int("items", res.ItemsProcessed).
		Int("added", res.Added).
		Int("removed", res.Removed).
		Int("changed", res.Changed).
		Msg("ciclo completado")
	return res
}

// resolveAssets filtra los assets a slots de hangar, resuelve ubicación,
// división, nombre de tipo y precio. Un asset cuya metadata no se puede
// resolver se omite y se loguea; no aborta el ciclo para el resto.
func (uc *UseCase) resolveAssets(
	ctx context.Context,
	corporationID int64,
	token string,
	assets []*entity.AssetRecord,
	prices map[int64]decimal.Decimal,
	log *zerolog.Logger,
) ([]ResolvedAsset, error) {
	graph := make(map[int64]*entity.AssetRecord, len(assets))
	for _, a := range assets {
		graph[a.ItemID] = a
	}

	type hangarAsset struct {
		rec  *entity.AssetRecord
		flag entity.LocationFlag
	}
	var hangar []hangarAsset
	for _, a := range assets {
		flag := entity.ParseLocationFlag(a.LocationFlag)
		if flag.Kind == entity.FlagHangar {
			hangar = append(hangar, hangarAsset{rec: a, flag: flag})
		}
	}
	log.Info().Int("total", len(assets)).Int("hangar", len(hangar)).Msg("assets filtrados a slots de hangar")

	stationByItem := make(map[int64]int64, len(hangar))
	uniqueLocations := make(map[int64]struct{})
	uniqueTypes := make(map[int64]struct{})
	for _, h := range hangar {
		stationID := inventory.ResolveStationID(h.rec.ItemID, graph)
		stationByItem[h.rec.ItemID] = stationID
		uniqueLocations[stationID] = struct{}{}
		uniqueTypes[h.rec.TypeID] = struct{}{}
	}

	divisions, err := uc.divRepo.ListByCorporation(corporationID)
	if err != nil {
		return nil, fmt.Errorf("listar divisiones: %w", err)
	}
	divisionByOrdinal := make(map[int]int64, len(divisions))
	for _, d := range divisions {
		divisionByOrdinal[d.DivisionID] = d.ID
	}

	locCache := NewLocationCache(uc.locRepo, uc.source, token)
	typeCache := NewTypeNameCache(uc.itemRepo, uc.source)
	typeIDs := make([]int64, 0, len(uniqueTypes))
	for id := range uniqueTypes {
		typeIDs = append(typeIDs, id)
	}
	if err := typeCache.Prime(typeIDs); err != nil {
		return nil, fmt.Errorf("precargar nombres de tipo: %w", err)
	}

	// Prefetch concurrente de ubicaciones: cada lookup es independiente e
	// idempotente dentro del ciclo.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.PrefetchLimit)
	for locID := range uniqueLocations {
		locID := locID
		g.Go(func() error {
			if _, err := locCache.Get(gctx, locID); err != nil {
				log.Warn().Err(err).Int64("location_id", locID).Msg("ubicación no resoluble")
			}
			return nil
		})
	}
	_ = g.Wait()

	resolved := make([]ResolvedAsset, 0, len(hangar))
	for _, h := range hangar {
		stationID := stationByItem[h.rec.ItemID]
		loc, err := locCache.Get(ctx, stationID)
		if err != nil || loc == nil {
			log.Warn().Int64("item_id", h.rec.ItemID).Int64("resolved_id", stationID).
				Msg("asset omitido: sin ubicación resoluble")
			continue
		}

		var divisionID *int64
		if id, ok := divisionByOrdinal[h.flag.Division]; ok {
			divisionID = &id
		}

		unitPrice, ok := prices[h.rec.TypeID]
		if !ok {
			unitPrice = decimal.Zero
		}

		resolved = append(resolved, ResolvedAsset{
			ItemID:          h.rec.ItemID,
			TypeID:          h.rec.TypeID,
			TypeName:        typeCache.Get(ctx, h.rec.TypeID),
			Quantity:        h.rec.Quantity,
			LocationID:      loc.LocationID,
			DivisionID:      divisionID,
			UnitPrice:       unitPrice,
			IsSingleton:     h.rec.IsSingleton,
			IsBlueprintCopy: h.rec.IsBlueprintCopy,
		})
	}
	return resolved, nil
}

func (uc *UseCase) syncDivisions(ctx context.Context, corporationID int64, token string) error {
	divisions, err := uc.source.FetchDivisions(ctx, corporationID, token)
	if err != nil {
		return err
	}
	for _, d := range divisions {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("Division %d", d.Division)
		}
		if err := uc.divRepo.Upsert(&entity.HangarDivision{
			CorporationID: corporationID,
			DivisionID:    d.Division,
			DivisionName:  name,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (uc *UseCase) syncWallet(ctx context.Context, corporationID int64, token string, log *zerolog.Logger) {
	wallets, err := uc.source.FetchWallets(ctx, corporationID, token)
	if err != nil || len(wallets) == 0 {
		log.Warn().Err(err).Msg("wallet no sincronizada")
		return
	}
	master := wallets[0]
	for _, w := range wallets {
		if w.Division == 1 {
			master = w
			break
		}
	}
	if err := uc.corpRepo.UpdateWalletBalance(corporationID, master.Balance); err != nil {
		log.Warn().Err(err).Msg("no se pudo guardar el balance de wallet")
	}
}

func (uc *UseCase) fetchAssetsWithRetry(ctx context.Context, corporationID int64, token string) ([]*entity.AssetRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= uc.opts.RetryAttempts; attempt++ {
		assets, err := uc.source.FetchAssets(ctx, corporationID, token)
		if err == nil {
			return assets, nil
		}
		lastErr = err
		if attempt == uc.opts.RetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(uc.opts.RetryBackoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}
