package sync_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evetrack/corphangar/internal/application/dto"
	appsync "github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/pkg/logger"
)

// harness agrupa el orquestador con todos sus fakes para inspección post-ciclo.
type harness struct {
	uc         *appsync.UseCase
	corpRepo   *fakeCorpRepo
	itemRepo   *fakeItemRepo
	txRepo     *fakeTxRepo
	snapRepo   *fakeSnapRepo
	alertRepo  *fakeAlertRepo
	logRepo    *fakeContainerLogRepo
	source     *fakeSource
	tokens     *fakeTokens
	locker     *fakeLocker
	dispatcher *fakeDispatcher
	runner     *fakeTxRunner
}

func newHarness(t *testing.T, items ...*entity.HangarItem) *harness {
	t.Helper()

	h := &harness{
		corpRepo: newFakeCorpRepo(&entity.Corporation{
			CorporationID:   testCorpID,
			CorporationName: "Test Corp",
			TrackingEnabled: true,
		}),
		itemRepo:   newFakeItemRepo(items...),
		txRepo:     &fakeTxRepo{},
		snapRepo:   &fakeSnapRepo{},
		alertRepo:  &fakeAlertRepo{},
		logRepo:    &fakeContainerLogRepo{},
		source:     newFakeSource(),
		tokens:     &fakeTokens{token: "test-token"},
		locker:     &fakeLocker{},
		dispatcher: &fakeDispatcher{},
	}
	h.runner = &fakeTxRunner{itemRepo: h.itemRepo, txRepo: h.txRepo, snapRepo: h.snapRepo}

	h.source.divisions = []appsync.DivisionInfo{{Division: 1, Name: "Main Hangar"}}
	h.source.stations[60003760] = &appsync.LocationInfo{Name: "Jita IV - Moon 4", SolarSystemID: 30000142}
	h.source.typeNames[34] = "Tritanium"
	h.source.typeNames[35] = "Pyerite"

	h.uc = appsync.NewUseCase(
		h.corpRepo, &fakeDivRepo{}, newFakeLocationRepo(), h.itemRepo, h.logRepo, h.alertRepo,
		h.runner, h.source, h.tokens,
		&fakePrices{prices: map[int64]decimal.Decimal{34: decimal.NewFromInt(4)}},
		h.locker, h.dispatcher,
		appsync.Options{RetryAttempts: 2, RetryBackoff: time.Millisecond},
		logger.Nop(),
	)
	return h
}

func hangarAsset(itemID, typeID, qty int64) *entity.AssetRecord {
	return &entity.AssetRecord{
		ItemID:       itemID,
		TypeID:       typeID,
		Quantity:     qty,
		LocationID:   60003760,
		LocationFlag: "CorpSAG1",
	}
}

func TestSyncCorporation_FirstCycle(t *testing.T) {
	h := newHarness(t)
	h.source.assets = []*entity.AssetRecord{
		hangarAsset(1001, 34, 5),
		hangarAsset(1002, 35, 2),
		// Cargo de una nave: fuera de los slots de hangar, se ignora.
		{ItemID: 1003, TypeID: 587, Quantity: 1, LocationID: 60003760, LocationFlag: "Cargo"},
	}

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)

	assert.Equal(t, dto.SyncStatusSuccess, res.Status)
	assert.Equal(t, 2, res.ItemsProcessed)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 0, res.Removed)

	// Todo el ciclo se aplica en una única transacción.
	assert.Equal(t, 1, h.runner.commits)
	assert.Equal(t, 0, h.runner.rollbacks)

	active, _ := h.itemRepo.ListActiveByCorporation(testCorpID)
	assert.Len(t, active, 2)

	// Snapshot con los agregados del ciclo: 5 × 4 ISK (el tipo 35 no tiene precio).
	require.Len(t, h.snapRepo.snaps, 1)
	assert.Equal(t, 2, h.snapRepo.snaps[0].TotalItems)
	assert.True(t, h.snapRepo.snaps[0].TotalValue.Equal(decimal.NewFromInt(20)))

	// last_sync avanzó y el lease se liberó.
	assert.Contains(t, h.corpRepo.lastSync, testCorpID)
	require.NotNil(t, h.locker.lease)
	assert.True(t, h.locker.lease.released)
}

func TestSyncCorporation_DetectsRemoval(t *testing.T) {
	removed := &entity.HangarItem{
		CorporationID: testCorpID,
		ItemID:        1002,
		TypeID:        35,
		TypeName:      "Pyerite",
		Quantity:      2,
		IsActive:      true,
	}
	h := newHarness(t, removed)
	h.source.assets = []*entity.AssetRecord{hangarAsset(1001, 34, 5)}

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Removed)

	active, _ := h.itemRepo.ListActiveByCorporation(testCorpID)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1001), active[0].ItemID)
}

func TestSyncCorporation_CredentialUnavailable(t *testing.T) {
	h := newHarness(t)
	h.tokens.err = domain.ErrCredentialUnavailable

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.Error(t, err)
	assert.Equal(t, dto.SyncStatusError, res.Status)

	// Sin credencial no se toca la fuente ni el estado persistido.
	assert.Equal(t, 0, h.source.fetchCnt)
	assert.Equal(t, 0, h.runner.commits)
}

func TestSyncCorporation_SourceUnreachableLeavesStateIntact(t *testing.T) {
	existing := &entity.HangarItem{
		CorporationID: testCorpID,
		ItemID:        1001,
		TypeID:        34,
		Quantity:      5,
		IsActive:      true,
	}
	h := newHarness(t, existing)
	h.source.assetsErr = domain.ErrSourceUnreachable

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.Error(t, err)
	assert.Equal(t, dto.SyncStatusError, res.Status)

	// Reintentos acotados, después abandono sin mutar nada.
	assert.Equal(t, 2, h.source.fetchCnt)
	assert.Equal(t, 0, h.runner.commits)
	assert.Empty(t, h.snapRepo.snaps)

	active, _ := h.itemRepo.ListActiveByCorporation(testCorpID)
	assert.Len(t, active, 1, "el conjunto activo previo debe quedar intacto")
}

func TestSyncCorporation_LockHeldSkips(t *testing.T) {
	h := newHarness(t)
	h.locker.held = true

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStatusSkipped, res.Status)
	assert.Equal(t, 0, h.source.fetchCnt)
}

func TestSyncCorporation_TrackingDisabledSkips(t *testing.T) {
	h := newHarness(t)
	h.corpRepo.corps[testCorpID].TrackingEnabled = false

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)
	assert.Equal(t, dto.SyncStatusSkipped, res.Status)
}

func TestSyncCorporation_DuplicateItemIDRollsBack(t *testing.T) {
	h := newHarness(t)
	h.source.assets = []*entity.AssetRecord{
		hangarAsset(1001, 34, 5),
		hangarAsset(1001, 34, 7),
	}

	res, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.Error(t, err)
	assert.Equal(t, dto.SyncStatusError, res.Status)
	assert.Equal(t, 0, h.runner.commits)
	assert.Equal(t, 1, h.runner.rollbacks)
	assert.Empty(t, h.snapRepo.snaps)
}

func TestSyncCorporation_DispatchesAlertsOnlyWithActiveRules(t *testing.T) {
	h := newHarness(t)
	h.source.assets = []*entity.AssetRecord{hangarAsset(1001, 34, 5)}

	_, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)
	assert.Equal(t, 0, h.dispatcher.calls, "sin reglas activas no se despacha")

	h.alertRepo.rules = append(h.alertRepo.rules, &entity.AlertRule{
		CorporationID: testCorpID,
		AlertType:     entity.AlertItemAdded,
		IsActive:      true,
	})
	h.locker.held = false

	_, err = h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)
	assert.Equal(t, 1, h.dispatcher.calls)
}

func TestSyncAll_FailureIsolation(t *testing.T) {
	h := newHarness(t)
	h.corpRepo.corps[98000002] = &entity.Corporation{
		CorporationID:   98000002,
		CorporationName: "Second Corp",
		TrackingEnabled: true,
	}
	h.source.assets = []*entity.AssetRecord{hangarAsset(1001, 34, 5)}

	summary, err := h.uc.SyncAll(context.Background())
	require.NoError(t, err)

	// Ambas corporaciones se despachan; comparten fuente en este harness así
	// que ambas terminan, cada una con su propio resultado.
	assert.Equal(t, 2, summary.Dispatched)
	assert.Len(t, summary.Results, 2)
	assert.Equal(t, 2, summary.Succeeded+summary.Failed+summary.Skipped)
}

func TestSyncCorporation_SyncsMasterWalletBalance(t *testing.T) {
	h := newHarness(t)
	h.source.assets = []*entity.AssetRecord{hangarAsset(1001, 34, 5)}
	h.source.wallets = []appsync.WalletInfo{
		{Division: 2, Balance: decimal.NewFromInt(50)},
		{Division: 1, Balance: decimal.NewFromInt(1000000)},
	}

	_, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)

	// La división 1 es el balance maestro, sin importar el orden del payload.
	assert.True(t, h.corpRepo.wallets[testCorpID].Equal(decimal.NewFromInt(1000000)))
}

func TestSyncCorporation_IngestsContainerLogs(t *testing.T) {
	h := newHarness(t)
	h.source.assets = []*entity.AssetRecord{hangarAsset(1001, 34, 5)}
	loggedAt := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	h.source.containerLogs = []appsync.ContainerLogEntry{
		{CharacterID: 777, ContainerID: 5001, Action: "add", TypeID: 34, LoggedAt: loggedAt},
		{CharacterID: 777, ContainerID: 5001, Action: "add", TypeID: 34, LoggedAt: loggedAt}, // duplicada
		{CharacterID: 0, ContainerID: 5002, Action: "lock", LoggedAt: loggedAt},              // sin actor, se omite
	}

	_, err := h.uc.SyncCorporation(context.Background(), testCorpID)
	require.NoError(t, err)

	logs, _ := h.logRepo.ListByCorporation(testCorpID, 0)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(777), logs[0].CharacterID)
	assert.Equal(t, "Tritanium", logs[0].TypeName)
}

func TestSyncAll_NoTrackedCorporations(t *testing.T) {
	h := newHarness(t)
	h.corpRepo.corps[testCorpID].TrackingEnabled = false

	summary, err := h.uc.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Dispatched)
	assert.Empty(t, summary.Results)
}
