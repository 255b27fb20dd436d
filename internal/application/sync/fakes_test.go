package sync_test

import (
	"context"
	gosync "sync"
	"time"

	"github.com/shopspring/decimal"

	appsync "github.com/evetrack/corphangar/internal/application/sync"
	"github.com/evetrack/corphangar/internal/domain"
	"github.com/evetrack/corphangar/internal/domain/entity"
	"github.com/evetrack/corphangar/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para el orquestador y los caches
// ──────────────────────────────────────────────────────────────────────────────

type fakeCorpRepo struct {
	mu         gosync.Mutex
	corps      map[int64]*entity.Corporation
	lastSync   map[int64]time.Time
	wallets    map[int64]decimal.Decimal
	listErr    error
	getByIDErr error
}

func newFakeCorpRepo(corps ...*entity.Corporation) *fakeCorpRepo {
	r := &fakeCorpRepo{
		corps:    make(map[int64]*entity.Corporation),
		lastSync: make(map[int64]time.Time),
		wallets:  make(map[int64]decimal.Decimal),
	}
	for _, c := range corps {
		r.corps[c.CorporationID] = c
	}
	return r
}

func (r *fakeCorpRepo) GetByID(id int64) (*entity.Corporation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getByIDErr != nil {
		return nil, r.getByIDErr
	}
	c, ok := r.corps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *fakeCorpRepo) ListTrackingEnabled() ([]*entity.Corporation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*entity.Corporation
	for _, c := range r.corps {
		if c.TrackingEnabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCorpRepo) Create(c *entity.Corporation) error {
	if _, ok := r.corps[c.CorporationID]; ok {
		return domain.ErrDuplicate
	}
	r.corps[c.CorporationID] = c
	return nil
}

func (r *fakeCorpRepo) UpdateLastSync(id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSync[id] = at
	return nil
}

func (r *fakeCorpRepo) UpdateWalletBalance(id int64, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[id] = balance
	return nil
}

func (r *fakeCorpRepo) SetTracking(id int64, enabled bool) error {
	c, ok := r.corps[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.TrackingEnabled = enabled
	return nil
}

type fakeDivRepo struct {
	mu        gosync.Mutex
	divisions []*entity.HangarDivision
	nextID    int64
}

func (r *fakeDivRepo) Upsert(d *entity.HangarDivision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.divisions {
		if existing.CorporationID == d.CorporationID && existing.DivisionID == d.DivisionID {
			existing.DivisionName = d.DivisionName
			return nil
		}
	}
	r.nextID++
	d.ID = r.nextID
	r.divisions = append(r.divisions, d)
	return nil
}

func (r *fakeDivRepo) ListByCorporation(corpID int64) ([]*entity.HangarDivision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarDivision
	for _, d := range r.divisions {
		if d.CorporationID == corpID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	mu        gosync.Mutex
	locations map[int64]*entity.Location
	creates   int
	updates   int
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[int64]*entity.Location)}
}

func (r *fakeLocationRepo) GetByID(id int64) (*entity.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (r *fakeLocationRepo) Create(loc *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[loc.LocationID]; ok {
		return domain.ErrDuplicate
	}
	r.creates++
	r.locations[loc.LocationID] = loc
	return nil
}

func (r *fakeLocationRepo) UpdateMetadata(loc *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.locations[loc.LocationID]; !ok {
		return domain.ErrNotFound
	}
	r.updates++
	r.locations[loc.LocationID] = loc
	return nil
}

type fakeItemRepo struct {
	mu    gosync.Mutex
	items map[int64]*entity.HangarItem // por item_id
}

func newFakeItemRepo(items ...*entity.HangarItem) *fakeItemRepo {
	r := &fakeItemRepo{items: make(map[int64]*entity.HangarItem)}
	for _, i := range items {
		r.items[i.ItemID] = i
	}
	return r
}

func (r *fakeItemRepo) ListByCorporation(corpID int64) ([]*entity.HangarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarItem
	for _, i := range r.items {
		if i.CorporationID == corpID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) ListActiveByCorporation(corpID int64) ([]*entity.HangarItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarItem
	for _, i := range r.items {
		if i.CorporationID == corpID && i.IsActive {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) KnownTypeNames(typeIDs []int64) (map[int64]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[int64]struct{}, len(typeIDs))
	for _, id := range typeIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64]string)
	for _, i := range r.items {
		if _, ok := wanted[i.TypeID]; ok && i.TypeName != "" {
			out[i.TypeID] = i.TypeName
		}
	}
	return out, nil
}

func (r *fakeItemRepo) BulkUpsert(items []*entity.HangarItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		if existing, ok := r.items[item.ItemID]; ok {
			item.FirstSeen = existing.FirstSeen
		} else {
			item.FirstSeen = item.LastSeen
		}
		r.items[item.ItemID] = item
	}
	return nil
}

func (r *fakeItemRepo) Deactivate(corpID int64, itemIDs []int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range itemIDs {
		if item, ok := r.items[id]; ok && item.CorporationID == corpID {
			item.IsActive = false
		}
	}
	return nil
}

type fakeTxRepo struct {
	mu     gosync.Mutex
	txs    []*entity.HangarTransaction
	nextID int64
}

func (r *fakeTxRepo) BulkCreate(txs []*entity.HangarTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range txs {
		r.nextID++
		tx.ID = r.nextID
		r.txs = append(r.txs, tx)
	}
	return nil
}

func (r *fakeTxRepo) ListByCorporation(corpID int64, limit int) ([]*entity.HangarTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarTransaction
	for _, tx := range r.txs {
		if tx.CorporationID == corpID {
			out = append(out, tx)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTxRepo) ListUnnotifiedSince(corpID int64, since time.Time) ([]*entity.HangarTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarTransaction
	for _, tx := range r.txs {
		if tx.CorporationID == corpID && !tx.NotificationSent && !tx.DetectedAt.Before(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) MarkNotified(ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		for _, tx := range r.txs {
			if tx.ID == id {
				tx.NotificationSent = true
			}
		}
	}
	return nil
}

func (r *fakeTxRepo) DeleteOlderThan(corpID int64, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.HangarTransaction
	var deleted int64
	for _, tx := range r.txs {
		if tx.CorporationID == corpID && tx.DetectedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, tx)
	}
	r.txs = kept
	return deleted, nil
}

type fakeSnapRepo struct {
	mu    gosync.Mutex
	snaps []*entity.HangarSnapshot
}

func (r *fakeSnapRepo) Create(s *entity.HangarSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = int64(len(r.snaps) + 1)
	r.snaps = append(r.snaps, s)
	return nil
}

func (r *fakeSnapRepo) ListByCorporation(corpID int64, limit int) ([]*entity.HangarSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.HangarSnapshot
	for _, s := range r.snaps {
		if s.CorporationID == corpID {
			out = append(out, s)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSnapRepo) PruneKeepLatest(corpID int64, keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []*entity.HangarSnapshot
	for _, s := range r.snaps {
		if s.CorporationID == corpID {
			mine = append(mine, s)
		}
	}
	if len(mine) <= keep {
		return 0, nil
	}
	return int64(len(mine) - keep), nil
}

type fakeAlertRepo struct {
	rules []*entity.AlertRule
}

func (r *fakeAlertRepo) ListActive(corpID int64) ([]*entity.AlertRule, error) {
	var out []*entity.AlertRule
	for _, rule := range r.rules {
		if rule.CorporationID == corpID && rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) HasActive(corpID int64) (bool, error) {
	rules, _ := r.ListActive(corpID)
	return len(rules) > 0, nil
}

func (r *fakeAlertRepo) Create(rule *entity.AlertRule) error {
	r.rules = append(r.rules, rule)
	return nil
}

type fakeContainerLogRepo struct {
	mu   gosync.Mutex
	logs []*entity.ContainerLog
}

func (r *fakeContainerLogRepo) CreateIfAbsent(log *entity.ContainerLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.logs {
		if existing.CorporationID == log.CorporationID &&
			existing.CharacterID == log.CharacterID &&
			existing.ContainerID == log.ContainerID &&
			existing.Action == log.Action &&
			existing.LoggedAt.Equal(log.LoggedAt) {
			return false, nil
		}
	}
	r.logs = append(r.logs, log)
	return true, nil
}

func (r *fakeContainerLogRepo) ListByCorporation(corpID int64, limit int) ([]*entity.ContainerLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ContainerLog
	for _, l := range r.logs {
		if l.CorporationID == corpID {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeSource fuente de inventario configurable por test.
type fakeSource struct {
	mu gosync.Mutex

	assets    []*entity.AssetRecord
	assetsErr error
	fetchCnt  int

	divisions     []appsync.DivisionInfo
	wallets       []appsync.WalletInfo
	containerLogs []appsync.ContainerLogEntry

	stations   map[int64]*appsync.LocationInfo
	structures map[int64]*appsync.LocationInfo
	typeNames  map[int64]string
	systems    map[int64]*appsync.SolarSystemInfo
	regions    map[int64]int64 // constellation -> region
	regionName map[int64]string

	stationCalls  int
	typeNameCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		stations:   make(map[int64]*appsync.LocationInfo),
		structures: make(map[int64]*appsync.LocationInfo),
		typeNames:  make(map[int64]string),
		systems:    make(map[int64]*appsync.SolarSystemInfo),
		regions:    make(map[int64]int64),
		regionName: make(map[int64]string),
	}
}

func (s *fakeSource) FetchAssets(ctx context.Context, corpID int64, token string) ([]*entity.AssetRecord, error) {
	s.mu.Lock()
	s.fetchCnt++
	s.mu.Unlock()
	if s.assetsErr != nil {
		return nil, s.assetsErr
	}
	return s.assets, nil
}

func (s *fakeSource) FetchDivisions(ctx context.Context, corpID int64, token string) ([]appsync.DivisionInfo, error) {
	return s.divisions, nil
}

func (s *fakeSource) FetchWallets(ctx context.Context, corpID int64, token string) ([]appsync.WalletInfo, error) {
	return s.wallets, nil
}

func (s *fakeSource) FetchContainerLogs(ctx context.Context, corpID int64, token string) ([]appsync.ContainerLogEntry, error) {
	return s.containerLogs, nil
}

func (s *fakeSource) FetchStation(ctx context.Context, id int64) (*appsync.LocationInfo, error) {
	s.mu.Lock()
	s.stationCalls++
	s.mu.Unlock()
	return s.stations[id], nil
}

func (s *fakeSource) FetchStructure(ctx context.Context, id int64, token string) (*appsync.LocationInfo, error) {
	return s.structures[id], nil
}

func (s *fakeSource) FetchTypeName(ctx context.Context, id int64) (string, error) {
	s.mu.Lock()
	s.typeNameCalls++
	s.mu.Unlock()
	return s.typeNames[id], nil
}

func (s *fakeSource) FetchSolarSystem(ctx context.Context, id int64) (*appsync.SolarSystemInfo, error) {
	return s.systems[id], nil
}

func (s *fakeSource) FetchConstellationRegion(ctx context.Context, id int64) (int64, error) {
	return s.regions[id], nil
}

func (s *fakeSource) FetchRegionName(ctx context.Context, id int64) (string, error) {
	return s.regionName[id], nil
}

type fakeTokens struct {
	token string
	err   error
}

func (t *fakeTokens) TokenFor(ctx context.Context, corpID int64) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return t.token, nil
}

type fakePrices struct {
	prices map[int64]decimal.Decimal
	err    error
}

func (p *fakePrices) Prices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.prices, nil
}

type fakeLease struct{ released bool }

func (l *fakeLease) Release(ctx context.Context) error {
	l.released = true
	return nil
}

type fakeLocker struct {
	mu    gosync.Mutex
	held  bool
	lease *fakeLease
}

func (l *fakeLocker) Obtain(ctx context.Context, corpID int64, ttl time.Duration) (appsync.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, domain.ErrSyncInProgress
	}
	l.lease = &fakeLease{}
	return l.lease, nil
}

type fakeDispatcher struct {
	mu    gosync.Mutex
	calls int
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, corpID int64) error {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return nil
}

// fakeTxRunner ejecuta fn directamente contra los fakes; commits cuenta las
// transacciones que terminaron sin error.
type fakeTxRunner struct {
	itemRepo repository.HangarItemRepository
	txRepo   repository.TransactionRepository
	snapRepo repository.SnapshotRepository

	mu        gosync.Mutex
	commits   int
	rollbacks int
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.HangarItemRepository,
	txRepo repository.TransactionRepository,
	snapRepo repository.SnapshotRepository,
) error) error {
	err := fn(r.itemRepo, r.txRepo, r.snapRepo)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.rollbacks++
		return err
	}
	r.commits++
	return nil
}
