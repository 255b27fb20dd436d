package dto

// Estados de un ciclo de sincronización por corporación.
const (
	SyncStatusSuccess = "success"
	SyncStatusSkipped = "skipped"
	SyncStatusError   = "error"
)

// SyncResult resultado del ciclo de una corporación.
type SyncResult struct {
	RunID          string `json:"run_id"`
	CorporationID  int64  `json:"corporation_id"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	ItemsProcessed int    `json:"items_processed"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	Changed        int    `json:"changed"`
}

// SyncSummary resumen del despacho sobre todas las corporaciones rastreadas.
type SyncSummary struct {
	Dispatched int          `json:"dispatched"`
	Succeeded  int          `json:"succeeded"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Results    []SyncResult `json:"results"`
}

// CleanupResult resultado de la poda de retención.
type CleanupResult struct {
	SnapshotsDeleted    int64 `json:"snapshots_deleted"`
	TransactionsDeleted int64 `json:"transactions_deleted"`
}

// RegisterCorporationRequest alta manual de una corporación a rastrear.
type RegisterCorporationRequest struct {
	CorporationID   int64  `json:"corporation_id"`
	CorporationName string `json:"corporation_name"`
}

// ErrorResponse payload de error para la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
