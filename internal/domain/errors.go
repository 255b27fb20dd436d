package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Taxonomía del ciclo de sincronización:
	// ErrCredentialUnavailable: no hay token utilizable; el ciclo aborta y se reintenta en el próximo intervalo.
	// ErrSourceUnreachable: fallo transitorio de red/API; el ciclo aborta sin mutar estado.
	// ErrMetadataUnresolved: por-asset, no fatal; el asset se omite y el ciclo continúa.
	// ErrConsistencyViolation: invariante interno roto (ej. item_id duplicado en un fetch); fatal al ciclo.
	ErrCredentialUnavailable = errors.New("credencial no disponible para la corporación")
	ErrSourceUnreachable     = errors.New("fuente de inventario no disponible")
	ErrMetadataUnresolved    = errors.New("metadata no resuelta para el asset")
	ErrConsistencyViolation  = errors.New("violación de consistencia en el fetch")

	// ErrSyncInProgress: otro worker tiene el lease de la corporación; el ciclo se omite.
	ErrSyncInProgress = errors.New("sincronización en curso para la corporación")
)
