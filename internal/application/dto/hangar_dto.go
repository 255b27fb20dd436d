package dto

import (
	"time"

	"github.com/evetrack/corphangar/internal/domain/entity"
)

// CorporationResponse vista de API de una corporación rastreada.
type CorporationResponse struct {
	CorporationID   int64      `json:"corporation_id"`
	CorporationName string     `json:"corporation_name"`
	TrackingEnabled bool       `json:"tracking_enabled"`
	WalletBalance   string     `json:"wallet_balance"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
}

// ToCorporationResponse mapea la entidad a su vista de API.
func ToCorporationResponse(c *entity.Corporation) CorporationResponse {
	return CorporationResponse{
		CorporationID:   c.CorporationID,
		CorporationName: c.CorporationName,
		TrackingEnabled: c.TrackingEnabled,
		WalletBalance:   c.WalletBalance.String(),
		LastSync:        c.LastSync,
	}
}

// HangarItemResponse vista de API de un item del hangar.
type HangarItemResponse struct {
	ItemID          int64     `json:"item_id"`
	TypeID          int64     `json:"type_id"`
	TypeName        string    `json:"type_name"`
	LocationID      int64     `json:"location_id"`
	DivisionID      *int64    `json:"division_id,omitempty"`
	Quantity        int64     `json:"quantity"`
	EstimatedValue  string    `json:"estimated_value"`
	IsSingleton     bool      `json:"is_singleton"`
	IsBlueprintCopy bool      `json:"is_blueprint_copy"`
	IsActive        bool      `json:"is_active"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
}

// ToHangarItemResponse mapea la entidad a su vista de API.
func ToHangarItemResponse(i *entity.HangarItem) HangarItemResponse {
	return HangarItemResponse{
		ItemID:          i.ItemID,
		TypeID:          i.TypeID,
		TypeName:        i.TypeName,
		LocationID:      i.LocationID,
		DivisionID:      i.DivisionID,
		Quantity:        i.Quantity,
		EstimatedValue:  i.EstimatedValue.String(),
		IsSingleton:     i.IsSingleton,
		IsBlueprintCopy: i.IsBlueprintCopy,
		IsActive:        i.IsActive,
		FirstSeen:       i.FirstSeen,
		LastSeen:        i.LastSeen,
	}
}

// TransactionResponse vista de API de una transacción de auditoría.
type TransactionResponse struct {
	ID              int64     `json:"id"`
	TransactionType string    `json:"transaction_type"`
	TypeID          int64     `json:"type_id"`
	TypeName        string    `json:"type_name"`
	OldQuantity     int64     `json:"old_quantity"`
	NewQuantity     int64     `json:"new_quantity"`
	QuantityChange  int64     `json:"quantity_change"`
	LocationID      int64     `json:"location_id"`
	DivisionID      *int64    `json:"division_id,omitempty"`
	EstimatedValue  string    `json:"estimated_value"`
	DetectedAt      time.Time `json:"detected_at"`
}

// ToTransactionResponse mapea la entidad a su vista de API.
func ToTransactionResponse(t *entity.HangarTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		TransactionType: t.TransactionType,
		TypeID:          t.TypeID,
		TypeName:        t.TypeName,
		OldQuantity:     t.OldQuantity,
		NewQuantity:     t.NewQuantity,
		QuantityChange:  t.QuantityChange,
		LocationID:      t.LocationID,
		DivisionID:      t.DivisionID,
		EstimatedValue:  t.EstimatedValue.String(),
		DetectedAt:      t.DetectedAt,
	}
}

// SnapshotResponse vista de API de un snapshot de valuación.
type SnapshotResponse struct {
	ID           int64     `json:"id"`
	SnapshotTime time.Time `json:"snapshot_time"`
	TotalItems   int       `json:"total_items"`
	TotalValue   string    `json:"total_value"`
}

// ToSnapshotResponse mapea la entidad a su vista de API.
func ToSnapshotResponse(s *entity.HangarSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:           s.ID,
		SnapshotTime: s.SnapshotTime,
		TotalItems:   s.TotalItems,
		TotalValue:   s.TotalValue.String(),
	}
}

// ContainerLogResponse vista de API de una entrada del log de contenedores.
type ContainerLogResponse struct {
	ID            int64     `json:"id"`
	CharacterID   int64     `json:"character_id"`
	CharacterName string    `json:"character_name"`
	ContainerID   int64     `json:"container_id"`
	Action        string    `json:"action"`
	TypeID        *int64    `json:"type_id,omitempty"`
	TypeName      string    `json:"type_name,omitempty"`
	Quantity      *int64    `json:"quantity,omitempty"`
	LoggedAt      time.Time `json:"logged_at"`
}

// ToContainerLogResponse mapea la entidad a su vista de API.
func ToContainerLogResponse(l *entity.ContainerLog) ContainerLogResponse {
	return ContainerLogResponse{
		ID:            l.ID,
		CharacterID:   l.CharacterID,
		CharacterName: l.CharacterName,
		ContainerID:   l.ContainerID,
		Action:        l.Action,
		TypeID:        l.TypeID,
		TypeName:      l.TypeName,
		Quantity:      l.Quantity,
		LoggedAt:      l.LoggedAt,
	}
}
